package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/hostdom"
	"github.com/vango-dev/hostrender/pkg/protocol"
	"github.com/vango-dev/hostrender/pkg/snapshot"
)

// ServerOptions configures a Server. The zero value is usable.
type ServerOptions struct {
	Logger *slog.Logger

	// Registry receives the host metrics and Gatherer serves /metrics.
	// Both default to the Prometheus globals.
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer

	// Snapshots backs POST /snapshot/{conn}. Nil disables it.
	Snapshots snapshot.Store

	// AllowedOrigins lists accepted Origin headers for /ws. Empty accepts
	// any origin.
	AllowedOrigins []string

	// MaxMessageBytes bounds one websocket message.
	MaxMessageBytes int64

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// Limits bound batch decoding.
	Limits protocol.Limits

	// ApplierOptions are passed to every connection's Applier.
	ApplierOptions []ApplierOption
}

// Server accepts engine connections and applies their batches, one
// document per connection.
type Server struct {
	opts     ServerOptions
	logger   *slog.Logger
	metrics  *Metrics
	router   chi.Router
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	conns   map[string]*conn
	nextID  atomic.Uint64
	closing atomic.Bool
	httpSrv *http.Server
}

// NewServer returns a server with its routes mounted.
func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "host")
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = protocol.HardMaxBatchBytes
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	s := &Server{
		opts:    opts,
		logger:  opts.Logger,
		metrics: NewMetrics(MetricsConfig{Registry: opts.Registry}),
		conns:   make(map[string]*conn),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	r := chi.NewRouter()
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/connections", s.handleConnections)
	r.Get("/snapshot/{conn}", s.handleSnapshotGet)
	r.Post("/snapshot/{conn}", s.handleSnapshotPost)
	r.Post("/dispatch/{conn}/{node}", s.handleDispatch)
	s.router = r
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.opts.AllowedOrigins, origin)
}

// Connections returns the ids of live connections in ascending order.
func (s *Server) Connections() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.conns))
	for id := range s.conns {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.ParseUint(ids[i][1:], 10, 64)
		b, _ := strconv.ParseUint(ids[j][1:], 10, 64)
		return a < b
	})
	return ids
}

// Worker returns the worker behind connection id.
func (s *Server) Worker(id string) (*Worker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conns[id]
	if !ok {
		return nil, false
	}
	return c.worker, true
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.closing.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	ws.SetReadLimit(s.opts.MaxMessageBytes)

	id := "c" + strconv.FormatUint(s.nextID.Add(1), 10)
	c := &conn{
		id:     id,
		ws:     ws,
		server: s,
		logger: s.logger.With("conn", id, "remote", r.RemoteAddr),
	}
	opts := append(slices.Clone(s.opts.ApplierOptions),
		WithEventSink(c.sendEvent),
		WithApplierLogger(c.logger))
	c.worker = NewWorker(opts...)

	s.mu.Lock()
	s.conns[id] = c
	s.mu.Unlock()
	s.metrics.connOpened()
	c.logger.Info("engine connected")

	c.readLoop()

	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
	s.metrics.connClosed()
	c.close()
	c.logger.Info("engine disconnected", "batches", c.batches, "ops", c.worker.applier.Applied())
}

func (s *Server) lookupConn(w http.ResponseWriter, r *http.Request) *conn {
	id := chi.URLParam(r, "conn")
	s.mu.RLock()
	c, ok := s.conns[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, fmt.Sprintf("unknown connection %q", id), http.StatusNotFound)
		return nil
	}
	return c
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"connections": s.Connections()})
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	c := s.lookupConn(w, r)
	if c == nil {
		return
	}
	html, err := c.worker.Snapshot(r.Context(), hostdom.RenderOptions{Pretty: r.URL.Query().Has("pretty")})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", snapshot.ContentType)
	w.Write([]byte(html))
}

func (s *Server) handleSnapshotPost(w http.ResponseWriter, r *http.Request) {
	if s.opts.Snapshots == nil {
		http.Error(w, "snapshot store not configured", http.StatusNotImplemented)
		return
	}
	c := s.lookupConn(w, r)
	if c == nil {
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		key = c.id
	}
	var loc string
	err := c.worker.Do(r.Context(), func(a *Applier) error {
		var err error
		loc, err = snapshot.Capture(r.Context(), s.opts.Snapshots, key, a.Document().DocumentElement(), hostdom.RenderOptions{})
		return err
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Code(err) == "E141" {
			status = http.StatusBadRequest
		}
		c.logger.Error("snapshot failed", "key", key, "error", err)
		writeJSON(w, status, map[string]string{"error": err.Error(), "code": errors.Code(err)})
		return
	}
	c.logger.Info("snapshot stored", "key", key, "location", loc)
	writeJSON(w, http.StatusCreated, map[string]string{"location": loc})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	c := s.lookupConn(w, r)
	if c == nil {
		return
	}
	node, err := strconv.ParseUint(chi.URLParam(r, "node"), 10, 64)
	if err != nil {
		http.Error(w, "invalid node id", http.StatusBadRequest)
		return
	}
	typ := r.URL.Query().Get("type")
	if typ == "" {
		http.Error(w, "missing event type", http.StatusBadRequest)
		return
	}
	var detail any
	if d := r.URL.Query().Get("detail"); d != "" {
		detail = d
	}
	ok, err := c.worker.Dispatch(r.Context(), protocol.NodeID(node), typ, detail)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error(), "code": errors.Code(err)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"defaultPrevented": !ok})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpSrv
	s.mu.Unlock()

	s.logger.Info("host server starting", "address", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown tells every engine the host is going away, closes their
// connections and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)
	s.mu.RLock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	srv := s.httpSrv
	s.mu.RUnlock()

	for _, c := range conns {
		c.sendError(protocol.NewFatalError(protocol.ErrShuttingDown, "host shutting down"))
		c.ws.Close()
	}
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("host server stopped", "connections", len(conns))
	return nil
}

// conn is one engine connection.
type conn struct {
	id     string
	ws     *websocket.Conn
	worker *Worker
	server *Server
	logger *slog.Logger

	writeMu sync.Mutex
	batches int
	once    sync.Once
}

func (c *conn) readLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	asm := protocol.Assembler{MaxBytes: c.server.opts.Limits.MaxBatchBytes}

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.logger.Warn("frame decode error", "error", err)
			c.sendError(protocol.NewFatalError(protocol.ErrInvalidFrame, err.Error()))
			return
		}
		typ, payload, done, err := asm.Add(frame)
		if err != nil {
			c.sendError(protocol.NewFatalError(protocol.ErrTooLarge, err.Error()))
			return
		}
		if !done {
			continue
		}
		c.server.metrics.received(len(payload))

		switch typ {
		case protocol.FrameBatch:
			if !c.handleBatch(ctx, payload) {
				return
			}
		default:
			c.logger.Warn("unexpected frame type", "type", typ)
		}
	}
}

// handleBatch applies one batch and acks it. It returns false when the
// connection must close.
func (c *conn) handleBatch(ctx context.Context, payload []byte) bool {
	b, err := protocol.DecodeBatchFrom(protocol.NewDecoderWithLimits(payload, c.server.opts.Limits))
	if err != nil {
		c.logger.Warn("batch decode error", "error", err)
		c.sendError(protocol.NewFatalError(protocol.ErrInvalidBatch, err.Error()))
		return false
	}
	start := time.Now()
	ack, err := c.worker.Apply(ctx, b)
	if err != nil {
		c.sendError(protocol.NewFatalError(protocol.ErrServerError, err.Error()))
		return false
	}
	c.batches++
	c.server.metrics.batch(b, ack, time.Since(start).Seconds())
	if !ack.OK() {
		c.logger.Warn("batch rejected", "seq", ack.Seq, "index", ack.Index, "code", ack.Code, "error", ack.Err)
	}
	if err := c.write(protocol.FrameAck, protocol.EncodeAck(ack)); err != nil {
		c.logger.Warn("ack write failed", "error", err)
		return false
	}
	return true
}

// sendEvent runs on the worker goroutine.
func (c *conn) sendEvent(ev protocol.Event) {
	if err := c.write(protocol.FrameEvent, protocol.EncodeEvent(&ev)); err != nil {
		c.logger.Warn("event write failed", "listener", ev.Listener, "error", err)
		return
	}
	c.server.metrics.event()
}

func (c *conn) sendError(em *protocol.ErrorMessage) {
	if err := c.write(protocol.FrameError, protocol.EncodeErrorMessage(em)); err != nil {
		c.logger.Debug("error frame write failed", "error", err)
	}
}

func (c *conn) write(ft protocol.FrameType, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	for _, f := range protocol.Split(ft, payload) {
		c.ws.SetWriteDeadline(time.Now().Add(c.server.opts.WriteTimeout))
		if err := c.ws.WriteMessage(websocket.BinaryMessage, f.Encode()); err != nil {
			return err
		}
	}
	return nil
}

func (c *conn) close() {
	c.once.Do(func() {
		c.worker.Close()
		c.writeMu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.ws.Close()
	})
}
