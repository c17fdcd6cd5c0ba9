package proxy

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/protocol"
)

// WSOptions configures DialWS.
type WSOptions struct {
	// AckTimeout bounds the wait for a batch acknowledgement.
	AckTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// Header is sent with the upgrade request.
	Header http.Header

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer

	Logger *slog.Logger
}

// WSTransport sends batches to a host server over websocket.
type WSTransport struct {
	conn         *websocket.Conn
	ackTimeout   time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
	pump         *eventPump

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan *protocol.Ack
	err     error
	done    chan struct{}
	exited  chan struct{}
}

var (
	_ Transport   = (*WSTransport)(nil)
	_ EventSource = (*WSTransport)(nil)
)

// DialWS connects to a host server's /ws endpoint.
func DialWS(ctx context.Context, url string, opts WSOptions) (*WSTransport, error) {
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = 5 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "proxy")
	}
	conn, _, err := opts.Dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		return nil, errors.New("E060").WithDetail(url).Wrap(err)
	}
	t := &WSTransport{
		conn:         conn,
		ackTimeout:   opts.AckTimeout,
		writeTimeout: opts.WriteTimeout,
		logger:       opts.Logger.With("url", url),
		pump:         newEventPump(opts.Logger),
		pending:      make(map[uint64]chan *protocol.Ack),
		done:         make(chan struct{}),
		exited:       make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

// SetEventHandler implements EventSource.
func (t *WSTransport) SetEventHandler(h func(protocol.Event)) {
	t.pump.setHandler(h)
}

// Send writes b and waits for its ack.
func (t *WSTransport) Send(ctx context.Context, b *protocol.Batch) error {
	if err := ctx.Err(); err != nil {
		return NotDelivered(err)
	}
	ch := make(chan *protocol.Ack, 1)
	t.mu.Lock()
	if t.err != nil {
		err := t.err
		t.mu.Unlock()
		return NotDelivered(err)
	}
	t.pending[b.Seq] = ch
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.pending, b.Seq)
		t.mu.Unlock()
	}()

	if err := t.write(protocol.FrameBatch, protocol.EncodeBatch(b)); err != nil {
		t.fail(errors.New("E066").WithDetail("write batch").Wrap(err))
		return t.closedErr()
	}

	timer := time.NewTimer(t.ackTimeout)
	defer timer.Stop()
	select {
	case ack := <-ch:
		return AckError(ack)
	case <-timer.C:
		return errors.New("E065").WithDetailf("batch %d after %s", b.Seq, t.ackTimeout)
	case <-t.done:
		return t.closedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *WSTransport) write(ft protocol.FrameType, payload []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	for _, f := range protocol.Split(ft, payload) {
		t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
		if err := t.conn.WriteMessage(websocket.BinaryMessage, f.Encode()); err != nil {
			return err
		}
	}
	return nil
}

func (t *WSTransport) readLoop() {
	defer close(t.exited)
	var asm protocol.Assembler
	for {
		_, msg, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				t.logger.Error("read error", "error", err)
			}
			t.fail(errors.New("E066").Wrap(err))
			return
		}
		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			t.logger.Warn("frame decode error", "error", err)
			continue
		}
		typ, payload, done, err := asm.Add(frame)
		if err != nil {
			t.logger.Warn("frame reassembly error", "error", err)
			continue
		}
		if !done {
			continue
		}

		switch typ {
		case protocol.FrameAck:
			ack, err := protocol.DecodeAck(payload)
			if err != nil {
				t.logger.Warn("ack decode error", "error", err)
				continue
			}
			t.mu.Lock()
			ch, ok := t.pending[ack.Seq]
			t.mu.Unlock()
			if !ok {
				t.logger.Debug("ack for unknown batch", "seq", ack.Seq)
				continue
			}
			select {
			case ch <- ack:
			default:
			}

		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(payload)
			if err != nil {
				t.logger.Warn("event decode error", "error", err)
				continue
			}
			t.pump.push(*ev)

		case protocol.FrameError:
			em, err := protocol.DecodeErrorMessage(payload)
			if err != nil {
				t.logger.Warn("error frame decode error", "error", err)
				continue
			}
			t.logger.Warn("host error", "code", em.Code, "message", em.Message, "fatal", em.Fatal)
			if em.Fatal {
				t.fail(errors.New("E066").WithDetail(em.Code.String()).Wrap(em))
			}

		default:
			t.logger.Warn("unexpected frame type", "type", typ)
		}
	}
}

// fail records the first terminal error and releases waiting senders.
func (t *WSTransport) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	t.err = err
	close(t.done)
}

func (t *WSTransport) closedErr() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// WaitEvents blocks until received events have been handled.
func (t *WSTransport) WaitEvents() { t.pump.wait() }

// Close closes the connection. Later and in-flight Sends fail with E066.
func (t *WSTransport) Close() error {
	t.fail(errors.New("E066").WithDetail("closed"))
	t.writeMu.Lock()
	t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	t.writeMu.Unlock()
	err := t.conn.Close()
	<-t.exited
	t.pump.close()
	return err
}
