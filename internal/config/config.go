package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/hostrender/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hostrender.json"

	// DefaultPort is the default host server port.
	DefaultPort = 7070

	// DefaultHost is the default bind address.
	DefaultHost = "localhost"

	// DefaultMaxBatchOps is the op count at which the proxy flushes.
	DefaultMaxBatchOps = 512

	// DefaultAckTimeout bounds how long a flush waits for the host.
	DefaultAckTimeout = "5s"

	// DefaultSnapshotDir is where the file backend writes.
	DefaultSnapshotDir = "snapshots"
)

// Snapshot backends.
const (
	BackendNone = ""
	BackendFile = "file"
	BackendS3   = "s3"
)

// Config is the complete hostrender.json configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Proxy    ProxyConfig    `json:"proxy"`
	Snapshot SnapshotConfig `json:"snapshot"`
	Log      LogConfig      `json:"log"`

	configPath string
}

// ServerConfig configures the host server.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// AllowedOrigins restricts websocket upgrades. Empty allows any origin.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`

	// MaxMessageBytes caps one websocket message.
	MaxMessageBytes int64 `json:"maxMessageBytes,omitempty"`

	// WriteTimeout bounds each websocket write.
	WriteTimeout string `json:"writeTimeout,omitempty"`
}

// ProxyConfig configures the engine-side proxy renderer.
type ProxyConfig struct {
	// URL is the websocket endpoint of a remote host.
	URL         string `json:"url,omitempty"`
	MaxBatchOps int    `json:"maxBatchOps,omitempty"`
	AckTimeout  string `json:"ackTimeout,omitempty"`
}

// SnapshotConfig configures where serialized trees are stored.
type SnapshotConfig struct {
	Backend string `json:"backend,omitempty"`

	// Dir is used by the file backend.
	Dir string `json:"dir,omitempty"`

	// The fields below are used by the s3 backend. Credentials fall back
	// to AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.
	Bucket          string `json:"bucket,omitempty"`
	Prefix          string `json:"prefix,omitempty"`
	Region          string `json:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
	UsePathStyle    bool   `json:"usePathStyle,omitempty"`
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New returns a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			MaxMessageBytes: 16 << 20,
			WriteTimeout:    "10s",
		},
		Proxy: ProxyConfig{
			MaxBatchOps: DefaultMaxBatchOps,
			AckTimeout:  DefaultAckTimeout,
		},
		Snapshot: SnapshotConfig{
			Dir: DefaultSnapshotDir,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads hostrender.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// LoadOrDefault loads dir's hostrender.json, returning defaults when the
// file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.Code(err) == "E121" {
		cfg = New()
		cfg.applyDefaults()
		return cfg, nil
	}
	return cfg, err
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.configPath }

// applyDefaults fills empty fields. It also resolves S3 credentials from
// the environment.
func (c *Config) applyDefaults() {
	def := New()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.MaxMessageBytes == 0 {
		c.Server.MaxMessageBytes = def.Server.MaxMessageBytes
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Proxy.MaxBatchOps == 0 {
		c.Proxy.MaxBatchOps = def.Proxy.MaxBatchOps
	}
	if c.Proxy.AckTimeout == "" {
		c.Proxy.AckTimeout = def.Proxy.AckTimeout
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = def.Snapshot.Dir
	}
	if c.Snapshot.AccessKeyID == "" {
		c.Snapshot.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if c.Snapshot.SecretAccessKey == "" {
		c.Snapshot.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535, got " + strconv.Itoa(c.Server.Port))
	}
	if c.Proxy.MaxBatchOps < 0 {
		return errors.New("E123").WithDetail("proxy.maxBatchOps must not be negative")
	}
	if c.Server.MaxMessageBytes < 0 {
		return errors.New("E123").WithDetail("server.maxMessageBytes must not be negative")
	}
	if _, err := parseDuration("server.writeTimeout", c.Server.WriteTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("proxy.ackTimeout", c.Proxy.AckTimeout); err != nil {
		return err
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.New("E123").WithDetailf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Snapshot.Backend {
	case BackendNone, BackendFile:
	case BackendS3:
		if c.Snapshot.Bucket == "" {
			return errors.New("E123").
				WithDetail("snapshot.bucket is required for the s3 backend")
		}
	default:
		return errors.New("E123").
			WithDetailf("snapshot.backend must be file or s3, got %q", c.Snapshot.Backend)
	}
	return nil
}

// Address returns host:port for the server listener.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// AckTimeout returns the parsed proxy ack timeout.
func (c *Config) AckTimeout() time.Duration {
	d, _ := parseDuration("proxy.ackTimeout", c.Proxy.AckTimeout)
	return d
}

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := parseDuration("server.writeTimeout", c.Server.WriteTimeout)
	return d
}

func parseDuration(field, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, errors.New("E123").WithDetailf("%s: invalid duration %q", field, v)
	}
	return d, nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New("E123").WithDetailf("log.level: unknown level %q", l.Level)
}

// Exists reports whether dir contains hostrender.json.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// NewLogger builds a slog.Logger writing to w in the configured format
// and level. An invalid level falls back to info.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
