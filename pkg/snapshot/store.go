package snapshot

import (
	"bytes"
	"context"
	"strings"

	"github.com/vango-dev/hostrender/internal/config"
	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/hostdom"
)

// ContentType is the media type snapshots are stored with.
const ContentType = "text/html; charset=utf-8"

// Store persists snapshot documents.
type Store interface {
	// Put stores html under key and returns its location.
	Put(ctx context.Context, key string, html []byte) (string, error)
}

// ValidateKey checks that key is a relative slash-separated path of
// letters, digits, '.', '_' and '-', with no empty or dot-dot segments.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New("E141").WithDetail("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return errors.New("E141").WithDetailf("%q must not start or end with /", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return errors.New("E141").WithDetailf("%q has segment %q", key, seg)
		}
		for _, c := range seg {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			case c == '.', c == '_', c == '-':
			default:
				return errors.New("E141").WithDetailf("%q contains %q", key, c)
			}
		}
	}
	return nil
}

// objectName appends the .html extension unless key already has it.
func objectName(key string) string {
	if strings.HasSuffix(key, ".html") {
		return key
	}
	return key + ".html"
}

// Capture serializes n and stores it under key.
func Capture(ctx context.Context, store Store, key string, n hostdom.Node, opts hostdom.RenderOptions) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n")
	if err := hostdom.Render(&buf, n, opts); err != nil {
		return "", errors.New("E140").WithDetail("serialize").Wrap(err)
	}
	return store.Put(ctx, key, buf.Bytes())
}

// NewFromConfig builds the store selected by cfg.Backend. It returns nil
// and no error when snapshots are disabled.
func NewFromConfig(cfg config.SnapshotConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendFile:
		return NewFileStore(cfg.Dir)
	case config.BackendS3:
		return NewS3Store(NewS3Client(cfg), cfg.Bucket, cfg.Prefix), nil
	}
	return nil, errors.New("E123").WithDetailf("unknown snapshot backend %q", cfg.Backend)
}
