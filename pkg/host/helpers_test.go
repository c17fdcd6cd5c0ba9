package host

import ierrors "github.com/vango-dev/hostrender/internal/errors"

func errCode(code string) error { return ierrors.New(code) }
