package composables

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestUseLogger(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("request_id", "abc123")

	ctx := WithLogger(context.Background(), entry)
	require.Same(t, entry, UseLogger(ctx))

	// Without a request-scoped logger the standard logger is used, so
	// callers never need a nil check.
	fallback := UseLogger(context.Background())
	require.NotNil(t, fallback)
	require.Same(t, logrus.StandardLogger(), fallback.Logger)
}

func TestUseParams(t *testing.T) {
	params := &Params{IP: "10.0.0.1", Authenticated: true}
	ctx := WithParams(context.Background(), params)

	got, ok := UseParams(ctx)
	require.True(t, ok)
	require.Same(t, params, got)

	_, ok = UseParams(context.Background())
	require.False(t, ok)
}
