package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "agentwallet.log")
	logger, closer, err := Setup(path, "debug")
	require.NoError(t, err)

	logger.Debug().Str("payment_id", "42").Msg("reject submitted")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"payment_id":"42"`)
	require.Contains(t, string(data), `"app":"agentwallet"`)
}

func TestSetupEmptyPathDiscards(t *testing.T) {
	logger, closer, err := Setup("", "info")
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
}

func TestWithLogger(t *testing.T) {
	logger := New(os.Stderr, zerolog.ErrorLevel)
	ctx := WithLogger(context.Background(), logger)
	require.Equal(t, zerolog.ErrorLevel, zerolog.Ctx(ctx).GetLevel())
}
