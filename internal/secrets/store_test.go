package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := configDir
	configDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { configDir = prev })
	return dir
}

func TestTokenRoundTrip(t *testing.T) {
	dir := useTempConfigDir(t)

	require.NoError(t, StoreToken("https://api.example.test/v1", " tok-123 "))
	got, err := FetchToken("https://API.example.test")
	require.NoError(t, err)
	require.Equal(t, "tok-123", got)

	raw, err := os.ReadFile(filepath.Join(dir, "agentwallet", "tokens.json"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "tok-123")

	info, err := os.Stat(filepath.Join(dir, "agentwallet", "tokens.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTokensAreScopedByHost(t *testing.T) {
	useTempConfigDir(t)

	require.NoError(t, StoreToken("https://a.example.test", "one"))
	require.NoError(t, StoreToken("https://b.example.test", "two"))

	a, err := FetchToken("https://a.example.test")
	require.NoError(t, err)
	require.Equal(t, "one", a)

	require.NoError(t, DeleteToken("https://a.example.test"))
	_, err = FetchToken("https://a.example.test")
	require.ErrorIs(t, err, ErrNotFound)

	b, err := FetchToken("https://b.example.test")
	require.NoError(t, err)
	require.Equal(t, "two", b)
}

func TestStoreTokenValidation(t *testing.T) {
	useTempConfigDir(t)
	require.Error(t, StoreToken("not a url", "x"))
	require.Error(t, StoreToken("https://a.example.test", "   "))
}
