package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/agentwallet/internal/config"
	"github.com/jask/agentwallet/internal/secrets"
)

func TestResolveTokenPrecedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AW_TEST_TOKEN", "")

	cfg := config.Config{}
	cfg.Backend.URL = "https://api.example.test"
	cfg.Backend.TokenEnv = "AW_TEST_TOKEN"
	cfg.Backend.Token = " from-file "
	require.Equal(t, "from-file", resolveToken(cfg))

	require.NoError(t, secrets.StoreToken(cfg.Backend.URL, "from-store"))
	require.Equal(t, "from-store", resolveToken(cfg))

	t.Setenv("AW_TEST_TOKEN", "from-env")
	require.Equal(t, "from-env", resolveToken(cfg))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["login"])
	require.True(t, names["logout"])
	require.NotNil(t, rootCmd.Flags().Lookup("demo"))
}

func TestLoginWithURLSavesBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	t.Setenv("AGENTWALLET_CONFIG", filepath.Join(dir, "agentwallet.toml"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"login", "--url", "https://wallet.example.test/", "s3cret"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		_ = loginCmd.Flags().Set("url", "")
	})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "Backend set to https://wallet.example.test")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "https://wallet.example.test", cfg.Backend.URL)

	tok, err := secrets.FetchToken(cfg.Backend.URL)
	require.NoError(t, err)
	require.Equal(t, "s3cret", tok)
}
