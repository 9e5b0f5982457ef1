package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TASKFLOW_JWT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "data/taskflow.db", cfg.DBPath)
	require.Equal(t, "web/dist", cfg.StaticDir)
	require.Equal(t, "env-secret", cfg.JWTSecret)
	require.Equal(t, 30*24*time.Hour, cfg.TokenValidity)
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskflow.yaml")
	content := "addr: \":9000\"\ndb_path: /tmp/test.db\njwt_secret: file-secret\ntoken_validity: 1h\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, "/tmp/test.db", cfg.DBPath)
	require.Equal(t, "file-secret", cfg.JWTSecret)
	require.Equal(t, time.Hour, cfg.TokenValidity)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9000\"\njwt_secret: file-secret\n"), 0o600))

	t.Setenv("TASKFLOW_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Addr)
	require.Equal(t, "file-secret", cfg.JWTSecret)
}
