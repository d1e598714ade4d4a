package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapestry.yaml")
	content := `
history_capacity: 10
paste_offset:
  x: 20
  y: 30
redis:
  addr: localhost:6379
  ttl: 15m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.HistoryCapacity)
	assert.Equal(t, DefaultLogCapacity, cfg.LogCapacity)
	assert.Equal(t, &Offset{X: 20, Y: 30}, cfg.PasteOffset)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, DefaultRedisPrefix, cfg.Redis.Prefix)

	ttl, err := cfg.Redis.Expiration()
	require.NoError(t, err)
	assert.Equal(t, "15m0s", ttl.String())
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapestry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id_format":"uuid","preview_rows":5}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, IDFormatUUID, cfg.IDFormat)
	assert.Equal(t, 5, cfg.PreviewRows)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.HistoryCapacity = -1
	cfg.IDFormat = "snowflake"
	cfg.Redis.TTL = "soon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history_capacity")
	assert.Contains(t, err.Error(), "id_format")
	assert.Contains(t, err.Error(), "redis ttl")
}

func TestClipboardMiddlewares(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))

	mws, err := ClipboardConfig{}.Middlewares()
	require.NoError(t, err)
	assert.Empty(t, mws)

	mws, err = ClipboardConfig{EncryptionKey: key, FallbackKeys: []string{key}, Redact: []string{"password"}}.Middlewares()
	require.NoError(t, err)
	assert.Len(t, mws, 2)

	_, err = ClipboardConfig{EncryptionKey: "c2hvcnQ="}.Middlewares()
	assert.ErrorContains(t, err, "encryption_key")

	_, err = ClipboardConfig{EncryptionKey: key, FallbackKeys: []string{"!"}}.Middlewares()
	assert.ErrorContains(t, err, "fallback_keys[0]")

	cfg := Default()
	cfg.Clipboard.Redact = []string{"("}
	assert.ErrorContains(t, cfg.Validate(), "clipboard redact")
}
