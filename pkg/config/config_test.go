package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/bytesize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  listen_addr: ":8080"
auth:
  mode: none
storage:
  hot_root: /var/lib/juststorage/hot
  cold_root: /var/lib/juststorage/cold
catalog:
  url: postgres://localhost:5432/juststorage
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadMinimalConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "none", cfg.Auth.Mode)
	assert.Equal(t, "/var/lib/juststorage/hot", cfg.Storage.HotRoot)
	assert.Equal(t, "/var/lib/juststorage/cold", cfg.Storage.ColdRoot)

	// Defaults fill in the rest
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 64*bytesize.KB, cfg.Server.MaxMetadataBytes)
	assert.True(t, cfg.Storage.DurableWrites)
	assert.False(t, cfg.Storage.VerifyOnRead)
	assert.Equal(t, int32(16), cfg.Catalog.MaxConns)
	assert.Equal(t, 60*time.Second, cfg.GC.Interval)
	assert.Equal(t, 100, cfg.GC.BatchSize)
	assert.Equal(t, 24*time.Hour, cfg.GC.TombstoneRetention)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadParsesDurationsAndSizes(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  listen_addr: ":9999"
  request_timeout: 2m
  max_metadata_bytes: 1Mi
auth:
  mode: none
storage:
  hot_root: /hot
  cold_root: /cold
catalog:
  url: postgres://localhost/juststorage
gc:
  interval: 5m
  batch_size: 250
`))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, bytesize.MiB, cfg.Server.MaxMetadataBytes)
	assert.Equal(t, 5*time.Minute, cfg.GC.Interval)
	assert.Equal(t, 250, cfg.GC.BatchSize)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("JUSTSTORAGE_CATALOG_MAX_CONNS", "42")
	t.Setenv("JUSTSTORAGE_LOGGING_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, int32(42), cfg.Catalog.MaxConns)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "same storage roots",
			yaml: `
auth: {mode: none}
storage: {hot_root: /data, cold_root: /data}
catalog: {url: "postgres://x"}
`,
			want: "distinct",
		},
		{
			name: "missing catalog url",
			yaml: `
auth: {mode: none}
storage: {hot_root: /hot, cold_root: /cold}
`,
			want: "required",
		},
		{
			name: "jwt mode without secret",
			yaml: `
auth: {mode: jwt}
storage: {hot_root: /hot, cold_root: /cold}
catalog: {url: "postgres://x"}
`,
			want: "jwt_secret",
		},
		{
			name: "gc interval too short",
			yaml: `
auth: {mode: none}
storage: {hot_root: /hot, cold_root: /cold}
catalog: {url: "postgres://x"}
gc: {interval: 1s}
`,
			want: "10s",
		},
		{
			name: "gc batch size out of range",
			yaml: `
auth: {mode: none}
storage: {hot_root: /hot, cold_root: /cold}
catalog: {url: "postgres://x"}
gc: {batch_size: 5000}
`,
			want: "batch_size",
		},
		{
			name: "bad auth mode",
			yaml: `
auth: {mode: ldap}
storage: {hot_root: /hot, cold_root: /cold}
catalog: {url: "postgres://x"}
`,
			want: "one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStaticModeRequiresKeys(t *testing.T) {
	_, err := Load(writeConfig(t, `
auth: {mode: static}
storage: {hot_root: /hot, cold_root: /cold}
catalog: {url: "postgres://x"}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "static_keys")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.HotRoot = "/srv/hot"
	cfg.Storage.ColdRoot = "/srv/cold"
	cfg.Catalog.URL = "postgres://localhost/juststorage"
	cfg.Auth.Mode = "none"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/hot", loaded.Storage.HotRoot)
	assert.Equal(t, cfg.GC.Interval, loaded.GC.Interval)
}

func TestMustLoadMissingFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "juststorage init")
}
