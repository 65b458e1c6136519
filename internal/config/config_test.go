package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves into an empty directory so no stray .env file is loaded.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./ghalya.db", cfg.DatabaseURL)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "inline", cfg.ImageBackend)
	assert.Equal(t, int64(5<<20), cfg.ImageMaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.NotEmpty(t, cfg.JWTSecret, "a random secret is generated")
}

func TestLoadConfigOverridesAndFallbacks(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("PORT", "not-a-port")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "a-very-long-secret-value-for-testing-only")
	t.Setenv("IMAGE_MAX_MB", "-3")
	t.Setenv("CORS_ORIGINS", "https://ghalya.shop, http://localhost:3000 ,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, []byte("a-very-long-secret-value-for-testing-only"), cfg.JWTSecret)
	assert.Equal(t, int64(5<<20), cfg.ImageMaxBytes)
	assert.Equal(t, []string{"https://ghalya.shop", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigErrors(t *testing.T) {
	chdirTemp(t)
	os.Unsetenv("ADMIN_PASSWORD")
	os.Unsetenv("ADMIN_PASSWORD_HASH")
	t.Setenv("ADMIN_PASSWORD", "")
	_, err := LoadConfig()
	assert.Error(t, err, "admin credentials are required")

	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("IMAGE_BACKEND", "remote")
	_, err = LoadConfig()
	assert.Error(t, err, "remote backend needs a URL")

	t.Setenv("IMAGE_BACKEND", "ftp")
	_, err = LoadConfig()
	assert.Error(t, err)

	t.Setenv("IMAGE_BACKEND", "inline")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_PASSWORD=from-file\nUPLOAD_DIR=/srv/uploads\n"), 0o600))
	t.Setenv("UPLOAD_DIR", "")
	os.Unsetenv("UPLOAD_DIR")
	t.Setenv("ADMIN_PASSWORD", "")
	os.Unsetenv("ADMIN_PASSWORD")
	t.Cleanup(func() { os.Unsetenv("ADMIN_PASSWORD"); os.Unsetenv("UPLOAD_DIR") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AdminPassword)
	assert.Equal(t, "/srv/uploads", cfg.UploadDir)
}
