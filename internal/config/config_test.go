package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "api.db", cfg.DB.Path)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.False(t, cfg.Users.AllowPartialCreate)
	assert.Equal(t, "user-crud-service", cfg.Logger.ServiceName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_LoggerDefaultsFollowAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)

	t.Setenv("APP_ENV", "development")

	cfg, err = LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.False(t, cfg.Logger.EnableSampling)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=postgres\nDB_HOST=db.internal\nHTTP_PORT=9000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("USERS_ALLOW_PARTIAL_CREATE", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "9100", cfg.App.HTTPPort)
	assert.True(t, cfg.Users.AllowPartialCreate)
	assert.Equal(t, "host=db.internal user=postgres password=postgres dbname=users port=5432 sslmode=disable", cfg.DB.DSN())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.DB.Driver = "mysql" },
			wantErr: `unsupported DB_DRIVER "mysql"`,
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.DB.Path = "" },
			wantErr: "DB_PATH is required",
		},
		{
			name:    "missing http port",
			mutate:  func(c *Config) { c.App.HTTPPort = "" },
			wantErr: "HTTP_PORT is required",
		},
		{
			name: "redis without ttl",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.CacheTTL = 0
			},
			wantErr: "CACHE_TTL_SECONDS must be positive",
		},
		{
			name: "grpc disabled without port",
			mutate: func(c *Config) {
				c.App.GRPCEnabled = false
				c.App.GRPCPort = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
