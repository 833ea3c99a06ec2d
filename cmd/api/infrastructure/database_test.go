package infrastructure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-crud-service/internal/adapter/db/gormrepo"
	"user-crud-service/internal/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		DB: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			Path:         filepath.Join(t.TempDir(), "api.db"),
			MaxOpenConns: 25,
			MaxIdleConns: 1,
			AutoMigrate:  true,
		},
		Logger: config.LoggerConfig{Level: "info", SlowQuerySeconds: 0.2},
	}
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(sqliteConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	assert.True(t, db.Migrator().HasTable(&gormrepo.UserSchema{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewDatabase_NoAutoMigrate(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DB.AutoMigrate = false

	db, err := NewDatabase(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	assert.False(t, db.Migrator().HasTable(&gormrepo.UserSchema{}))
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.DB.Driver = "mysql"

	_, err := NewDatabase(cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, `unsupported database driver "mysql"`)
}

func TestCloseDatabase_Nil(t *testing.T) {
	assert.NoError(t, CloseDatabase(nil))
}
