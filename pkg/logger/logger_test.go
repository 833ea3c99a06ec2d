package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	WithContext(NewContext(context.Background(), "req-1"), base).Info("with id")
	WithContext(context.Background(), base).Info("without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "DEBUG", want: zapcore.DebugLevel},
		{in: "warning", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "bogus", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewWithConfig_InvalidLevel(t *testing.T) {
	_, err := NewWithConfig(Config{Level: "loud"})
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestNewWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := NewWithConfig(Config{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		ServiceName:    "user-crud-service",
		ServiceVersion: "test",
		Environment:    "test",
	})
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("kept")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"kept"`)
	assert.Contains(t, string(data), `"service":"user-crud-service"`)
	assert.NotContains(t, string(data), "dropped")
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/user.v1.UserService/GetUser"}

	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	}

	_, err := interceptor(context.Background(), nil, info, handler)
	require.NoError(t, err)
	assert.NotEmpty(t, seen)

	md := metadata.Pairs(RequestIDHeader, "from-caller")
	_, err = interceptor(metadata.NewIncomingContext(context.Background(), md), nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "from-caller", seen)
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0.05, "warn")

	sql := func() (string, int64) { return "SELECT * FROM users", 1 }

	gl.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len(), "fast query below info level is not logged")

	gl.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record not found is not an error")

	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm slow query", logs.All()[0].Message)

	gl.Trace(context.Background(), time.Now(), sql, assert.AnError)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "gorm query error", logs.All()[1].Message)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, assert.AnError)
	assert.Equal(t, 2, logs.Len())
}

func TestGormLogger_InfoLevelQueriesAreDebugEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0, "info")

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[0].Level)
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	const sql = "INSERT INTO users (name,email) VALUES (?,?)"

	_, params := NewGormLoggerWithConfig(zap.NewNop(), 0, "info").ParamsFilter(context.Background(), sql, "Ana", "a@x.com")
	assert.Nil(t, params, "values are withheld above debug")

	_, params = NewGormLoggerWithConfig(zap.NewNop(), 0, "debug").ParamsFilter(context.Background(), sql, "Ana", "a@x.com")
	assert.Equal(t, []any{"Ana", "a@x.com"}, params)
}

func TestGormLogger_TruncatesOnRuneBoundary(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0, "warn")

	long := "SELECT '" + strings.Repeat("é", maxSQLRunes) + "'"
	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return long, 0 }, assert.AnError)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	got := fields["sql"].(string)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxSQLRunes+3, utf8.RuneCountInString(got))
	assert.Equal(t, true, fields["sql_truncated"])
}

func TestTruncateRunes(t *testing.T) {
	s, cut := truncateRunes("héllo", 10)
	assert.Equal(t, "héllo", s)
	assert.False(t, cut)

	s, cut = truncateRunes("héllo", 2)
	assert.Equal(t, "hé...", s)
	assert.True(t, cut)
}
