package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"user-crud-service/cmd/api/di"
	grpcadapter "user-crud-service/internal/adapter/grpc"
	"user-crud-service/internal/config"
)

func newTestServer(t *testing.T, grpcEnabled bool) *Server {
	cfg := &config.Config{
		DB: config.DatabaseConfig{
			Driver:      config.DriverSQLite,
			Path:        filepath.Join(t.TempDir(), "api.db"),
			AutoMigrate: true,
		},
		App: config.AppConfig{
			HTTPPort:               "0",
			GRPCPort:               "0",
			GRPCEnabled:            grpcEnabled,
			ShutdownTimeoutSeconds: 1,
		},
		Logger: config.LoggerConfig{Level: "info", ServiceName: "user-crud-service"},
	}
	l := zaptest.NewLogger(t)

	c, err := di.NewContainer(context.Background(), cfg, l)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	s := New(cfg, l, c)
	require.NoError(t, s.Listen(context.Background()))

	served := make(chan error, 1)
	go func() { served <- s.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, s.Shutdown(ctx))
		assert.NoError(t, <-served)
	})

	return s
}

func loopback(addr net.Addr) string {
	return fmt.Sprintf("127.0.0.1:%d", addr.(*net.TCPAddr).Port)
}

func TestServer_HTTPAndGRPCShareStore(t *testing.T) {
	s := newTestServer(t, true)
	base := "http://" + loopback(s.HTTPAddr())

	resp, err := http.PostForm(base+"/users", url.Values{"name": {"Ana"}, "email": {"a@x.com"}})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1,"name":"Ana","email":"a@x.com"}`, string(body))

	conn, err := grpc.NewClient(loopback(s.GRPCAddr()), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	got, err := grpcadapter.NewUserServiceClient(conn).GetUser(context.Background(), &grpcadapter.GetUserRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func TestServer_GRPCDisabled(t *testing.T) {
	s := newTestServer(t, false)

	assert.Nil(t, s.GRPC)
	assert.Nil(t, s.GRPCAddr())

	resp, err := http.Get("http://" + loopback(s.HTTPAddr()) + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "healthy"))
}
