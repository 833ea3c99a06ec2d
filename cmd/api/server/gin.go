package server

import (
	"net/http"
	"time"

	ginhandler "user-crud-service/internal/adapter/gin/handler"
	ginrouter "user-crud-service/internal/adapter/gin/router"

	"go.uber.org/zap"
)

// SetupGinServer creates the HTTP server for the REST API.
func SetupGinServer(handler *ginhandler.UserHandler, serviceName string, l *zap.Logger) *http.Server {
	router := ginrouter.SetupRouter(handler, serviceName, l)

	return &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
