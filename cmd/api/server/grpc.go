package server

import (
	grpcadapter "user-crud-service/internal/adapter/grpc"
	"user-crud-service/pkg/logger"

	grpc "google.golang.org/grpc"
)

// SetupGRPC creates the gRPC server and registers the user service on it.
func SetupGRPC(svc grpcadapter.UserService) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
		),
	)
	grpcadapter.Register(grpcServer, svc)

	return grpcServer
}
