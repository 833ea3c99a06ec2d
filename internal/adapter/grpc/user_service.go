package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"user-crud-service/internal/usecase/user"
	"user-crud-service/pkg/logger"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "user.v1.UserService"

// UserService is the server API for user.v1.UserService.
type UserService interface {
	CreateUser(context.Context, *CreateUserRequest) (*User, error)
	GetUser(context.Context, *GetUserRequest) (*User, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*User, error)
	DeleteUser(context.Context, *DeleteUserRequest) (*DeleteUserResponse, error)
	ListUsers(context.Context, *ListUsersRequest) (*ListUsersResponse, error)
}

// UserServiceServer implements the gRPC user service
type UserServiceServer struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(uc user.UserUsecase, log *zap.Logger) *UserServiceServer {
	return &UserServiceServer{uc: uc, log: log}
}

// statusError passes typed errors through with their own gRPC status and
// turns anything else into codes.Internal without the cause.
func (s *UserServiceServer) statusError(ctx context.Context, method string, err error) error {
	log := logger.WithContext(ctx, s.log).With(zap.String("method", method))
	if _, ok := status.FromError(err); ok {
		log.Debug("grpc call failed", zap.Error(err))
		return err
	}
	log.Error("grpc call failed", zap.Error(err))
	return status.Error(codes.Internal, "internal server error")
}

func toMessage(u *user.User) *User {
	return &User{ID: u.ID, Name: u.Name, Email: u.Email}
}

// CreateUser handles gRPC CreateUser request
func (s *UserServiceServer) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	u, err := s.uc.CreateUser(ctx, user.CreateUserRequest{Name: req.Name, Email: req.Email})
	if err != nil {
		return nil, s.statusError(ctx, "CreateUser", err)
	}
	return toMessage(u), nil
}

// GetUser handles gRPC GetUser request
func (s *UserServiceServer) GetUser(ctx context.Context, req *GetUserRequest) (*User, error) {
	u, err := s.uc.GetUser(ctx, user.GetUserRequest{ID: req.ID})
	if err != nil {
		return nil, s.statusError(ctx, "GetUser", err)
	}
	return toMessage(u), nil
}

// UpdateUser handles gRPC UpdateUser request
func (s *UserServiceServer) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*User, error) {
	u, err := s.uc.UpdateUser(ctx, user.UpdateUserRequest{ID: req.ID, Name: req.Name, Email: req.Email})
	if err != nil {
		return nil, s.statusError(ctx, "UpdateUser", err)
	}
	return toMessage(u), nil
}

// DeleteUser handles gRPC DeleteUser request
func (s *UserServiceServer) DeleteUser(ctx context.Context, req *DeleteUserRequest) (*DeleteUserResponse, error) {
	if err := s.uc.DeleteUser(ctx, user.DeleteUserRequest{ID: req.ID}); err != nil {
		return nil, s.statusError(ctx, "DeleteUser", err)
	}
	return &DeleteUserResponse{}, nil
}

// ListUsers handles gRPC ListUsers request
func (s *UserServiceServer) ListUsers(ctx context.Context, _ *ListUsersRequest) (*ListUsersResponse, error) {
	users, err := s.uc.ListUsers(ctx)
	if err != nil {
		return nil, s.statusError(ctx, "ListUsers", err)
	}

	resp := &ListUsersResponse{Users: make([]User, len(users))}
	for i := range users {
		resp.Users[i] = *toMessage(&users[i])
	}
	return resp, nil
}

// Register attaches srv to s under ServiceName.
func Register(s grpc.ServiceRegistrar, srv UserService) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req any](
	method string,
	call func(UserService, context.Context, *Req) (any, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(UserService), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(UserService), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes user.v1.UserService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserService)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateUser", func(s UserService, ctx context.Context, in *CreateUserRequest) (any, error) {
			return s.CreateUser(ctx, in)
		}),
		unary("GetUser", func(s UserService, ctx context.Context, in *GetUserRequest) (any, error) {
			return s.GetUser(ctx, in)
		}),
		unary("UpdateUser", func(s UserService, ctx context.Context, in *UpdateUserRequest) (any, error) {
			return s.UpdateUser(ctx, in)
		}),
		unary("DeleteUser", func(s UserService, ctx context.Context, in *DeleteUserRequest) (any, error) {
			return s.DeleteUser(ctx, in)
		}),
		unary("ListUsers", func(s UserService, ctx context.Context, in *ListUsersRequest) (any, error) {
			return s.ListUsers(ctx, in)
		}),
	},
	Metadata: "user/v1/user.proto",
}

// UserServiceClient calls user.v1.UserService using the JSON codec.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserServiceClient creates a client on an established connection.
func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

func (c *UserServiceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *UserServiceClient) CreateUser(ctx context.Context, in *CreateUserRequest, opts ...grpc.CallOption) (*User, error) {
	out := new(User)
	if err := c.invoke(ctx, "CreateUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*User, error) {
	out := new(User)
	if err := c.invoke(ctx, "GetUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*User, error) {
	out := new(User)
	if err := c.invoke(ctx, "UpdateUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) DeleteUser(ctx context.Context, in *DeleteUserRequest, opts ...grpc.CallOption) (*DeleteUserResponse, error) {
	out := new(DeleteUserResponse)
	if err := c.invoke(ctx, "DeleteUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *UserServiceClient) ListUsers(ctx context.Context, in *ListUsersRequest, opts ...grpc.CallOption) (*ListUsersResponse, error) {
	out := new(ListUsersResponse)
	if err := c.invoke(ctx, "ListUsers", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
