package grpc

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"gorm.io/gorm"

	"user-crud-service/internal/adapter/db/gormrepo"
	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"
)

type failingUsecase struct {
	user.UserUsecase
}

func (failingUsecase) ListUsers(context.Context) ([]user.User, error) {
	return nil, errors.New("connection refused")
}

func (failingUsecase) GetUser(context.Context, user.GetUserRequest) (*user.User, error) {
	return nil, apperrors.NewInternalError("failed to get user", errors.New("connection refused"))
}

func newTestUsecase(t *testing.T) user.UserUsecase {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gormrepo.AutoMigrate(db))

	log := zaptest.NewLogger(t)
	return user.New(gormrepo.NewUserRepo(db, log), log)
}

func startServer(t *testing.T, uc user.UserUsecase) *UserServiceClient {
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(logger.RequestIDInterceptor()))
	Register(s, NewUserServiceServer(uc, zaptest.NewLogger(t)))

	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewUserServiceClient(conn)
}

func strPtr(s string) *string { return &s }

func TestUserService_Lifecycle(t *testing.T) {
	client := startServer(t, newTestUsecase(t))
	ctx := context.Background()

	list, err := client.ListUsers(ctx, &ListUsersRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Users)

	created, err := client.CreateUser(ctx, &CreateUserRequest{Name: strPtr("Ana"), Email: strPtr("a@x.com")})
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Name: "Ana", Email: "a@x.com"}, created)

	updated, err := client.UpdateUser(ctx, &UpdateUserRequest{ID: 1, Name: strPtr("Ana B")})
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Name: "Ana B", Email: "a@x.com"}, updated)

	got, err := client.GetUser(ctx, &GetUserRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	list, err = client.ListUsers(ctx, &ListUsersRequest{})
	require.NoError(t, err)
	assert.Equal(t, []User{*updated}, list.Users)

	_, err = client.DeleteUser(ctx, &DeleteUserRequest{ID: 1})
	require.NoError(t, err)

	_, err = client.DeleteUser(ctx, &DeleteUserRequest{ID: 1})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestUserService_ErrorCodes(t *testing.T) {
	client := startServer(t, newTestUsecase(t))
	ctx := context.Background()

	_, err := client.GetUser(ctx, &GetUserRequest{ID: 42})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.UpdateUser(ctx, &UpdateUserRequest{ID: 42, Email: strPtr("x")})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.CreateUser(ctx, &CreateUserRequest{Name: strPtr("Ana")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "email")
}

func TestUserService_UnexpectedErrorIsInternal(t *testing.T) {
	client := startServer(t, failingUsecase{})

	_, err := client.ListUsers(context.Background(), &ListUsersRequest{})
	st := status.Convert(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "connection refused")
}

func TestUserService_InternalErrorKeepsMessageHidesCause(t *testing.T) {
	client := startServer(t, failingUsecase{})

	_, err := client.GetUser(context.Background(), &GetUserRequest{ID: 1})
	st := status.Convert(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "failed to get user", st.Message())
}
