// Package grpc exposes the server services over the HabitKeeper SyncService.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/habitkeeper/internal/logging"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
	sm "github.com/dmitrijs2005/habitkeeper/internal/server/models"
	"github.com/dmitrijs2005/habitkeeper/internal/syncrpc"
	"google.golang.org/grpc"
)

// UserService is implemented by services.UserService.
type UserService interface {
	Register(ctx context.Context, username string, salt, verifier []byte) (*sm.User, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifierCandidate []byte) (string, string, error)
}

// SnapshotService is implemented by services.SnapshotService.
type SnapshotService interface {
	Get(ctx context.Context, userID string) (*models.CloudSnapshot, error)
	Put(ctx context.Context, userID string, snap *models.CloudSnapshot) error
	ApplyMutation(ctx context.Context, userID string, item models.MutationQueueItem) error
}

type GRPCServer struct {
	address   string
	users     UserService
	snapshots SnapshotService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us UserService, ss SnapshotService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		snapshots: ss,
		jwtSecret: []byte(secretKey),
	}
}

// newServer builds the grpc.Server with interceptors and the service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	syncrpc.RegisterSyncServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
