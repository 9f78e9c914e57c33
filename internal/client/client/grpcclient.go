package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
	"github.com/dmitrijs2005/habitkeeper/internal/syncrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      syncrpc.SyncServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewHabitKeeperClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = syncrpc.NewSyncServiceClient(conn)
	return nil
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SetAccessToken installs a token restored from a saved session, or clears
// it when token is empty.
func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt []byte, verifier []byte) error {
	req, err := syncrpc.Encode(syncrpc.RegisterRequest{Username: userName, Salt: salt, Verifier: verifier})
	if err != nil {
		return err
	}

	if _, err := s.client.RegisterUser(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	resp, err := s.client.GetSalt(ctx, wrapperspb.String(userName))
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, verifier []byte) (string, string, error) {
	req, err := syncrpc.Encode(syncrpc.LoginRequest{Username: userName, VerifierCandidate: verifier})
	if err != nil {
		return "", "", err
	}

	out, err := s.client.Login(ctx, req)
	if err != nil {
		return "", "", s.mapError(err)
	}

	var resp syncrpc.LoginResponse
	if err := syncrpc.Decode(out, &resp); err != nil {
		return "", "", err
	}

	s.SetAccessToken(resp.AccessToken)
	return resp.UserID, resp.AccessToken, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetValue() != common.PingStatusOK {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) PutSnapshot(ctx context.Context, snap models.CloudSnapshot) error {
	req, err := syncrpc.Encode(snap)
	if err != nil {
		return err
	}
	if _, err := s.client.PutSnapshot(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetSnapshot(ctx context.Context) (*models.CloudSnapshot, error) {
	out, err := s.client.GetSnapshot(ctx, &emptypb.Empty{})
	if err != nil {
		err = s.mapError(err)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var snap models.CloudSnapshot
	if err := syncrpc.Decode(out, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *GRPCClient) DeliverMutation(ctx context.Context, item models.MutationQueueItem) error {
	req, err := syncrpc.Encode(item)
	if err != nil {
		return err
	}
	if _, err := s.client.DeliverMutation(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
