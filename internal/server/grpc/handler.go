package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
	"github.com/dmitrijs2005/habitkeeper/internal/syncrpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// toStatus maps service errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorInvalidPayload),
		errors.Is(err, common.ErrorUnknownEntityType),
		errors.Is(err, common.ErrorUnknownOperation):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(common.PingStatusOK), nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	var r syncrpc.RegisterRequest
	if err := syncrpc.Decode(req, &r); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if _, err := s.users.Register(ctx, r.Username, r.Salt, r.Verifier); err != nil {
		s.logger.Warn(ctx, "register failed", "username", r.Username, "error", err)
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "user registered", "username", r.Username)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	salt, err := s.users.GetSalt(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(salt), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	var r syncrpc.LoginRequest
	if err := syncrpc.Decode(req, &r); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	userID, token, err := s.users.Login(ctx, r.Username, r.VerifierCandidate)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := syncrpc.Encode(syncrpc.LoginResponse{UserID: userID, AccessToken: token})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GRPCServer) PutSnapshot(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	var snap models.CloudSnapshot
	if err := syncrpc.Decode(req, &snap); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.snapshots.Put(ctx, userID, &snap); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	snap, err := s.snapshots.Get(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := syncrpc.Encode(snap)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *GRPCServer) DeliverMutation(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	var item models.MutationQueueItem
	if err := syncrpc.Decode(req, &item); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.snapshots.ApplyMutation(ctx, userID, item); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}
