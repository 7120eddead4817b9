package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"satstream/internal/configuration/properties"
	"satstream/internal/coordinator"
	"satstream/internal/metrics"
	"satstream/internal/network"
	"satstream/internal/storage"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName      = "satstream.ingest.Feed"
	streamMethod     = "Stream"
	fullStreamMethod = "/" + ServiceName + "/" + streamMethod
)

// FeedServer accepts one client stream per producer. The client sends raw
// byte chunks of framed messages and receives the number of accepted clause
// updates when it closes its side.
type FeedServer interface {
	Stream(stream grpc.ServerStream) error
}

var feedServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeedServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    streamMethod,
			Handler:       feedStreamHandler,
			ClientStreams: true,
		},
	},
	Metadata: "satstream/ingest/feed",
}

func feedStreamHandler(srv any, stream grpc.ServerStream) error {
	return srv.(FeedServer).Stream(stream)
}

type Server struct {
	dispatcher *Dispatcher
	blueprint  *network.Blueprint
	grpcServer *grpc.Server
	health     *health.Server
	network    string
	address    string
}

func NewServer(cfg *properties.TransportConfigProperties, d *Dispatcher) *Server {
	var opts []grpc.ServerOption
	opts = append(opts, grpc.ChainStreamInterceptor(metrics.StreamServerInterceptor()))
	if cfg.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(cfg.MaxConcurrentStreams))
	}
	if cfg.MaxRecvMsgSize > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize))
	}

	s := &Server{
		dispatcher: d,
		blueprint:  network.SolverBlueprint(),
		grpcServer: grpc.NewServer(opts...),
		health:     health.NewServer(),
		network:    cfg.Network,
		address:    cfg.ListenAddr(),
	}

	s.grpcServer.RegisterService(&feedServiceDesc, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen(s.network, s.address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.address, err)
	}
	return s.Serve(ctx, lis)
}

func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	slog.Info("ingest listening", "addr", lis.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("ingest serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	<-errCh
	slog.Info("ingest stopped")
	return nil
}

func (s *Server) Stream(stream grpc.ServerStream) error {
	session := s.dispatcher.NewSession()
	receiver := network.NewReceiver(s.blueprint)

	metrics.IngestStreamsActive.Inc()
	defer metrics.IngestStreamsActive.Dec()

	session.log.Info("stream opened")

	for {
		chunk := new(wrapperspb.BytesValue)
		if err := stream.RecvMsg(chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			session.log.Warn("stream receive failed", "accepted", session.Accepted(), "error", err)
			return err
		}
		metrics.IngestBytesTotal.Add(float64(len(chunk.GetValue())))

		msgs, recvErr := receiver.ReceiveAll(chunk.GetValue())
		for _, msg := range msgs {
			if err := session.Handle(msg); err != nil {
				return s.abort(session, err)
			}
		}
		if err := session.Flush(); err != nil {
			return s.abort(session, err)
		}
		if recvErr != nil {
			return s.abort(session, recvErr)
		}
	}

	if receiver.Pending() {
		session.log.Warn("stream closed inside a message")
	}
	session.log.Info("stream closed", "accepted", session.Accepted())
	return stream.SendMsg(wrapperspb.UInt64(session.Accepted()))
}

func (s *Server) abort(session *Session, err error) error {
	st := toStatus(err)
	metrics.IngestStreamFailures.WithLabelValues(st.Code().String()).Inc()
	session.log.Error("stream aborted", "accepted", session.Accepted(), "error", err)
	return st.Err()
}

func toStatus(err error) *status.Status {
	switch {
	case errors.Is(err, network.ErrReceiverFailed):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrInstanceMismatch), errors.Is(err, ErrNoOffer):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.Is(err, coordinator.ErrClosed), errors.Is(err, storage.ErrClosed):
		return status.New(codes.Unavailable, "coordinator is closed")
	default:
		return status.Newf(codes.Internal, "internal error: %v", err)
	}
}
