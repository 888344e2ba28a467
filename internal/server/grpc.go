package server

import (
	"context"
	"fmt"
	"net"

	"github.com/MKhiriev/go-finance-sync/internal/config"
	myGRPC "github.com/MKhiriev/go-finance-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-finance-sync/internal/logger"

	"google.golang.org/grpc"
)

type grpcServer struct {
	handler *myGRPC.Handler

	server          *grpc.Server
	address         string
	gRPCNetListener net.Listener

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.ClientServer, logger *logger.Logger) *grpcServer {
	srv := grpc.NewServer()
	handler.Register(srv)

	return &grpcServer{
		handler: handler,
		server:  srv,
		address: cfg.GRPCAddress,
		logger:  logger,
	}
}

func (g *grpcServer) RunServer() error {
	lis, err := net.Listen("tcp", g.address)
	if err != nil {
		return fmt.Errorf("%w: grpc %s: %w", errListen, g.address, err)
	}
	g.gRPCNetListener = lis

	g.logger.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")

	go func() {
		if err := g.server.Serve(lis); err != nil {
			g.logger.Err(err).Str("func", "*grpcServer.RunServer").Msg("gRPC server Serve failed")
		}
	}()

	return nil
}

// Shutdown flips the health service to NOT_SERVING and stops gracefully.
// Health Watch streams never end on their own, so GracefulStop is cut short
// by ctx.
func (g *grpcServer) Shutdown(ctx context.Context) error {
	g.logger.Info().Msg("gRPC server Shutdown")
	g.handler.Close()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		g.server.Stop()
		<-stopped
		return fmt.Errorf("gRPC server Shutdown: %w", ctx.Err())
	}
}
