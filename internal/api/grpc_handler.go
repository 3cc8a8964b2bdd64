package api

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServiceName is the gRPC health service name that tracks the catalog.
const HealthServiceName = "designghar.catalog"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GRPCHealth serves the standard gRPC health protocol. Its status follows
// whether the database answers pings.
type GRPCHealth struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	logger   *zap.Logger
	serving  bool
}

func NewGRPCHealth(db Pinger, interval time.Duration, logger *zap.Logger) *GRPCHealth {
	g := &GRPCHealth{server: health.NewServer(), db: db, interval: interval, logger: logger}
	g.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return g
}

// NewGRPCServer returns a gRPC server exposing health checks and reflection.
func (g *GRPCHealth) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	grpc_health_v1.RegisterHealthServer(s, g.server)
	// Enable gRPC server reflection (useful for tools like grpcurl).
	reflection.Register(s)
	return s
}

// Run checks the database every interval until ctx is done, then reports
// NOT_SERVING for good.
func (g *GRPCHealth) Run(ctx context.Context) {
	g.Check(ctx)
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			g.server.Shutdown()
			return
		case <-ticker.C:
			g.Check(ctx)
		}
	}
}

// Check pings the database once and updates the served status.
func (g *GRPCHealth) Check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := g.db.Ping(pingCtx)
	switch {
	case err == nil && !g.serving:
		g.logger.Info("database reachable, reporting serving")
		g.set(grpc_health_v1.HealthCheckResponse_SERVING)
	case err != nil && g.serving:
		g.logger.Warn("database ping failed, reporting not serving", zap.Error(err))
		g.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
}

func (g *GRPCHealth) set(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	g.serving = status == grpc_health_v1.HealthCheckResponse_SERVING
	g.server.SetServingStatus("", status)
	g.server.SetServingStatus(HealthServiceName, status)
}
