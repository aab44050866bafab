// Package grpc serves the standard gRPC health service so orchestrators can
// probe the API with grpc_health_probe alongside the HTTP /health endpoint.
package grpc

import (
	"net"

	"github.com/chrissnell/trackreconcile/internal/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the reconciliation API
const ServiceName = "trackreconcile.v1.API"

// Controller represents the gRPC health controller
type Controller struct {
	Server *grpc.Server
	health *health.Server
}

// NewController creates a gRPC server with the health and reflection services registered
func NewController() *Controller {
	ctrl := &Controller{
		Server: grpc.NewServer(),
		health: health.NewServer(),
	}

	healthpb.RegisterHealthServer(ctrl.Server, ctrl.health)
	reflection.Register(ctrl.Server)
	ctrl.SetServing(true)

	return ctrl
}

// SetServing flips both the overall and the API service status
func (c *Controller) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	c.health.SetServingStatus("", status)
	c.health.SetServingStatus(ServiceName, status)
}

// Serve blocks serving gRPC on l until StopController is called
func (c *Controller) Serve(l net.Listener) error {
	log.Infof("gRPC health service listening on %s", l.Addr())
	return c.Server.Serve(l)
}

// StopController marks the service as not serving and stops the gRPC server
func (c *Controller) StopController() {
	log.Info("Stopping gRPC health service...")
	c.health.Shutdown()
	c.Server.GracefulStop()
}
