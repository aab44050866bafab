package restserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	grpccontroller "github.com/chrissnell/trackreconcile/internal/controllers/grpc"
	"github.com/chrissnell/trackreconcile/internal/log"
	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/route"
	"github.com/chrissnell/trackreconcile/internal/store"
	"github.com/chrissnell/trackreconcile/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/soheilhy/cmux"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the components the API serves
type Dependencies struct {
	// Store may be nil, in which case only the inline endpoints work
	Store      store.SampleStore
	Reconciler *metrics.Reconciler
	Builder    *route.Builder
	Audit      bool
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.ServerData
	deps       Dependencies
	Server     http.Server
	grpc       *grpccontroller.Controller
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.ServerData, deps Dependencies, logger *zap.SugaredLogger) (*Controller, error) {
	if deps.Reconciler == nil || deps.Builder == nil {
		return nil, fmt.Errorf("REST server requires a reconciler and a route builder")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		deps:       deps,
		logger:     log.OrDefault(logger),
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		ctrl.logger.Info("server.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.restConfig.ListenAddr = config.DefaultListenAddr
	}

	if rc.Port == 0 {
		ctrl.logger.Infof("server.port not provided; defaulting to %d", config.DefaultPort)
		ctrl.restConfig.Port = config.DefaultPort
	}

	if rc.EnableGRPCHealth {
		if rc.Cert != "" {
			ctrl.logger.Warn("gRPC health service is only multiplexed on plaintext listeners; disabling it")
		} else {
			ctrl.grpc = grpccontroller.NewController()
		}
	}

	ctrl.handlers = NewHandlers(ctrl)
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.restConfig.ListenAddr, ctrl.restConfig.Port)
	ctrl.Server.Handler = ctrl.Handler()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// Handler returns the full middleware-wrapped HTTP handler
func (c *Controller) Handler() http.Handler {
	var h http.Handler = c.setupRouter()
	h = handlers.CompressHandler(h)
	h = handlers.CustomLoggingHandler(io.Discard, h, c.accessLog)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(c.logger.Desugar())),
		handlers.PrintRecoveryStack(true),
	)(h)
	return requestIDMiddleware(h)
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")

	l, err := net.Listen("tcp", c.Server.Addr)
	if err != nil {
		return fmt.Errorf("REST server could not listen on %s: %w", c.Server.Addr, err)
	}
	log.Infof("REST server listening on %s", l.Addr())

	httpL := l
	var cm cmux.CMux
	if c.grpc != nil {
		cm = cmux.New(l)
		grpcL := cm.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
		httpL = cm.Match(cmux.Any())

		c.wg.Add(2)
		go func() {
			defer c.wg.Done()
			if err := c.grpc.Serve(grpcL); err != nil && err != cmux.ErrListenerClosed {
				log.Errorf("gRPC health service error: %v", err)
			}
		}()
		go func() {
			defer c.wg.Done()
			if err := cm.Serve(); err != nil && !isClosedConnError(err) {
				log.Errorf("connection multiplexer error: %v", err)
			}
		}()
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ServeTLS(httpL, c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.Serve(httpL); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		if c.grpc != nil {
			c.grpc.StopController()
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c.Server.Shutdown(ctx)
		if cm != nil {
			l.Close()
		}
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", c.handlers.Health).Methods(http.MethodGet)

	// Inline endpoints work without a sample store
	router.HandleFunc("/reconcile", c.handlers.ReconcileInline).Methods(http.MethodPost)
	router.HandleFunc("/route", c.handlers.RouteInline).Methods(http.MethodPost)

	sessions := router.PathPrefix("/sessions/{id}").Subrouter()
	sessions.HandleFunc("/reconcile", c.handlers.ReconcileSession).Methods(http.MethodPost)
	sessions.HandleFunc("/route", c.handlers.GetRoute).Methods(http.MethodGet)
	sessions.HandleFunc("/route.geojson", c.handlers.GetRouteGeoJSON).Methods(http.MethodGet)
	sessions.HandleFunc("/route.gpx", c.handlers.GetRouteGPX).Methods(http.MethodGet)

	return router
}
