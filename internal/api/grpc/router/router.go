package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtroode/sessiongate/internal/api/grpc/handler"
	"github.com/dtroode/sessiongate/internal/api/grpc/middleware"
	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/model"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

const healthPrefix = "/grpc.health.v1.Health/"

// Router represents the ops gRPC router.
// It registers the health and reflection services behind the interceptor chain.
type Router struct {
	authenticator  middleware.Authenticator
	health         *handler.Health
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	authenticator middleware.Authenticator,
	health *handler.Health,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authenticator:  authenticator,
		health:         health,
		contextManager: contextManager,
		logger:         logger,
	}
}

// authRequired lets health checks through without a token.
func authRequired(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), healthPrefix)
}

// Register registers all gRPC services and middleware.
// Every call is logged and recovered from panics. All but health checks pass the auth gate.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.authenticator, r.contextManager)
	recoveryOpt := recovery.WithRecoveryHandler(r.recoverPanic)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpt),
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authRequired),
			),
		),
		grpc.ChainStreamInterceptor(
			logging.HandleGRPCStream,
			recovery.StreamServerInterceptor(recoveryOpt),
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authRequired),
			),
		),
	)

	healthpb.RegisterHealthServer(s, r.health.Server())
	reflection.Register(s)

	return s
}

func (r *Router) recoverPanic(p any) error {
	r.logger.Error("gRPC handler panicked",
		"error", fmt.Sprintf("%v", p))
	return status.Error(codes.Internal, "internal server error")
}
