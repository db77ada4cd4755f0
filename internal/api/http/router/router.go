package router

import (
	"net/http"

	"github.com/dtroode/sessiongate/internal/api/http/handler"
	"github.com/dtroode/sessiongate/internal/api/http/middleware"
	"github.com/dtroode/sessiongate/internal/logger"
	"github.com/dtroode/sessiongate/internal/model"
	"github.com/gin-gonic/gin"
)

// Router wires HTTP routes to handlers and the auth gate.
type Router struct {
	authService    handler.AuthService
	authenticator  middleware.Authenticator
	pinger         handler.Pinger
	metrics        http.Handler
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	authService handler.AuthService,
	authenticator middleware.Authenticator,
	pinger handler.Pinger,
	metrics http.Handler,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		authenticator:  authenticator,
		pinger:         pinger,
		metrics:        metrics,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the gin engine with all routes and middleware.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.authenticator, r.contextManager)

	e := gin.New()
	e.Use(
		middleware.RequestID(),
		logging.Handle,
		middleware.Recovery(r.logger),
	)

	system := handler.NewSystem(r.pinger, r.logger)
	e.GET("/", system.Index)
	e.GET("/healthz", system.Healthz)
	if r.metrics != nil {
		e.GET("/metrics", gin.WrapH(r.metrics))
	}
	e.NoRoute(system.NotFound)

	auth := handler.NewAuth(r.authService, r.contextManager, r.logger)
	e.POST("/login", auth.Login)

	protected := e.Group("/", authenticate.Handle)
	protected.GET("/users/me", auth.Me)
	protected.PATCH("/users/me/password", auth.ChangePassword)
	protected.POST("/logout", auth.Logout)

	return e
}
