package middleware

import (
	"context"

	"github.com/dtroode/sessiongate/internal/api/http/response"
	"github.com/dtroode/sessiongate/internal/model"
	"github.com/gin-gonic/gin"
)

// Authenticator decides whether an Authorization header value admits the request.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (model.Claims, error)
}

// Authenticate runs the auth gate in front of protected routes and injects the subject into context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager}
}

// Handle admits the request or aborts it before the handler runs.
func (m *Authenticate) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	claims, err := m.authenticator.Authenticate(ctx, c.GetHeader("Authorization"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Request = c.Request.WithContext(m.contextManager.SetSubjectToContext(ctx, claims.Subject))
	c.Next()
}
