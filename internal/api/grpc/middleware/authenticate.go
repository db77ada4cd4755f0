package middleware

import (
	"context"

	"github.com/dtroode/sessiongate/internal/api/grpc/handler"
	"github.com/dtroode/sessiongate/internal/model"
	"google.golang.org/grpc/metadata"
)

// Authenticator decides whether an Authorization value admits the call.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (model.Claims, error)
}

// Authenticate runs the auth gate for gRPC calls and injects the subject into context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager}
}

// AuthFunc reads the authorization metadata, runs the gate and returns a context carrying the subject.
// Gate rejections become Unauthenticated, storage failures become Internal.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}
	}

	claims, err := m.authenticator.Authenticate(ctx, header)
	if err != nil {
		return nil, handler.Status(err)
	}

	return m.contextManager.SetSubjectToContext(ctx, claims.Subject), nil
}
