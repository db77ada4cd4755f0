package model

import "context"

// ContextManager carries the authenticated subject through a request context.
type ContextManager interface {
	SetSubjectToContext(ctx context.Context, subject string) context.Context
	GetSubjectFromContext(ctx context.Context) (string, bool)
}
