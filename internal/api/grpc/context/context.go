package context

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// subjectKey is the metadata key used to store and retrieve the subject in gRPC context.
const subjectKey = "x-subject"

// Manager represents a gRPC context manager for the authenticated subject.
// The subject travels in incoming metadata so downstream interceptors and handlers see it.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetSubjectToContext sets the subject in the incoming metadata of ctx.
// A subject supplied by the client under the same key is overwritten.
func (m *Manager) SetSubjectToContext(ctx context.Context, subject string) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}
	md.Set(subjectKey, subject)

	return metadata.NewIncomingContext(ctx, md)
}

// GetSubjectFromContext retrieves the subject from incoming metadata.
func (m *Manager) GetSubjectFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	subjects := md.Get(subjectKey)
	if len(subjects) == 0 || subjects[0] == "" {
		return "", false
	}

	return subjects[0], true
}
