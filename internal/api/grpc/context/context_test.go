package context

import (
	stdctx "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestManager_SetAndGetSubject(t *testing.T) {
	t.Parallel()

	m := NewManager()
	ctx := m.SetSubjectToContext(stdctx.Background(), "alice")

	got, ok := m.GetSubjectFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", got)
}

func TestManager_GetSubject_NotFound(t *testing.T) {
	t.Parallel()

	m := NewManager()
	_, ok := m.GetSubjectFromContext(stdctx.Background())
	assert.False(t, ok)
}

func TestManager_SetSubject_WithExistingMetadata(t *testing.T) {
	t.Parallel()

	m := NewManager()
	baseMD := metadata.New(map[string]string{"x-trace-id": "t"})
	ctxWithMD := metadata.NewIncomingContext(stdctx.Background(), baseMD)

	ctx := m.SetSubjectToContext(ctxWithMD, "alice")
	got, ok := m.GetSubjectFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", got)

	md, _ := metadata.FromIncomingContext(ctx)
	assert.Equal(t, []string{"t"}, md.Get("x-trace-id"))
	assert.Empty(t, baseMD.Get(subjectKey), "original metadata must not be mutated")
}

func TestManager_SetSubject_OverridesClientValue(t *testing.T) {
	t.Parallel()

	m := NewManager()
	spoofed := metadata.NewIncomingContext(stdctx.Background(), metadata.Pairs(subjectKey, "mallory"))

	ctx := m.SetSubjectToContext(spoofed, "alice")
	got, ok := m.GetSubjectFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", got)
}
