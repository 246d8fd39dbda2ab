package memory

import (
	"context"
	"testing"

	"ai-canvas-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadRepositoryRoundTrip(t *testing.T) {
	repo := NewThreadRepository()
	ctx := context.Background()

	history, err := repo.History(ctx, "canvas_abc")
	require.NoError(t, err)
	assert.Nil(t, history)

	saved := []llm.Message{
		{Role: llm.RoleSystem, Content: "system prompt"},
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleAssistant, Content: "hi"},
	}
	require.NoError(t, repo.SaveHistory(ctx, "canvas_abc", saved))

	history, err = repo.History(ctx, "canvas_abc")
	require.NoError(t, err)
	assert.Equal(t, saved, history)

	// Other keys stay isolated.
	other, err := repo.History(ctx, "canvas_other")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestThreadRepositoryDelete(t *testing.T) {
	repo := NewThreadRepository()
	ctx := context.Background()

	require.NoError(t, repo.SaveHistory(ctx, "canvas_abc", []llm.Message{{Role: llm.RoleUser, Content: "hi"}}))
	repo.Delete("canvas_abc")

	history, err := repo.History(ctx, "canvas_abc")
	require.NoError(t, err)
	assert.Nil(t, history)
}
