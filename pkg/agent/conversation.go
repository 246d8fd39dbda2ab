package agent

import (
	"context"
	"fmt"

	"ai-canvas-be/pkg/llm"

	"github.com/google/uuid"
)

// ThreadStore persists conversation history between runs, keyed by
// thread. Repeated runs on the same thread resume prior context.
type ThreadStore interface {
	History(ctx context.Context, threadKey string) ([]llm.Message, error)
	SaveHistory(ctx context.Context, threadKey string, history []llm.Message) error
}

// DefaultThreadKey is the per-canvas thread used when the caller does
// not supply one.
func DefaultThreadKey(canvasId uuid.UUID) string {
	return fmt.Sprintf("canvas_%s", canvasId)
}

func hasSystemTurn(history []llm.Message) bool {
	for _, m := range history {
		if m.Role == llm.RoleSystem {
			return true
		}
	}
	return false
}
