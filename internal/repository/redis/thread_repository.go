package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-canvas-be/pkg/llm"

	"github.com/redis/go-redis/v9"
)

const threadTTL = 1 * time.Hour

// ThreadRepository persists conversation threads in Redis so agent
// context survives process restarts and is shared across instances.
type ThreadRepository struct {
	client *redis.Client
}

func NewThreadRepository(client *redis.Client) *ThreadRepository {
	return &ThreadRepository{client: client}
}

func threadStorageKey(threadKey string) string {
	return fmt.Sprintf("agent:thread:%s", threadKey)
}

func (r *ThreadRepository) History(ctx context.Context, threadKey string) ([]llm.Message, error) {
	raw, err := r.client.Get(ctx, threadStorageKey(threadKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var history []llm.Message
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (r *ThreadRepository) SaveHistory(ctx context.Context, threadKey string, history []llm.Message) error {
	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, threadStorageKey(threadKey), raw, threadTTL).Err()
}
