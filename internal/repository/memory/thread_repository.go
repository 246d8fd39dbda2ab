package memory

import (
	"context"
	"time"

	"ai-canvas-be/pkg/llm"

	"github.com/patrickmn/go-cache"
)

// ThreadRepository keeps conversation threads in process memory.
// Threads expire after an hour of inactivity.
type ThreadRepository struct {
	cache *cache.Cache
}

func NewThreadRepository() *ThreadRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ThreadRepository{
		cache: c,
	}
}

func (r *ThreadRepository) History(ctx context.Context, threadKey string) ([]llm.Message, error) {
	if x, found := r.cache.Get(threadKey); found {
		return x.([]llm.Message), nil
	}
	return nil, nil
}

func (r *ThreadRepository) SaveHistory(ctx context.Context, threadKey string, history []llm.Message) error {
	r.cache.Set(threadKey, history, cache.DefaultExpiration)
	return nil
}

func (r *ThreadRepository) Delete(threadKey string) {
	r.cache.Delete(threadKey)
}
