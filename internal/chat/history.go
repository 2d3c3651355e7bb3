package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/chefai/backend/internal/recommend"
)

// Interaction is one question and the answer given to it.
type Interaction struct {
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryStore keeps the interactions of a chat session.
type HistoryStore interface {
	Recent(ctx context.Context, sessionID string, n int) ([]Interaction, error)
	Save(ctx context.Context, sessionID string, in Interaction) error
}

// RedisHistory stores each session as a capped Redis list.
type RedisHistory struct {
	client redis.Cmdable
	ttl    time.Duration
	maxLen int64
}

var _ HistoryStore = (*RedisHistory)(nil)

// NewRedisHistory keeps at most maxLen interactions per session for ttl after the last write.
func NewRedisHistory(client redis.Cmdable, ttl time.Duration, maxLen int) *RedisHistory {
	if maxLen <= 0 {
		maxLen = historyTurns
	}
	return &RedisHistory{client: client, ttl: ttl, maxLen: int64(maxLen)}
}

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}

// Recent returns the last n interactions, oldest first.
func (h *RedisHistory) Recent(ctx context.Context, sessionID string, n int) ([]Interaction, error) {
	if n <= 0 {
		return []Interaction{}, nil
	}
	raw, err := h.client.LRange(ctx, sessionKey(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	out := make([]Interaction, 0, len(raw))
	for _, item := range raw {
		var in Interaction
		if err := json.Unmarshal([]byte(item), &in); err != nil {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

func (h *RedisHistory) Save(ctx context.Context, sessionID string, in Interaction) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	key := sessionKey(sessionID)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -h.maxLen, -1)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// turns flattens interactions into alternating user and bot turns.
func turns(interactions []Interaction) []recommend.Turn {
	out := make([]recommend.Turn, 0, 2*len(interactions))
	for _, in := range interactions {
		out = append(out,
			recommend.Turn{Role: recommend.RoleUser, Content: in.Query},
			recommend.Turn{Role: recommend.RoleBot, Content: in.Response},
		)
	}
	return out
}
