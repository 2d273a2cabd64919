package task

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	domain "github.com/example/task-tracker-demo/domain/task"
	"github.com/redis/go-redis/v9"
)

const (
	redisTaskKeyPrefix = "task:"
	redisIDSetKey      = "tasks:ids"
	redisLastIDKey     = "tasks:last_id"
)

func redisTaskKey(id int64) string {
	return redisTaskKeyPrefix + strconv.FormatInt(id, 10)
}

// RedisStore persists tasks in Redis: one JSON record per task under
// "task:<id>", the id set under "tasks:ids", and the last assigned id under
// "tasks:last_id". This is durable storage, not a cache; nothing expires.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Insert(ctx context.Context, t *domain.Task) (int64, error) {
	// INCR makes ids monotone even across restarts; a failed insert burns
	// the id rather than reusing it.
	id, err := s.client.Incr(ctx, redisLastIDKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate task id: %w", err)
	}

	stored := t.Clone()
	stored.ID = id
	data, err := json.Marshal(stored.ToRecord())
	if err != nil {
		return 0, fmt.Errorf("failed to encode task: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisTaskKey(id), data, 0)
		pipe.SAdd(ctx, redisIDSetKey, id)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}

	t.ID = id
	return id, nil
}

func (s *RedisStore) Update(ctx context.Context, t *domain.Task) error {
	data, err := json.Marshal(t.ToRecord())
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	// XX: only overwrite an existing key.
	set, err := s.client.SetXX(ctx, redisTaskKey(t.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if !set {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id int64) error {
	removed, err := s.client.Del(ctx, redisTaskKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if removed == 0 {
		return domain.ErrTaskNotFound
	}
	if err := s.client.SRem(ctx, redisIDSetKey, id).Err(); err != nil {
		return fmt.Errorf("failed to unregister task id: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id int64) (*domain.Task, error) {
	data, err := s.client.Get(ctx, redisTaskKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	var rec domain.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	return rec.ToTask()
}

// loadAll reads every task registered in the id set.
func (s *RedisStore) loadAll(ctx context.Context) ([]*domain.Task, error) {
	ids, err := s.client.SMembers(ctx, redisIDSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read task ids: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Task{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisTaskKeyPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	out := make([]*domain.Task, 0, len(values))
	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			// Id registered but record gone; nothing to return for it.
			continue
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
		}
		t, err := rec.ToTask()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *RedisStore) List(ctx context.Context, orderBy, direction string) ([]*domain.Task, error) {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	column, ascending := normalizeListOrder(orderBy, direction)
	orderTasks(tasks, column, ascending)
	return tasks, nil
}

func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	tasks, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Tasks: make(map[int64]*domain.Task, len(tasks)), NextID: 1}
	var maxID int64
	for _, t := range tasks {
		snap.Tasks[t.ID] = t
		if t.ID > maxID {
			maxID = t.ID
		}
	}

	lastID, err := s.client.Get(ctx, redisLastIDKey).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read last task id: %w", err)
	}
	if lastID < maxID {
		lastID = maxID
	}
	snap.NextID = lastID + 1
	return snap, nil
}

func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	existing, err := s.client.SMembers(ctx, redisIDSetKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read task ids: %w", err)
	}

	nextID := snap.NextID
	if nextID < 1 {
		nextID = 1
	}

	// One MULTI/EXEC so the replacement is all-or-nothing.
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range existing {
			pipe.Del(ctx, redisTaskKeyPrefix+id)
		}
		pipe.Del(ctx, redisIDSetKey)
		for id, t := range snap.Tasks {
			data, err := json.Marshal(t.ToRecord())
			if err != nil {
				return fmt.Errorf("failed to encode task %d: %w", id, err)
			}
			pipe.Set(ctx, redisTaskKey(id), data, 0)
			pipe.SAdd(ctx, redisIDSetKey, id)
		}
		pipe.Set(ctx, redisLastIDKey, nextID-1, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Close() error {
	return s.client.Close()
}
