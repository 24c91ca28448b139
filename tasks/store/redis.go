package store

import (
	"context"
	"strconv"
	"time"

	"github.com/DropBy-app/dropby/tasks"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/ksuid"
)

// Compile-time check to ensure RedisTaskStore implements TaskStore interface
var _ TaskStore = (*RedisTaskStore)(nil)

// markCompleteScript patches a task hash only if it exists and indexes it
// as completed, in one atomic step.
//
// KEYS[1] task hash, KEYS[2] all-tasks zset, KEYS[3] completed zset
// ARGV[1] task id, ARGV[2] completion notes (may be empty)
var markCompleteScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'completed', '1')
if ARGV[2] ~= '' then
	redis.call('HSET', KEYS[1], 'completionNotes', ARGV[2])
end
local seq = redis.call('ZSCORE', KEYS[2], ARGV[1])
if not seq then
	seq = 0
end
redis.call('ZADD', KEYS[3], seq, ARGV[1])
return 1
`)

// RedisTaskStore keeps each task in a hash and orders them with sorted
// sets scored by a creation sequence:
//
//	<prefix>:task:<id>        hash of task fields
//	<prefix>:tasks            zset of every id
//	<prefix>:tasks:completed  zset of completed ids
//	<prefix>:seq              creation counter
type RedisTaskStore struct {
	client *redis.Client
	prefix string
}

// NewRedisTaskStore connects to the Redis server at url and verifies the
// connection.
func NewRedisTaskStore(url, prefix string) (*RedisTaskStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid Redis URL")
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisTaskStore{
		client: client,
		prefix: prefix,
	}, nil
}

func (s *RedisTaskStore) taskKey(id string) string { return s.prefix + ":task:" + id }
func (s *RedisTaskStore) allKey() string           { return s.prefix + ":tasks" }
func (s *RedisTaskStore) completedKey() string     { return s.prefix + ":tasks:completed" }
func (s *RedisTaskStore) seqKey() string           { return s.prefix + ":seq" }

// List returns every task in insertion order.
func (s *RedisTaskStore) List(ctx context.Context) ([]tasks.Task, error) {
	return s.listFrom(ctx, s.allKey())
}

// ListCompleted returns the completed tasks in insertion order.
func (s *RedisTaskStore) ListCompleted(ctx context.Context) ([]tasks.Task, error) {
	return s.listFrom(ctx, s.completedKey())
}

func (s *RedisTaskStore) listFrom(ctx context.Context, index string) ([]tasks.Task, error) {
	ids, err := s.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redis: read index %s", index)
	}

	out := make([]tasks.Task, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.taskKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "redis: read tasks")
	}

	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// Indexed but hash missing; skip rather than fail the whole list.
			continue
		}
		t, err := decodeTask(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "redis: decode task %s", ids[i])
		}
		out = append(out, *t)
	}
	return out, nil
}

// Get retrieves a task by its ID.
func (s *RedisTaskStore) Get(ctx context.Context, id string) (*tasks.Task, error) {
	fields, err := s.client.HGetAll(ctx, s.taskKey(id)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redis: read task %s", id)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	t, err := decodeTask(fields)
	if err != nil {
		return nil, errors.Wrapf(err, "redis: decode task %s", id)
	}
	return t, nil
}

// Create stores a new task. The hash and its index entry are written in
// one MULTI/EXEC block.
func (s *RedisTaskStore) Create(ctx context.Context, task *tasks.Task) (string, error) {
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return "", errors.Wrap(err, "redis: allocate sequence")
	}

	task.ID = ksuid.New().String()
	task.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	task.Completed = false

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.taskKey(task.ID), encodeTask(task, seq))
		pipe.ZAdd(ctx, s.allKey(), redis.Z{Score: float64(seq), Member: task.ID})
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "redis: create task %s", task.ID)
	}

	return task.ID, nil
}

// MarkComplete flags a task as completed.
func (s *RedisTaskStore) MarkComplete(ctx context.Context, id string, notes string) error {
	keys := []string{s.taskKey(id), s.allKey(), s.completedKey()}

	found, err := markCompleteScript.Run(ctx, s.client, keys, id, notes).Int()
	if err != nil {
		return errors.Wrapf(err, "redis: mark task %s complete", id)
	}
	if found == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisTaskStore) Close() error {
	return s.client.Close()
}

func encodeTask(t *tasks.Task, seq int64) map[string]any {
	fields := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"requester":   t.Requester,
		"taskType":    string(t.TaskType),
		"location":    t.Location,
		"completed":   boolField(t.Completed),
		"createdAt":   t.CreatedAt.UnixMilli(),
		"seq":         seq,
	}
	if t.TimeEstimate != nil {
		fields["timeEstimate"] = *t.TimeEstimate
	}
	if t.SizeEstimate != "" {
		fields["sizeEstimate"] = string(t.SizeEstimate)
	}
	if t.CompletionNotes != "" {
		fields["completionNotes"] = t.CompletionNotes
	}
	return fields
}

func decodeTask(fields map[string]string) (*tasks.Task, error) {
	createdMs, err := strconv.ParseInt(fields["createdAt"], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "createdAt")
	}

	t := &tasks.Task{
		ID:              fields["id"],
		Title:           fields["title"],
		Description:     fields["description"],
		Requester:       fields["requester"],
		TaskType:        tasks.TaskType(fields["taskType"]),
		Location:        fields["location"],
		Completed:       fields["completed"] == "1",
		CreatedAt:       time.UnixMilli(createdMs).UTC(),
		SizeEstimate:    tasks.Size(fields["sizeEstimate"]),
		CompletionNotes: fields["completionNotes"],
	}

	if raw, ok := fields["timeEstimate"]; ok {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Wrap(err, "timeEstimate")
		}
		t.TimeEstimate = &minutes
	}
	return t, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
