//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DropBy-app/dropby/tasks/store"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis starts one Redis container for the calling test and returns
// its connection URL. The container is terminated on cleanup.
func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := redis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(30*time.Second),
			wait.ForLog("Ready to accept connections").WithOccurrence(1).WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("Failed to start Redis testcontainer: %v", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get Redis connection string: %v", err)
	}

	redisURL := connStr + "/1"
	t.Logf("Redis container started at: %s", redisURL)
	return redisURL
}

// redisStoreFactory hands out stores that share one container but use a
// unique key prefix each, so they never see each other's tasks.
func redisStoreFactory(redisURL string) storeFactory {
	return func(t *testing.T) store.TaskStore {
		t.Helper()

		prefix := fmt.Sprintf("test_%s_%d", t.Name(), time.Now().UnixNano())

		var (
			s   *store.RedisTaskStore
			err error
		)
		for attempt := 0; attempt < 5; attempt++ {
			s, err = store.NewRedisTaskStore(redisURL, prefix)
			if err == nil {
				break
			}
			t.Logf("Failed to connect to Redis, retrying... (%d/5): %v", attempt+1, err)
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
		}
		if err != nil {
			t.Fatalf("Failed to create Redis store: %v", err)
		}

		t.Cleanup(func() { s.Close() })
		return s
	}
}
