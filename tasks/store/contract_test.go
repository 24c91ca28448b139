package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/DropBy-app/dropby/tasks"
	"github.com/DropBy-app/dropby/tasks/store"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

// storeFactory returns an empty store; each call must be isolated from
// the others.
type storeFactory func(t *testing.T) store.TaskStore

func newTestTask(title string) *tasks.Task {
	return &tasks.Task{
		Title:       title,
		Description: "description of " + title,
		Requester:   "Alice",
		TaskType:    tasks.TypeTask,
		Location:    "1,2",
	}
}

func taskIDs(list []tasks.Task) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}

// testStoreContract runs the behaviour every TaskStore implementation shares.
func testStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("create assigns id and open state", func(t *testing.T) {
		s := newStore(t)
		task := newTestTask("Buy milk")
		task.Completed = true

		id, err := s.Create(ctx, task)

		require.NoError(t, err)
		assert.Assert(t, id != "")
		assert.Equal(t, id, task.ID)
		assert.Assert(t, !task.CreatedAt.IsZero())

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, "description of Buy milk", got.Description)
		assert.Equal(t, "Alice", got.Requester)
		assert.Equal(t, tasks.TypeTask, got.TaskType)
		assert.Equal(t, "1,2", got.Location)
		assert.Equal(t, false, got.Completed)
	})

	t.Run("ids are unique", func(t *testing.T) {
		s := newStore(t)
		seen := make(map[string]bool)

		for i := 0; i < 50; i++ {
			id, err := s.Create(ctx, newTestTask(fmt.Sprintf("task %d", i)))
			require.NoError(t, err)
			assert.Assert(t, !seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		s := newStore(t)
		var want []string
		for i := 0; i < 5; i++ {
			id, err := s.Create(ctx, newTestTask(fmt.Sprintf("task %d", i)))
			require.NoError(t, err)
			want = append(want, id)
		}

		all, err := s.List(ctx)

		require.NoError(t, err)
		assert.DeepEqual(t, want, taskIDs(all))
	})

	t.Run("empty store lists nothing", func(t *testing.T) {
		s := newStore(t)

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, len(all))

		done, err := s.ListCompleted(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, len(done))
	})

	t.Run("list completed matches filtered list", func(t *testing.T) {
		s := newStore(t)
		var ids []string
		for i := 0; i < 6; i++ {
			id, err := s.Create(ctx, newTestTask(fmt.Sprintf("task %d", i)))
			require.NoError(t, err)
			ids = append(ids, id)
		}
		require.NoError(t, s.MarkComplete(ctx, ids[4], ""))
		require.NoError(t, s.MarkComplete(ctx, ids[1], ""))

		all, err := s.List(ctx)
		require.NoError(t, err)
		var filtered []string
		for _, task := range all {
			if task.Completed {
				filtered = append(filtered, task.ID)
			}
		}

		done, err := s.ListCompleted(ctx)
		require.NoError(t, err)
		assert.DeepEqual(t, filtered, taskIDs(done))
		assert.DeepEqual(t, []string{ids[1], ids[4]}, taskIDs(done))
	})

	t.Run("mark complete twice succeeds", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, newTestTask("Walk the dog"))
		require.NoError(t, err)

		require.NoError(t, s.MarkComplete(ctx, id, "done"))
		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, true, got.Completed)

		require.NoError(t, s.MarkComplete(ctx, id, ""))
		got, err = s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, true, got.Completed)
		assert.Equal(t, "done", got.CompletionNotes)

		done, err := s.ListCompleted(ctx)
		require.NoError(t, err)
		assert.DeepEqual(t, []string{id}, taskIDs(done))
	})

	t.Run("later notes replace earlier notes", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Create(ctx, newTestTask("Water plants"))
		require.NoError(t, err)

		require.NoError(t, s.MarkComplete(ctx, id, "first"))
		require.NoError(t, s.MarkComplete(ctx, id, "second"))

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "second", got.CompletionNotes)
	})

	t.Run("mark unknown task leaves store unchanged", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, newTestTask("Buy milk"))
		require.NoError(t, err)
		before, err := s.List(ctx)
		require.NoError(t, err)

		err = s.MarkComplete(ctx, "does-not-exist", "notes")

		assert.ErrorIs(t, err, store.ErrNotFound)
		after, err := s.List(ctx)
		require.NoError(t, err)
		assert.DeepEqual(t, before, after)

		done, err := s.ListCompleted(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, len(done))
	})

	t.Run("get unknown task", func(t *testing.T) {
		s := newStore(t)

		got, err := s.Get(ctx, "does-not-exist")

		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Assert(t, got == nil)
	})

	t.Run("estimates round trip", func(t *testing.T) {
		s := newStore(t)
		minutes := 0
		task := newTestTask("Quick question")
		task.TaskType = tasks.TypeInfo
		task.TimeEstimate = &minutes
		task.SizeEstimate = tasks.SizeSmall

		id, err := s.Create(ctx, task)
		require.NoError(t, err)

		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got.TimeEstimate)
		assert.Equal(t, 0, *got.TimeEstimate)
		assert.Equal(t, tasks.SizeSmall, got.SizeEstimate)
		assert.Equal(t, tasks.TypeInfo, got.TaskType)
	})
}
