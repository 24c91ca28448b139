package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DropBy-app/dropby/api/server"
	"github.com/DropBy-app/dropby/config"
	"github.com/DropBy-app/dropby/errors"
	"github.com/DropBy-app/dropby/logger"
	"github.com/DropBy-app/dropby/tasks"
	"github.com/DropBy-app/dropby/tasks/board"
	"github.com/DropBy-app/dropby/tasks/compose"
	"github.com/DropBy-app/dropby/tasks/dismissal"
	"github.com/DropBy-app/dropby/tasks/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	url   string
	state string
	board board.Board
}

func newEnv(t *testing.T, c compose.Composer) *env {
	t.Helper()
	st, err := store.NewMemoryTaskStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	b := board.New(st, c, time.Second, logger.Discard())
	cfg := &config.Config{ServerPort: 8080, ShutdownTimeout: time.Second, StoreBackend: config.BackendMemory}
	ts := httptest.NewServer(server.New(b, cfg, logger.Discard()).Handler())
	t.Cleanup(ts.Close)

	return &env{
		url:   ts.URL,
		state: filepath.Join(t.TempDir(), "state.yaml"),
		board: b,
	}
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", e.url, "--state", e.state}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *env) tasks(t *testing.T) []tasks.Task {
	t.Helper()
	all, err := e.board.ListAll(context.Background())
	require.NoError(t, err)
	return all
}

func TestCreate_RemembersRequester(t *testing.T) {
	e := newEnv(t, nil)

	out, err := e.run(t, "create", "-t", "Buy milk", "-d", "2L whole", "-l", "52.5,13.4", "-r", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, "has been created")

	_, err = e.run(t, "create", "-t", "Walk dog", "-d", "Rex", "-l", "52.5,13.4", "--type", "info")
	require.NoError(t, err)

	all := e.tasks(t)
	require.Len(t, all, 2)
	assert.Equal(t, "Ann", all[1].Requester)
	assert.Equal(t, tasks.TypeInfo, all[1].TaskType)

	state, err := dismissal.Load(e.state)
	require.NoError(t, err)
	assert.Equal(t, "Ann", state.Username)
}

func TestCreate_RequiresRequester(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.run(t, "create", "-t", "Buy milk", "-d", "2L", "-l", "52.5,13.4")

	assert.True(t, errors.IsType(err, errors.ValidationError))
	assert.Empty(t, e.tasks(t))
}

func TestCreate_ComposesMissingTitle(t *testing.T) {
	stub := &compose.Stub{Suggestion: compose.Suggestion{Title: "Buy milk", Estimate: tasks.Estimate{Time: 15, Size: tasks.SizeSmall}}}
	e := newEnv(t, stub)

	out, err := e.run(t, "create", "-d", "we are out of milk", "-l", "52.5,13.4", "-r", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, `Drafted "Buy milk"`)

	all := e.tasks(t)
	require.Len(t, all, 1)
	assert.Equal(t, "Buy milk", all[0].Title)
	require.NotNil(t, all[0].TimeEstimate)
	assert.Equal(t, 15, *all[0].TimeEstimate)
	assert.Equal(t, tasks.SizeSmall, all[0].SizeEstimate)
}

func TestCreate_ComposeFailureAborts(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.run(t, "create", "-d", "we are out of milk", "-l", "52.5,13.4", "-r", "Ann")

	assert.True(t, errors.IsType(err, errors.TransportError))
	assert.Empty(t, e.tasks(t))
}

func TestCreate_BlankDraftedTitleAborts(t *testing.T) {
	e := newEnv(t, &compose.Stub{Suggestion: compose.Suggestion{Estimate: tasks.Estimate{Time: 5, Size: tasks.SizeSmall}}})

	_, err := e.run(t, "create", "-d", "we are out of milk", "-l", "52.5,13.4", "-r", "Ann")

	require.Error(t, err)
	assert.Equal(t, "composer returned an empty title", describeError(err))
	assert.Empty(t, e.tasks(t))
}

func TestCreate_MissingRequiredFlags(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.run(t, "create", "-t", "Buy milk", "-r", "Ann")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestListCompleteDismiss(t *testing.T) {
	e := newEnv(t, nil)
	_, err := e.run(t, "create", "-t", "Buy milk", "-d", "2L", "-l", "52.5,13.4", "-r", "Ann")
	require.NoError(t, err)
	_, err = e.run(t, "create", "-t", "Walk dog", "-d", "Rex", "-l", "52.6,13.4")
	require.NoError(t, err)

	all := e.tasks(t)
	milk, dog := all[0].ID, all[1].ID

	out, err := e.run(t, "list", "--near", "52.5,13.4")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "0 m")
	assert.Contains(t, out, "11.1 km")

	out, err = e.run(t, "complete", milk, "--notes", "on the porch")
	require.NoError(t, err)
	assert.Contains(t, out, "marked as completed")

	out, err = e.run(t, "list", "--done")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Walk dog")

	out, err = e.run(t, "dismiss", dog, "--reason", "too-far")
	require.NoError(t, err)
	assert.Contains(t, out, "dismissed")

	out, err = e.run(t, "dismiss", dog)
	require.NoError(t, err)
	assert.Contains(t, out, "already dismissed")

	out, err = e.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")
}

func TestList_BadNear(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.run(t, "list", "--near", "north")

	assert.Error(t, err)
}

func TestComplete_Unknown(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.run(t, "complete", "missing")

	assert.True(t, errors.IsType(err, errors.NotFoundError))
	assert.Equal(t, "task missing not found", describeError(err))
}

func TestDismiss_BadReason(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.run(t, "dismiss", "abc", "--reason", "boring")

	assert.True(t, errors.IsType(err, errors.ValidationError))
}

func TestCompose(t *testing.T) {
	stub := &compose.Stub{Suggestion: compose.Suggestion{Title: "Fix bike", Estimate: tasks.Estimate{Time: 45, Size: tasks.SizeMedium}}}
	e := newEnv(t, stub)

	out, err := e.run(t, "compose", "-d", "flat tyre on my bike")

	require.NoError(t, err)
	assert.Contains(t, out, "Fix bike")
	assert.Contains(t, out, "45 min")
	assert.Contains(t, out, "medium")
	assert.Empty(t, e.tasks(t))
}

func TestFormatAge(t *testing.T) {
	testCases := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{50 * time.Hour, "2d"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, formatAge(tc.d))
	}
}

func TestNewStore(t *testing.T) {
	st, err := newStore(&config.Config{StoreBackend: config.BackendMemory})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = newStore(&config.Config{StoreBackend: "etcd"})
	assert.Error(t, err)

	_, err = newStore(&config.Config{StoreBackend: config.BackendRedis, RedisURL: "not a url", RedisKeyPrefix: "x"})
	assert.Error(t, err)
}

func TestNewComposer(t *testing.T) {
	_, disabled := newComposer(&config.Config{}, logger.Discard()).(compose.Disabled)
	assert.True(t, disabled)

	cfg := &config.Config{CohereAPIKey: "k", CohereModel: "command-r", CohereBaseURL: "https://api.cohere.com", AITimeout: time.Second}
	_, cohere := newComposer(cfg, logger.Discard()).(*compose.CohereClient)
	assert.True(t, cohere)
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "boom", describeError(errors.NewInternalError("boom")))
	assert.True(t, strings.HasPrefix(describeError(context.Canceled), "context"))
}
