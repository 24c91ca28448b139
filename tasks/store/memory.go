package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DropBy-app/dropby/tasks"

	"github.com/hashicorp/go-memdb"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

const tasksTable = "tasks"

// Compile-time check to ensure MemoryTaskStore implements TaskStore interface
var _ TaskStore = (*MemoryTaskStore)(nil)

// record is the stored form of a task. Records inside memdb are never
// modified in place; updates insert a fresh copy.
type record struct {
	Seq             uint64
	ID              string
	Title           string
	Description     string
	Requester       string
	TaskType        string
	Location        string
	Completed       bool
	CreatedAt       int64 // unix nanoseconds
	TimeEstimate    *int
	SizeEstimate    string
	CompletionNotes string
}

func newRecord(seq uint64, t *tasks.Task) *record {
	r := &record{
		Seq:             seq,
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Requester:       t.Requester,
		TaskType:        string(t.TaskType),
		Location:        t.Location,
		Completed:       t.Completed,
		CreatedAt:       t.CreatedAt.UnixNano(),
		SizeEstimate:    string(t.SizeEstimate),
		CompletionNotes: t.CompletionNotes,
	}
	if t.TimeEstimate != nil {
		minutes := *t.TimeEstimate
		r.TimeEstimate = &minutes
	}
	return r
}

func (r *record) task() tasks.Task {
	t := tasks.Task{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Requester:       r.Requester,
		TaskType:        tasks.TaskType(r.TaskType),
		Location:        r.Location,
		Completed:       r.Completed,
		CreatedAt:       time.Unix(0, r.CreatedAt).UTC(),
		SizeEstimate:    tasks.Size(r.SizeEstimate),
		CompletionNotes: r.CompletionNotes,
	}
	if r.TimeEstimate != nil {
		minutes := *r.TimeEstimate
		t.TimeEstimate = &minutes
	}
	return t
}

func tasksTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: tasksTable,
		Indexes: map[string]*memdb.IndexSchema{
			"id": {
				Name:         "id",
				AllowMissing: false,
				Unique:       true,
				Indexer:      &memdb.StringFieldIndex{Field: "ID"},
			},
			"seq": {
				Name:         "seq",
				AllowMissing: false,
				Unique:       true,
				Indexer:      &memdb.UintFieldIndex{Field: "Seq"},
			},
			"completed": {
				Name:         "completed",
				AllowMissing: false,
				Unique:       false,
				Indexer:      &memdb.BoolFieldIndex{Field: "Completed"},
			},
		},
	}
}

// MemoryTaskStore keeps tasks in an in-process go-memdb database. When a
// snapshot path is set the whole table is written to it after every
// change and read back on startup.
type MemoryTaskStore struct {
	db           *memdb.MemDB
	snapshotPath string

	// mu serialises writers so sequence numbers follow commit order and
	// snapshots are never written concurrently.
	mu  sync.Mutex
	seq uint64

	now   func() time.Time
	newID func() string
}

// NewMemoryTaskStore creates an empty in-memory store. A non-empty
// snapshotPath enables persistence; an existing snapshot there is loaded.
func NewMemoryTaskStore(snapshotPath string) (*MemoryTaskStore, error) {
	db, err := memdb.NewMemDB(&memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tasksTable: tasksTableSchema(),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "memdb: create database")
	}

	s := &MemoryTaskStore{
		db:           db,
		snapshotPath: snapshotPath,
		now:          time.Now,
		newID:        func() string { return ksuid.New().String() },
	}

	if snapshotPath != "" {
		if err := s.LoadSnapshot(snapshotPath); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// List returns every task in insertion order.
func (s *MemoryTaskStore) List(ctx context.Context) ([]tasks.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := s.db.Txn(false)
	defer tx.Abort()

	iter, err := tx.Get(tasksTable, "seq")
	if err != nil {
		return nil, errors.Wrap(err, "memdb: task lookup failed")
	}

	out := []tasks.Task{}
	for next := iter.Next(); next != nil; next = iter.Next() {
		out = append(out, next.(*record).task())
	}
	return out, nil
}

// ListCompleted returns the completed tasks in insertion order.
func (s *MemoryTaskStore) ListCompleted(ctx context.Context) ([]tasks.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := s.db.Txn(false)
	defer tx.Abort()

	iter, err := tx.Get(tasksTable, "completed", true)
	if err != nil {
		return nil, errors.Wrap(err, "memdb: completed task lookup failed")
	}

	var recs []*record
	for next := iter.Next(); next != nil; next = iter.Next() {
		recs = append(recs, next.(*record))
	}
	slices.SortFunc(recs, func(a, b *record) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})

	out := make([]tasks.Task, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.task())
	}
	return out, nil
}

// Get retrieves a task by its ID.
func (s *MemoryTaskStore) Get(ctx context.Context, id string) (*tasks.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := s.db.Txn(false)
	defer tx.Abort()

	raw, err := tx.First(tasksTable, "id", id)
	if err != nil {
		return nil, errors.Wrapf(err, "memdb: task %s lookup failed", id)
	}
	if raw == nil {
		return nil, ErrNotFound
	}

	t := raw.(*record).task()
	return &t, nil
}

// Create adds a new task, assigning its id and creation time.
func (s *MemoryTaskStore) Create(ctx context.Context, task *tasks.Task) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.newID()
	task.CreatedAt = s.now().UTC()
	task.Completed = false

	tx := s.db.Txn(true)
	defer tx.Abort()

	existing, err := tx.First(tasksTable, "id", task.ID)
	if err != nil {
		return "", errors.Wrap(err, "memdb: task lookup failed")
	}
	if existing != nil {
		return "", errors.Errorf("memdb: task with ID %s already exists", task.ID)
	}

	if err := tx.Insert(tasksTable, newRecord(s.seq+1, task)); err != nil {
		return "", errors.Wrap(err, "memdb: task insert failed")
	}
	if err := s.persist(tx, s.seq+1); err != nil {
		return "", err
	}
	tx.Commit()
	s.seq++

	return task.ID, nil
}

// MarkComplete flags a task as completed. Calling it again is a no-op
// apart from replacing the notes.
func (s *MemoryTaskStore) MarkComplete(ctx context.Context, id string, notes string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.db.Txn(true)
	defer tx.Abort()

	raw, err := tx.First(tasksTable, "id", id)
	if err != nil {
		return errors.Wrapf(err, "memdb: task %s lookup failed", id)
	}
	if raw == nil {
		return ErrNotFound
	}

	existing := raw.(*record)
	t := existing.task()
	t.Complete(notes)

	if err := tx.Insert(tasksTable, newRecord(existing.Seq, &t)); err != nil {
		return errors.Wrapf(err, "memdb: task %s update failed", id)
	}
	if err := s.persist(tx, s.seq); err != nil {
		return err
	}
	tx.Commit()

	return nil
}

// Close writes a final snapshot when persistence is enabled.
func (s *MemoryTaskStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.db.Txn(false)
	defer tx.Abort()

	return s.persist(tx, s.seq)
}

// persist writes the state seen by tx to the snapshot file. Writers call
// it before Commit so a failed write leaves the table unchanged.
func (s *MemoryTaskStore) persist(tx *memdb.Txn, lastSeq uint64) error {
	if s.snapshotPath == "" {
		return nil
	}
	return saveSnapshot(s.snapshotPath, tx, lastSeq)
}
