package store

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-memdb"
	"github.com/hashicorp/go-msgpack/codec"
	"github.com/pkg/errors"
)

const snapshotVersion = 1

// msgpackHandle is a shared handle for encoding/decoding of snapshots.
var msgpackHandle = &codec.MsgpackHandle{}

type snapshotHeader struct {
	Version int
	LastSeq uint64
	Count   int
}

// Snapshot writes a point-in-time copy of every task to w.
func (s *MemoryTaskStore) Snapshot(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.db.Txn(false)
	defer tx.Abort()

	return writeSnapshot(w, tx, s.seq)
}

// writeSnapshot encodes every task visible in tx. tx may be an
// uncommitted write transaction.
func writeSnapshot(w io.Writer, tx *memdb.Txn, lastSeq uint64) error {
	iter, err := tx.Get(tasksTable, "seq")
	if err != nil {
		return errors.Wrap(err, "snapshot: task lookup failed")
	}

	var recs []*record
	for next := iter.Next(); next != nil; next = iter.Next() {
		recs = append(recs, next.(*record))
	}

	encoder := codec.NewEncoder(w, msgpackHandle)
	header := snapshotHeader{
		Version: snapshotVersion,
		LastSeq: lastSeq,
		Count:   len(recs),
	}
	if err := encoder.Encode(&header); err != nil {
		return errors.Wrap(err, "snapshot: write header")
	}
	for _, r := range recs {
		if err := encoder.Encode(r); err != nil {
			return errors.Wrapf(err, "snapshot: write task %s", r.ID)
		}
	}
	return nil
}

// Restore replaces the store contents with a snapshot read from r. All
// tasks are inserted in a single transaction; on error nothing changes.
func (s *MemoryTaskStore) Restore(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decoder := codec.NewDecoder(r, msgpackHandle)

	var header snapshotHeader
	if err := decoder.Decode(&header); err != nil {
		return errors.Wrap(err, "restore: read header")
	}
	if header.Version != snapshotVersion {
		return errors.Errorf("restore: unsupported snapshot version %d", header.Version)
	}

	tx := s.db.Txn(true)
	defer tx.Abort()

	if _, err := tx.DeleteAll(tasksTable, "id"); err != nil {
		return errors.Wrap(err, "restore: clear tasks")
	}

	lastSeq := header.LastSeq
	for i := 0; i < header.Count; i++ {
		var rec record
		if err := decoder.Decode(&rec); err != nil {
			return errors.Wrapf(err, "restore: read task %d of %d", i+1, header.Count)
		}
		if err := tx.Insert(tasksTable, &rec); err != nil {
			return errors.Wrapf(err, "restore: insert task %s", rec.ID)
		}
		if rec.Seq > lastSeq {
			lastSeq = rec.Seq
		}
	}

	tx.Commit()
	s.seq = lastSeq
	return nil
}

// SaveSnapshot atomically writes a snapshot file at path.
func (s *MemoryTaskStore) SaveSnapshot(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.db.Txn(false)
	defer tx.Abort()

	return saveSnapshot(path, tx, s.seq)
}

// saveSnapshot writes the tasks visible in tx to a temp file and
// renames it over path.
func saveSnapshot(path string, tx *memdb.Txn, lastSeq uint64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "snapshot: create directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "snapshot: create temp file")
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := writeSnapshot(w, tx, lastSeq); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "snapshot: flush")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "snapshot: sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "snapshot: close")
	}

	return errors.Wrap(os.Rename(tmp.Name(), path), "snapshot: rename")
}

// LoadSnapshot restores the store from the snapshot file at path. A
// missing file leaves the store empty.
func (s *MemoryTaskStore) LoadSnapshot(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "snapshot: open")
	}
	defer f.Close()

	return s.Restore(bufio.NewReader(f))
}
