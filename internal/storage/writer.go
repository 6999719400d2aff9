package storage

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/mdlab-go/mdsim/internal/md"
)

// DefaultBuffer is the snapshot queue depth of a SnapshotWriter.
const DefaultBuffer = 256

// SnapshotWriter persists per-step position snapshots without stalling the
// simulation clock: OnStep copies the positions and hands them to a writer
// goroutine through a buffered channel. When the sink cannot keep up the
// snapshot is dropped and counted rather than blocking the physics loop.
// I/O failures are recorded on the writer and reported by Close; they never
// feed back into the run.
type SnapshotWriter struct {
	dir     string
	ch      chan snapshot
	done    chan struct{}
	dropped atomic.Int64

	mu  sync.Mutex
	err error
}

type snapshot struct {
	step int
	pos  []md.Vec3
}

// NewSnapshotWriter starts a writer emitting mds-<step>.csv files into dir.
// buffer <= 0 means DefaultBuffer.
func NewSnapshotWriter(dir string, buffer int) *SnapshotWriter {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	w := &SnapshotWriter{
		dir:  dir,
		ch:   make(chan snapshot, buffer),
		done: make(chan struct{}),
	}
	go w.drain()
	return w
}

func (w *SnapshotWriter) OnStep(s *md.System, step int, t float64) {
	pos := make([]md.Vec3, len(s.Positions))
	copy(pos, s.Positions)

	select {
	case w.ch <- snapshot{step: step, pos: pos}:
	default:
		w.dropped.Add(1)
	}
}

// Dropped reports how many snapshots were discarded because the queue was
// full.
func (w *SnapshotWriter) Dropped() int64 {
	return w.dropped.Load()
}

// Close flushes queued snapshots and returns the first write error, if any.
func (w *SnapshotWriter) Close() error {
	close(w.ch)
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *SnapshotWriter) drain() {
	defer close(w.done)
	for snap := range w.ch {
		if err := writeSnapshot(w.dir, snap.step, snap.pos); err != nil {
			w.mu.Lock()
			if w.err == nil {
				w.err = err
			}
			w.mu.Unlock()
		}
	}
}

// writeSnapshot emits one position per row as "x, y, z" in fixed decimal
// notation, no header.
func writeSnapshot(dir string, step int, pos []md.Vec3) error {
	f, err := os.Create(filepath.Join(dir, snapshotName(step)))
	if err != nil {
		return err
	}

	buf := bufio.NewWriter(f)
	for _, p := range pos {
		buf.WriteString(strconv.FormatFloat(p[0], 'f', 6, 64))
		buf.WriteString(", ")
		buf.WriteString(strconv.FormatFloat(p[1], 'f', 6, 64))
		buf.WriteString(", ")
		buf.WriteString(strconv.FormatFloat(p[2], 'f', 6, 64))
		buf.WriteByte('\n')
	}

	if err := buf.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
