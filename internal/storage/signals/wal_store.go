// Package signals journals entry signals in a write-ahead log so they can be replayed or streamed.
package signals

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/vadiminshakov/rsivolume/internal/domain"
)

const (
	DefaultDir   = "./wal/signals"
	segmentLimit = 100
	maxSegments  = 10

	entryKeyPrefix = "entry_"
)

// WALStore persists signal events in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens or creates the journal in dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "signal_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init signal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the event and returns its index.
func (s *WALStore) Save(event domain.SignalEvent) (uint64, error) {
	if s == nil || s.wal == nil {
		return 0, errors.New("signal store is not initialized")
	}
	if event.Pair == "" {
		return 0, errors.New("signal event pair is required")
	}
	if event.ID == "" {
		return 0, errors.New("signal event id is required")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return 0, errors.Wrap(err, "marshal signal event")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(next, entryKeyPrefix+event.Pair, payload); err != nil {
		return 0, errors.Wrapf(err, "write signal event %s", event.ID)
	}
	return next, nil
}

// EventsAfter returns the events written after index, oldest first.
func (s *WALStore) EventsAfter(index uint64) ([]domain.SignalEventRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("signal store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.SignalEventRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			// rotated out
			continue
		}
		if !strings.HasPrefix(key, entryKeyPrefix) {
			continue
		}

		var event domain.SignalEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, errors.Wrapf(err, "decode signal event at %d", idx)
		}
		records = append(records, domain.SignalEventRecord{Index: idx, Event: event})
	}

	return records, nil
}

// CurrentIndex returns the latest index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("signal store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
