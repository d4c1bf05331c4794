package csvsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
	"go.uber.org/zap"
)

// Store keeps the parsed contents of a calls CSV in memory, indexed by origin
// number and sorted by start time.
type Store struct {
	path string
	log  *zap.Logger

	mu       sync.RWMutex
	byOrigin map[string][]callrecorddomain.CallRecord
}

func NewStore(path string, log *zap.Logger) *Store {
	return &Store{
		path:     path,
		log:      log.Named("callrecord.csv"),
		byOrigin: map[string][]callrecorddomain.CallRecord{},
	}
}

// Load parses the file and swaps the in-memory snapshot. On error the
// previous snapshot is kept.
func (s *Store) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open calls file: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}

	s.Replace(records)
	s.log.Info("calls file loaded", zap.String("path", s.path), zap.Int("records", len(records)))
	return nil
}

// Replace swaps the snapshot with records.
func (s *Store) Replace(records []callrecorddomain.CallRecord) {
	byOrigin := make(map[string][]callrecorddomain.CallRecord)
	for _, r := range records {
		byOrigin[r.OriginNumber] = append(byOrigin[r.OriginNumber], r)
	}
	for _, calls := range byOrigin {
		slices.SortStableFunc(calls, func(a, b callrecorddomain.CallRecord) int {
			return a.StartedAt.Compare(b.StartedAt)
		})
	}

	s.mu.Lock()
	s.byOrigin = byOrigin
	s.mu.Unlock()
}

func (s *Store) ListCalls(ctx context.Context, origin string, from, to time.Time) ([]callrecorddomain.CallRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	calls := s.byOrigin[origin]
	s.mu.RUnlock()

	var out []callrecorddomain.CallRecord
	for _, c := range calls {
		if c.StartedAt.Before(from) || c.StartedAt.After(to) {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, callrecorddomain.ErrNoCallsInRange
	}
	return out, nil
}

// Watch reloads the file whenever it is written or replaced, until ctx is
// done. The parent directory is watched so that editors and tools that
// replace the file by rename are picked up too.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(s.path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Load(); err != nil {
					s.log.Warn("calls file reload failed", zap.Error(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("calls file watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
