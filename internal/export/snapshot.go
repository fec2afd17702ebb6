package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eterno-store/internal/events"
	"eterno-store/internal/reports"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrLocked = errors.New("export already in progress")

// Locker serialises snapshot writers. Release is always safe to call.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// LocalLocker locks within one process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

func (l *LocalLocker) Lock(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ErrLocked
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}

// RedisLocker locks across every server sharing one redis.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (r *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := r.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), 10),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, fmt.Errorf("obtain export lock: %w", err)
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}

const snapshotLockKey = "eterno:export:snapshot"

// Snapshotter rewrites the workbook file on disk.
type Snapshotter struct {
	db     *gorm.DB
	path   string
	fmt    reports.Formatter
	locker Locker
}

func NewSnapshotter(db *gorm.DB, path string, f reports.Formatter, locker Locker) *Snapshotter {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Snapshotter{db: db, path: path, fmt: f, locker: locker}
}

func (s *Snapshotter) Path() string { return s.path }

func (s *Snapshotter) Snapshot(ctx context.Context) error {
	release, err := s.locker.Lock(ctx, snapshotLockKey, time.Minute)
	if err != nil {
		return err
	}
	defer release()

	book, err := BuildWorkbook(ctx, s.db, s.fmt)
	if err != nil {
		return err
	}
	defer book.Close()
	if err := book.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// SnapshotSink refreshes the workbook after every mutation event.
type SnapshotSink struct {
	snap       *Snapshotter
	logger     *logrus.Logger
	retryDelay time.Duration
}

func NewSnapshotSink(snap *Snapshotter, logger *logrus.Logger) *SnapshotSink {
	return &SnapshotSink{snap: snap, logger: logger, retryDelay: 500 * time.Millisecond}
}

func (s *SnapshotSink) Name() string { return "excel-snapshot" }

// Handle writes a snapshot that includes e. When another writer holds the
// lock its file may predate e, so the sink waits for the lock and writes
// again rather than skipping. It gives up when ctx ends.
func (s *SnapshotSink) Handle(ctx context.Context, e events.Event) error {
	for {
		err := s.snap.Snapshot(ctx)
		if !errors.Is(err, ErrLocked) {
			return err
		}
		if s.logger != nil {
			s.logger.WithField("event", e.Type).Debug("export locked, retrying snapshot")
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("snapshot for %s still locked: %w", e.Type, ctx.Err())
		case <-time.After(s.retryDelay):
		}
	}
}
