package purger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"aboard/internal/storage"
)

var ErrNotStarted = errors.New("purger is not running")

// Manager removes stored attachments of deleted posts in the background.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	Enqueue(ctx context.Context, postID int64) error
	Pending() int
}

type Config struct {
	Bucket        string
	KeyPrefix     string
	MaxConcurrent int
	Timeout       time.Duration
	Logger        *logrus.Logger
}

type manager struct {
	cfg     Config
	storage storage.Service

	sem    chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	active map[int64]struct{}
}

func NewManager(cfg Config, storage storage.Service) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:     cfg,
		storage: storage,
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		active:  make(map[int64]struct{}),
	}
}

func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.cfg.Logger.Infof("attachment purger started, bucket: %s", m.cfg.Bucket)
	return nil
}

// Shutdown cancels queued jobs and waits for running ones to return.
func (m *manager) Shutdown() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.cfg.Logger.Info("attachment purger stopped")
}

// Enqueue schedules a purge. A post already queued is not scheduled twice.
func (m *manager) Enqueue(_ context.Context, postID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil || m.ctx.Err() != nil {
		return ErrNotStarted
	}
	if _, ok := m.active[postID]; ok {
		return nil
	}
	m.active[postID] = struct{}{}

	m.wg.Add(1)
	go m.run(m.ctx, postID)
	return nil
}

func (m *manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *manager) run(ctx context.Context, postID int64) {
	defer m.wg.Done()
	defer m.release(postID)

	select {
	case <-ctx.Done():
		return
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
		m.purge(ctx, postID)
	}
}

func (m *manager) release(postID int64) {
	m.mu.Lock()
	delete(m.active, postID)
	m.mu.Unlock()
}

func (m *manager) purge(ctx context.Context, postID int64) {
	logger := m.cfg.Logger.WithField("post_id", postID)
	prefix := storage.PostPrefix(m.cfg.KeyPrefix, postID)

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	removed, err := m.storage.DeletePrefix(ctx, m.cfg.Bucket, prefix)
	if err != nil {
		logger.WithError(err).Errorf("purge attachments under %s failed", prefix)
		return
	}
	if removed == 0 {
		logger.Debug("no attachments to purge")
		return
	}
	logger.Infof("purged %d attachments", removed)
}
