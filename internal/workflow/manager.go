package workflow

import (
	"log/slog"
	"sync"
	"time"

	"quill/internal/articles"
	"quill/internal/config"
	"quill/internal/lifecycle"
	"quill/internal/notifications"
	"quill/internal/stage"
	"quill/internal/store"
)

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	notifier notifications.Service
	moderate *lifecycle.Service

	pollInterval  time.Duration
	fetchInterval time.Duration
	errorRetry    time.Duration

	fetchers []lifecycle.Fetcher
	stages   map[articles.Status]pipelineStage

	mu       sync.RWMutex
	running  bool
	cancel   func()
	wg       sync.WaitGroup
	lastErr  error
	lastItem *articles.Item
}

// StageSet bundles the concrete workflow handlers the manager orchestrates.
type StageSet struct {
	Generate stage.Handler
	Publish  stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      articles.Status
	processingStatus articles.Status
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, st *store.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, st, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom
// notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:           cfg,
		store:         st,
		logger:        logger,
		notifier:      notifier,
		moderate:      lifecycle.New(st, nil, nil, notifier, logger),
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		fetchInterval: time.Duration(cfg.Workflow.FetchInterval) * time.Second,
		errorRetry:    time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		stages:        make(map[articles.Status]pipelineStage),
	}
}

// ConfigureStages registers the stage handlers for the two processing
// transitions.
func (m *Manager) ConfigureStages(set StageSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = make(map[articles.Status]pipelineStage)
	if set.Generate != nil {
		m.stages[articles.StatusDiscovered] = pipelineStage{
			name:             "generate",
			handler:          set.Generate,
			startStatus:      articles.StatusDiscovered,
			processingStatus: articles.StatusGenerating,
		}
	}
	if set.Publish != nil {
		m.stages[articles.StatusPending] = pipelineStage{
			name:             "publish",
			handler:          set.Publish,
			startStatus:      articles.StatusPending,
			processingStatus: articles.StatusPosting,
		}
	}
}

// ConfigureFetchers registers the discovery sources polled by the fetch
// loop.
func (m *Manager) ConfigureFetchers(fetchers ...lifecycle.Fetcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchers = fetchers
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *articles.Item) {
	m.mu.Lock()
	if item != nil {
		copied := *item
		m.lastItem = &copied
	} else {
		m.lastItem = nil
	}
	m.mu.Unlock()
}
