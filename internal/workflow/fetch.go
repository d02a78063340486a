package workflow

import (
	"context"
	"errors"
	"time"

	"quill/internal/logging"
)

func (m *Manager) runFetchLoop(ctx context.Context) {
	defer m.wg.Done()

	interval := m.fetchInterval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	m.RunFetchOnce(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunFetchOnce(ctx)
		}
	}
}

// RunFetchOnce polls every configured fetcher and persists new discoveries.
// It is a no-op when auto mode is off. Each source fails independently: a
// broken feed never blocks the others.
func (m *Manager) RunFetchOnce(ctx context.Context) {
	m.mu.RLock()
	fetchers := m.fetchers
	m.mu.RUnlock()
	if len(fetchers) == 0 {
		return
	}

	settings, err := m.store.GetSettings(ctx)
	if err != nil {
		m.setLastError(err)
		m.logger.Error("failed to load automation settings for fetch", logging.Error(err))
		return
	}
	if !settings.AutoMode {
		m.logger.Debug("auto mode off, skipping fetch cycle")
		return
	}

	for _, fetcher := range fetchers {
		items, err := fetcher.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.logger.Warn("fetch source reported errors",
				logging.String("source", fetcher.Name()),
				logging.Int("items", len(items)),
				logging.Error(err),
			)
		}
		if len(items) == 0 {
			continue
		}

		summary, err := m.moderate.Discover(ctx, items)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("discovery failed",
				logging.String("source", fetcher.Name()),
				logging.Error(err),
			)
			continue
		}
		m.logger.Info("fetch cycle completed",
			logging.String("source", fetcher.Name()),
			logging.Int("fetched", len(items)),
			logging.Int("added", summary.Added),
			logging.Int("duplicate_posted", summary.DuplicatePosted),
			logging.Int("duplicate_pending", summary.DuplicatePending),
			logging.Int("skipped", summary.Skipped),
		)
		if summary.Added > 0 {
			if nerr := m.notifier.NotifyArticlesDiscovered(ctx, summary.Added, fetcher.Name()); nerr != nil {
				m.logger.Warn("discovery notification failed", logging.Error(nerr))
			}
		}
	}
}
