package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quill/internal/articles"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/store"
)

// Start begins background processing. Items stranded in a processing status
// by an earlier crash are reset to the start of their stage first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	reset, err := m.store.ResetStuckProcessing(ctx)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if reset > 0 {
		m.logger.Info("reset stuck processing items", logging.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(2)
	m.mu.Unlock()

	go m.runQueueLoop(runCtx)
	go m.runFetchLoop(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runQueueLoop(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		processed, err := m.ProcessNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.waitOrShutdown(ctx, m.errorRetry)
			continue
		}
		if !processed {
			m.waitOrShutdown(ctx, m.pollInterval)
		}
	}
}

// ProcessNext claims and runs one stage for the oldest eligible item.
// It reports whether an item was processed. Pending items are only eligible
// when auto posting is on and manual approval is off; they otherwise wait
// for CLI approval.
func (m *Manager) ProcessNext(ctx context.Context) (bool, error) {
	settings, err := m.store.GetSettings(ctx)
	if err != nil {
		m.setLastError(err)
		m.logger.Error("failed to load automation settings", logging.Error(err))
		return false, err
	}

	statuses := []articles.Status{articles.StatusDiscovered}
	if settings.AutoPostEnabled && !settings.ManualApprovalRequired {
		statuses = append(statuses, articles.StatusPending)
	}

	item, err := m.store.NextForStatuses(ctx, statuses...)
	if err != nil {
		m.setLastError(err)
		m.logger.Error("failed to fetch next content item", logging.Error(err))
		return false, err
	}
	if item == nil {
		return false, nil
	}
	return true, m.processItem(ctx, item)
}

func (m *Manager) processItem(ctx context.Context, item *articles.Item) error {
	m.mu.RLock()
	stg, ok := m.stages[item.Status]
	m.mu.RUnlock()
	if !ok {
		m.logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitOrShutdown(ctx, m.pollInterval)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithStage(services.WithItemID(ctx, item.ID), stg.name), requestID)
	stageLogger := m.logger.With(
		logging.String("stage", stg.name),
		logging.Int64("item_id", item.ID),
		logging.String("request_id", requestID),
	)

	item.Status = stg.processingStatus
	item.ErrorReason = ""
	if err := m.store.Update(stageCtx, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}
	m.setLastItem(item)

	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String("title", item.Title),
		logging.String("processing_status", string(stg.processingStatus)),
	)

	if err := stg.handler.Prepare(stageCtx, item); err != nil {
		m.handleStageFailure(stageCtx, stageLogger, stg.name, item, err)
		return err
	}
	if err := stg.handler.Execute(stageCtx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(stageCtx, stageLogger, stg.name, item, err)
		return err
	}

	if err := m.store.Update(stageCtx, item); err != nil {
		stageLogger.Error("failed to persist stage result", logging.Error(err))
		m.setLastError(err)
		return err
	}

	stageLogger.Info("stage completed",
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)
	return nil
}

// handleStageFailure records a stage failure on the item. Rate limits and
// approval-time duplicates are already resolved by the lifecycle service,
// so only the error is logged for those.
func (m *Manager) handleStageFailure(ctx context.Context, logger *slog.Logger, stageName string, item *articles.Item, stageErr error) {
	m.setLastError(stageErr)

	if errors.Is(stageErr, services.ErrRateLimited) || errors.Is(stageErr, services.ErrDuplicate) {
		logger.Warn("stage resolved item without posting", logging.Error(stageErr))
		m.refreshLastItem(ctx, item.ID)
		return
	}

	message := stageErr.Error()
	resolved := services.FailureStatus(stageErr)
	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String("resolved_status", string(resolved)),
	)

	if resolved == articles.StatusRejected {
		if rejected, err := m.store.MarkRejected(ctx, item.ID, message); err == nil {
			*item = *rejected
			m.setLastItem(item)
			return
		} else if !errors.Is(err, store.ErrIllegalTransition) {
			logger.Error("failed to persist stage rejection", logging.Error(err))
		}
	}

	item.SetFailed(message)
	if err := m.store.Update(ctx, item); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}
	m.setLastItem(item)

	if nerr := m.notifier.NotifyError(ctx, stageErr, stageName); nerr != nil {
		logger.Warn("failure notification failed", logging.Error(nerr))
	}
}

func (m *Manager) refreshLastItem(ctx context.Context, id int64) {
	if updated, err := m.store.GetByID(ctx, id); err == nil && updated != nil {
		m.setLastItem(updated)
	}
}

func (m *Manager) waitOrShutdown(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		delay = time.Millisecond
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}
