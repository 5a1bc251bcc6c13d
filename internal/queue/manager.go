// Package queue implements the durable, priority-ordered offline mutation
// queue. The manager owns the in-memory queue for its lifetime, mirrors it
// to the store on every change, and drives processing with backoff-governed
// retries and a conflict pre-check against current remote state.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kaurvahtra/listq/internal/conflict"
	"github.com/kaurvahtra/listq/internal/models"
	"github.com/kaurvahtra/listq/internal/remote"
	"github.com/kaurvahtra/listq/internal/store"
)

// Config holds queue processing tunables.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultConfig returns the default retry and backoff settings.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries: 5,
		BaseDelay:  1 * time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// Manager owns a priority-ordered queue of pending mutations.
// It is designed for a single logical scope: one manager per store.
type Manager struct {
	mu        sync.Mutex
	mutations []*models.Mutation

	st     *store.Store
	client remote.Client
	cfg    *Config
	logger *slog.Logger

	notifiers  []Notifier
	processing atomic.Bool
}

// New creates a Manager backed by the given store and remote client and
// loads any persisted queue. A corrupt or unreadable snapshot degrades to
// an empty queue rather than failing.
func New(st *store.Store, client remote.Client, cfg *Config, logger *slog.Logger) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		st:     st,
		client: client,
		cfg:    cfg,
		logger: logger,
	}

	mutations, err := st.LoadQueue()
	if err != nil {
		logger.Warn("discarding corrupt queue snapshot", "error", err)
		mutations = nil
	}
	// A crash mid-processing leaves items stuck in processing; they are
	// pending again on the next session.
	for _, mut := range mutations {
		if mut.Status == models.StatusProcessing {
			mut.Status = models.StatusPending
		}
	}
	m.mutations = mutations
	m.sortLocked()

	return m
}

// AddNotifier subscribes a notifier to queue state transitions.
func (m *Manager) AddNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifiers = append(m.notifiers, n)
}

// Enqueue assigns identity, timestamp, and priority to a mutation, inserts
// it in queue order, and persists. The caller supplies type, payload, and
// optionally a priority; payload shape is validated at execution time, not
// here. Never fails: a persistence error is logged and the in-memory queue
// stays authoritative for the session.
func (m *Manager) Enqueue(mut *models.Mutation) *models.Mutation {
	m.mu.Lock()
	mut.ID = uuid.New().String()
	mut.Timestamp = time.Now().UnixMilli()
	mut.RetryCount = 0
	mut.Status = models.StatusPending
	mut.Error = ""
	if mut.Priority == 0 {
		mut.Priority = models.DefaultPriority(mut.Type)
	}

	m.mutations = append(m.mutations, mut)
	m.sortLocked()
	m.persistLocked()
	m.mu.Unlock()

	m.notifyStatus()
	return mut.Clone()
}

// EnqueueAdd queues creation of a new item.
func (m *Manager) EnqueueAdd(item *models.Item) *models.Mutation {
	return m.Enqueue(&models.Mutation{
		Type: models.MutationAdd,
		Add:  &models.AddPayload{Item: item},
	})
}

// EnqueueUpdate queues a partial update. base is the remote snapshot the
// edit was made against, used by the conflict pre-check; it may be nil
// when unknown (the pre-check is skipped).
func (m *Manager) EnqueueUpdate(itemID string, patch *models.ItemPatch, base *models.Item) *models.Mutation {
	return m.Enqueue(&models.Mutation{
		Type:   models.MutationUpdate,
		Update: &models.UpdatePayload{ItemID: itemID, Patch: patch, Base: base},
	})
}

// EnqueueMarkGotten queues a completion-flag change.
func (m *Manager) EnqueueMarkGotten(itemID string, gotten bool, base *models.Item) *models.Mutation {
	return m.Enqueue(&models.Mutation{
		Type:       models.MutationMarkGotten,
		MarkGotten: &models.MarkGottenPayload{ItemID: itemID, Gotten: gotten, Base: base},
	})
}

// EnqueueDelete queues removal of an item.
func (m *Manager) EnqueueDelete(itemID string) *models.Mutation {
	return m.Enqueue(&models.Mutation{
		Type:   models.MutationDelete,
		Delete: &models.DeletePayload{ItemID: itemID},
	})
}

// Process runs every pending or failed mutation, one at a time, in queue
// order. A second call while one is in flight is a deliberate no-op
// returning a zero result: concurrent processing could reorder or
// double-apply writes. Mutations enqueued mid-run are not part of this
// run's snapshot or summary.
func (m *Manager) Process(ctx context.Context) *models.ProcessResult {
	if !m.processing.CompareAndSwap(false, true) {
		return &models.ProcessResult{}
	}
	defer m.processing.Store(false)

	start := time.Now()
	result := &models.ProcessResult{}

	m.mu.Lock()
	var ids []string
	for _, mut := range m.mutations {
		if mut.Status == models.StatusPending || mut.Status == models.StatusFailed {
			ids = append(ids, mut.ID)
		}
	}
	m.mu.Unlock()

	for _, id := range ids {
		if !m.processOne(ctx, id, result) {
			break
		}
	}

	// Successes are purged entirely; the queue keeps no history.
	m.mu.Lock()
	kept := m.mutations[:0]
	for _, mut := range m.mutations {
		if mut.Status != models.StatusSuccess {
			kept = append(kept, mut)
		}
	}
	m.mutations = kept
	// Only this run's snapshot counts toward the summary; mutations
	// enqueued mid-run wait for the next one.
	snapshot := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		snapshot[id] = struct{}{}
	}
	for _, mut := range m.mutations {
		if _, ok := snapshot[mut.ID]; ok && mut.Status == models.StatusPending {
			result.PendingCount++
		}
	}
	m.persistLocked()
	m.mu.Unlock()

	if err := m.st.SetLastProcessed(time.Now().UnixMilli()); err != nil {
		m.logger.Warn("failed to record last processed time", "error", err)
	}

	result.Elapsed = time.Since(start)

	m.notifyStatus()
	for _, n := range m.snapshotNotifiers() {
		n.OnQueueProcessed(result)
	}

	return result
}

// processOne executes a single mutation by id. Returns false when the run
// should stop (context cancelled).
func (m *Manager) processOne(ctx context.Context, id string, result *models.ProcessResult) bool {
	m.mu.Lock()
	mut := m.findLocked(id)
	if mut == nil {
		// Removed while this run was in flight.
		m.mu.Unlock()
		return true
	}
	mut.Status = models.StatusProcessing
	retry := mut.RetryCount
	m.persistLocked()
	m.mu.Unlock()
	m.notifyStatus()

	// Terminal check: never attempt past the ceiling.
	if retry >= m.cfg.MaxRetries {
		m.settleFailure(id, fmt.Errorf("max retries (%d) reached", m.cfg.MaxRetries), false, result)
		return true
	}

	// Backoff throttles retry storms and lets transient failures clear.
	if retry > 0 {
		if err := sleepCtx(ctx, backoff(m.cfg, retry)); err != nil {
			m.resetToPending(id)
			return false
		}
	}

	// Conflict pre-check: a mutation carrying a base snapshot can detect
	// that the remote moved underneath it. Conflicts are surfaced, never
	// overwritten.
	if base := mut.BaseState(); base != nil {
		remoteItem, err := m.client.GetItem(ctx, mut.ItemID())
		switch {
		case err == nil:
			c, derr := conflict.Detect(base, remoteItem)
			if derr != nil {
				m.settleFailure(id, fmt.Errorf("conflict pre-check: %w", derr), true, result)
				return true
			}
			if c != nil {
				// Policy stop, not a transient error: no retry increment.
				m.settleFailure(id, fmt.Errorf("conflict detected on item %s", c.ItemID), false, result)
				return true
			}
		case errors.Is(err, remote.ErrNotFound):
			// Nothing to diverge from; the write itself decides.
		default:
			m.settleFailure(id, fmt.Errorf("fetch remote state: %w", err), true, result)
			return true
		}
	}

	if err := m.execute(ctx, mut); err != nil {
		m.settleFailure(id, err, true, result)
		return true
	}

	m.settleSuccess(id, result)
	return true
}

// execute dispatches a mutation to the remote client based on its type.
func (m *Manager) execute(ctx context.Context, mut *models.Mutation) error {
	if err := mut.Validate(); err != nil {
		return err
	}

	switch mut.Type {
	case models.MutationAdd:
		return m.client.CreateItem(ctx, mut.Add.Item)
	case models.MutationUpdate:
		_, err := m.client.UpdateItem(ctx, mut.Update.ItemID, mut.Update.Patch)
		return err
	case models.MutationMarkGotten:
		gotten := mut.MarkGotten.Gotten
		_, err := m.client.UpdateItem(ctx, mut.MarkGotten.ItemID, &models.ItemPatch{Gotten: &gotten})
		return err
	case models.MutationDelete:
		return m.client.DeleteItem(ctx, mut.Delete.ItemID)
	default:
		return fmt.Errorf("unknown mutation type %q", mut.Type)
	}
}

// settleSuccess marks a mutation successful and persists.
func (m *Manager) settleSuccess(id string, result *models.ProcessResult) {
	m.mu.Lock()
	mut := m.findLocked(id)
	if mut == nil {
		m.mu.Unlock()
		return
	}
	mut.Status = models.StatusSuccess
	mut.Error = ""
	snapshot := mut.Clone()
	m.persistLocked()
	m.mu.Unlock()

	result.SuccessCount++

	for _, n := range m.snapshotNotifiers() {
		n.OnMutationSuccess(snapshot)
	}
	m.notifyStatus()
}

// settleFailure marks a mutation failed and persists. countRetry is false
// for policy stops (conflicts, terminal ceiling) which must not consume
// retry budget through the execution path.
func (m *Manager) settleFailure(id string, cause error, countRetry bool, result *models.ProcessResult) {
	m.mu.Lock()
	mut := m.findLocked(id)
	if mut == nil {
		m.mu.Unlock()
		return
	}
	mut.Status = models.StatusFailed
	mut.Error = cause.Error()
	if countRetry {
		mut.RetryCount++
	}
	snapshot := mut.Clone()
	m.persistLocked()
	m.mu.Unlock()

	result.FailedCount++
	result.FailedIDs = append(result.FailedIDs, id)

	for _, n := range m.snapshotNotifiers() {
		n.OnMutationFailed(snapshot, cause)
	}
	m.notifyStatus()
}

// resetToPending puts an interrupted mutation back into the pending state.
func (m *Manager) resetToPending(id string) {
	m.mu.Lock()
	if mut := m.findLocked(id); mut != nil {
		mut.Status = models.StatusPending
		m.persistLocked()
	}
	m.mu.Unlock()
	m.notifyStatus()
}

// RetryFailed resets every failed mutation to pending with a fresh retry
// budget and cleared error, then processes the queue. A user-triggered
// retry is a full reset, not an incremental nudge.
func (m *Manager) RetryFailed(ctx context.Context) *models.ProcessResult {
	m.mu.Lock()
	for _, mut := range m.mutations {
		if mut.Status == models.StatusFailed {
			mut.Status = models.StatusPending
			mut.RetryCount = 0
			mut.Error = ""
		}
	}
	m.persistLocked()
	m.mu.Unlock()
	m.notifyStatus()

	return m.Process(ctx)
}

// Remove deletes a single mutation regardless of status. Unknown ids are a
// no-op, so removal is idempotent.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	kept := m.mutations[:0]
	for _, mut := range m.mutations {
		if mut.ID != id {
			kept = append(kept, mut)
		}
	}
	m.mutations = kept
	m.persistLocked()
	m.mu.Unlock()
	m.notifyStatus()
}

// Clear empties the queue unconditionally. Irreversible.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.mutations = nil
	m.persistLocked()
	m.mu.Unlock()
	m.notifyStatus()
}

// Status returns derived counts plus processing state and the last
// processed timestamp from store metadata.
func (m *Manager) Status() *models.QueueStatus {
	m.mu.Lock()
	status := m.statusLocked()
	m.mu.Unlock()
	return status
}

// List returns a copy of every queued mutation in queue order.
func (m *Manager) List() []*models.Mutation {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Mutation, 0, len(m.mutations))
	for _, mut := range m.mutations {
		out = append(out, mut.Clone())
	}
	return out
}

// findLocked returns the live mutation with the given id. Caller holds mu.
func (m *Manager) findLocked(id string) *models.Mutation {
	for _, mut := range m.mutations {
		if mut.ID == id {
			return mut
		}
	}
	return nil
}

// sortLocked restores the queue invariant: priority descending, then
// timestamp ascending. Recomputed on every insert, never lazily.
// Caller holds mu.
func (m *Manager) sortLocked() {
	sort.SliceStable(m.mutations, func(i, j int) bool {
		if m.mutations[i].Priority != m.mutations[j].Priority {
			return m.mutations[i].Priority > m.mutations[j].Priority
		}
		return m.mutations[i].Timestamp < m.mutations[j].Timestamp
	})
}

// persistLocked mirrors the queue to the store. Failures are logged and
// swallowed: the in-memory queue stays authoritative for the session, an
// accepted trade-off on storage-constrained environments. Caller holds mu.
func (m *Manager) persistLocked() {
	if err := m.st.SaveQueue(m.mutations); err != nil {
		m.logger.Warn("failed to persist queue", "error", err)
	}
}

// statusLocked computes the derived status snapshot. Caller holds mu.
func (m *Manager) statusLocked() *models.QueueStatus {
	status := &models.QueueStatus{
		Total:        len(m.mutations),
		IsProcessing: m.processing.Load(),
	}
	for _, mut := range m.mutations {
		switch mut.Status {
		case models.StatusPending:
			status.Pending++
		case models.StatusProcessing:
			status.Processing++
		case models.StatusFailed:
			status.Failed++
		case models.StatusSuccess:
			status.Success++
		}
	}
	if ts, err := m.st.LastProcessed(); err == nil {
		status.LastProcessed = ts
	}
	return status
}

// snapshotNotifiers copies the notifier list so callbacks run without mu.
func (m *Manager) snapshotNotifiers() []Notifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notifier(nil), m.notifiers...)
}

// notifyStatus fires OnStatusChange with a fresh snapshot.
func (m *Manager) notifyStatus() {
	status := m.Status()
	for _, n := range m.snapshotNotifiers() {
		n.OnStatusChange(status)
	}
}

// backoff computes the retry delay: min(base * 2^(n-1), max).
func backoff(cfg *Config, retryCount int) time.Duration {
	d := cfg.BaseDelay << uint(retryCount-1)
	if d > cfg.MaxDelay || d <= 0 {
		d = cfg.MaxDelay
	}
	return d
}

// sleepCtx waits for the given duration or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
