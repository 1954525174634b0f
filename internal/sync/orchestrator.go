package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/connector"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/sink"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/transform"
)

// maxFetchBytes bounds how much of one item is pulled into memory.
const maxFetchBytes = 8 << 20

// StateStore is the durable state the orchestrator reads at run start and
// writes at run end. Satisfied by *store.Store.
type StateStore interface {
	GetScope(ctx context.Context, id uuid.UUID) (postgres.Scope, error)
	GetSyncState(ctx context.Context, scopeID uuid.UUID) (postgres.SyncState, error)
	UpsertSyncState(ctx context.Context, s postgres.SyncState) error
	GetProcessedItems(ctx context.Context, scopeID uuid.UUID) (map[string]time.Time, error)
	MarkProcessed(ctx context.Context, scopeID uuid.UUID, items []postgres.ProcessedItem) error
	PruneProcessed(ctx context.Context, scopeID uuid.UUID, maxAge time.Duration) (int64, error)
	MarkRunRunning(ctx context.Context, runID uuid.UUID) error
	FinishRun(ctx context.Context, arg postgres.FinishRunParams) error
	AppendLogEntries(ctx context.Context, entries []postgres.LogEntry) error
	TrimLog(ctx context.Context, scopeID uuid.UUID, cap int) error
	DeleteStaleDocuments(ctx context.Context, scopeID uuid.UUID, liveSourceIDs []string) (int64, error)
}

// Sink persists one transformed item. Satisfied by *sink.Writer.
type Sink interface {
	Write(ctx context.Context, doc sink.Document) error
}

// Transformer derives structured metadata for one item. Satisfied by
// *transform.Transformer.
type Transformer interface {
	Transform(ctx context.Context, name string, content []byte) (transform.Result, error)
}

// Locker serializes runs per scope. Satisfied by *RunLock; may be nil.
type Locker interface {
	Acquire(ctx context.Context, scopeID uuid.UUID) (func(), error)
}

// Options tune one run.
type Options struct {
	ForceFull   bool
	Concurrency int
}

// RunReport is the outcome summary of one orchestrator execution.
type RunReport struct {
	RunID      uuid.UUID     `json:"run_id"`
	Status     string        `json:"status"`
	Discovered int           `json:"discovered"`
	Indexed    int           `json:"indexed"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// Tunables carried over from config.
type Tunables struct {
	Concurrency     int
	ProcessedMaxAge time.Duration
	LogCap          int
}

// Orchestrator drives one sync run end to end: list candidates, gate,
// transform, sink, then persist state once at the final checkpoint. Item
// failures are isolated; only connector and state-store failures abort a
// run.
type Orchestrator struct {
	store       StateStore
	connectors  *connector.Registry
	transformer Transformer
	sink        Sink
	lock        Locker
	tunables    Tunables
	logger      *slog.Logger
}

func NewOrchestrator(store StateStore, connectors *connector.Registry, transformer Transformer, sk Sink, lock Locker, tunables Tunables, logger *slog.Logger) *Orchestrator {
	if tunables.Concurrency <= 0 {
		tunables.Concurrency = 4
	}
	if tunables.LogCap <= 0 {
		tunables.LogCap = 500
	}
	return &Orchestrator{
		store:       store,
		connectors:  connectors,
		transformer: transformer,
		sink:        sk,
		lock:        lock,
		tunables:    tunables,
		logger:      logger,
	}
}

// Handle adapts RunSync to the queue consumer signature.
func (o *Orchestrator) Handle(ctx context.Context, msg SyncMessage) error {
	_, err := o.RunSync(ctx, msg.ScopeID, msg.RunID, Options{ForceFull: msg.ForceFull})
	return err
}

type itemOutcome struct {
	outcome string // "" means the item never started (cancelled)
	detail  string
}

// RunSync executes one run for a scope. The returned error is non-nil only
// for run-level failures; item failures are reflected in the report.
func (o *Orchestrator) RunSync(ctx context.Context, scopeID, runID uuid.UUID, opts Options) (RunReport, error) {
	start := time.Now()
	report := RunReport{RunID: runID}

	scope, err := o.store.GetScope(ctx, scopeID)
	if err != nil {
		return o.abortRun(ctx, report, start, fmt.Errorf("load scope: %w", err))
	}

	log := o.logger.With(
		slog.String("run_id", runID.String()),
		slog.String("scope_id", scopeID.String()),
		slog.String("tenant", scope.TenantID))

	if o.lock != nil {
		release, err := o.lock.Acquire(ctx, scopeID)
		if err != nil {
			return o.abortRun(ctx, report, start, err)
		}
		defer release()
	}

	if err := o.store.MarkRunRunning(ctx, runID); err != nil {
		return o.abortRun(ctx, report, start, fmt.Errorf("mark run running: %w", err))
	}

	state, err := o.store.GetSyncState(ctx, scopeID)
	if err != nil {
		return o.abortRun(ctx, report, start, fmt.Errorf("load sync state: %w", err))
	}

	conn, err := o.connectors.Get(scope.SourceKind)
	if err != nil {
		return o.abortRun(ctx, report, start, err)
	}

	since := state.Cursor
	if opts.ForceFull {
		since = nil
	}

	// A connector that cannot enumerate aborts the run before any state
	// mutation.
	candidates, err := conn.List(ctx, scope.SourceLocator, since)
	if err != nil {
		return o.abortRun(ctx, report, start, fmt.Errorf("list candidates: %w", err))
	}
	report.Discovered = len(candidates)

	processed, err := o.store.GetProcessedItems(ctx, scopeID)
	if err != nil {
		return o.abortRun(ctx, report, start, fmt.Errorf("load dedup set: %w", err))
	}

	log.Info("sync run started",
		slog.Bool("force_full", opts.ForceFull),
		slog.Int("candidates", len(candidates)))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = o.tunables.Concurrency
	}

	// Each goroutine owns one pre-allocated slot; the only shared mutable
	// state within the run is written here, per-slot, then folded into one
	// end-of-run persist.
	outcomes := make([]itemOutcome, len(candidates))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i, item := range candidates {
		// Cooperative cancellation between items; in-flight items finish
		// or time out on their own.
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			outcomes[i] = o.processItem(egCtx, conn, scope, item, processed, opts.ForceFull)
			return nil
		})
	}
	_ = eg.Wait()

	return o.finishRun(ctx, log, scope, state, candidates, outcomes, runID, opts, report, start)
}

func (o *Orchestrator) processItem(ctx context.Context, conn connector.Connector, scope postgres.Scope, item connector.CandidateItem, processed map[string]time.Time, forceFull bool) itemOutcome {
	if ctx.Err() != nil {
		return itemOutcome{}
	}

	decision := ShouldProcess(forceFull, processed, item)
	if decision == Skip {
		return itemOutcome{outcome: postgres.OutcomeSkipped}
	}

	content, contentType, err := fetchItem(ctx, conn, item)
	if err != nil {
		return itemOutcome{outcome: postgres.OutcomeFailed, detail: fmt.Sprintf("fetch: %v", err)}
	}

	result, err := o.transformer.Transform(ctx, item.Name, content)
	if err != nil {
		// Transform errors surface only on cancellation.
		return itemOutcome{outcome: postgres.OutcomeFailed, detail: fmt.Sprintf("transform: %v", err)}
	}

	err = o.sink.Write(ctx, sink.Document{
		ScopeID:     scope.ID,
		TenantID:    scope.TenantID,
		SourceID:    item.SourceID,
		Name:        item.Name,
		ModifiedAt:  item.ModifiedAt,
		Result:      result,
		Content:     content,
		ContentType: contentType,
	})
	if err != nil {
		return itemOutcome{outcome: postgres.OutcomeFailed, detail: fmt.Sprintf("sink: %v", err)}
	}

	detail := result.Method
	if result.Degraded {
		detail += " (degraded)"
	}
	return itemOutcome{outcome: postgres.OutcomeIndexed, detail: detail}
}

func fetchItem(ctx context.Context, conn connector.Connector, item connector.CandidateItem) ([]byte, string, error) {
	rc, err := conn.Fetch(ctx, item.RawRef)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, maxFetchBytes))
	if err != nil {
		return nil, "", err
	}
	return content, "application/octet-stream", nil
}

// finishRun folds item outcomes into the single end-of-run checkpoint:
// dedup set, cursor, stats, log, and the terminal run record.
func (o *Orchestrator) finishRun(ctx context.Context, log *slog.Logger, scope postgres.Scope, state postgres.SyncState, candidates []connector.CandidateItem, outcomes []itemOutcome, runID uuid.UUID, opts Options, report RunReport, start time.Time) (RunReport, error) {
	var (
		newlyProcessed []postgres.ProcessedItem
		logEntries     []postgres.LogEntry
		eligible       []time.Time
		minFailed      *time.Time
	)

	for i, out := range outcomes {
		item := candidates[i]
		switch out.outcome {
		case postgres.OutcomeIndexed:
			report.Indexed++
			newlyProcessed = append(newlyProcessed, postgres.ProcessedItem{
				SourceID:   item.SourceID,
				ModifiedAt: item.ModifiedAt,
			})
			eligible = append(eligible, item.ModifiedAt)
		case postgres.OutcomeSkipped:
			report.Skipped++
			eligible = append(eligible, item.ModifiedAt)
		case postgres.OutcomeFailed:
			report.Failed++
			if minFailed == nil || item.ModifiedAt.Before(*minFailed) {
				t := item.ModifiedAt
				minFailed = &t
			}
		default:
			// Never started: the run was cancelled. Treated like a failed
			// item for cursor purposes so the next run picks it up.
			report.Failed++
			out.detail = "cancelled before start"
			if minFailed == nil || item.ModifiedAt.Before(*minFailed) {
				t := item.ModifiedAt
				minFailed = &t
			}
		}
		if out.outcome != "" || ctx.Err() != nil {
			outcome := out.outcome
			if outcome == "" {
				outcome = postgres.OutcomeFailed
			}
			entry := postgres.LogEntry{
				ScopeID:  scope.ID,
				RunID:    runID,
				SourceID: item.SourceID,
				Outcome:  outcome,
			}
			if out.detail != "" {
				d := out.detail
				entry.Detail = &d
			}
			logEntries = append(logEntries, entry)
		}
	}

	// Cursor rule: advance to the max modified_at among indexed and skipped
	// candidates, but never past a failed item. A cursor beyond a failure
	// would hide it from the next listing.
	if minFailed != nil {
		kept := eligible[:0]
		for _, t := range eligible {
			if t.Before(*minFailed) {
				kept = append(kept, t)
			}
		}
		eligible = kept
	}
	prevCursor := state.Cursor
	if opts.ForceFull {
		prevCursor = nil
	}
	newCursor := AdvanceCursor(prevCursor, eligible)
	// Forward-only, even across a force-full run that found less than before.
	if state.Cursor != nil && (newCursor == nil || newCursor.Before(*state.Cursor)) {
		newCursor = state.Cursor
	}

	if len(newlyProcessed) > 0 {
		if err := o.store.MarkProcessed(ctx, scope.ID, newlyProcessed); err != nil {
			return o.abortRun(ctx, report, start, fmt.Errorf("persist dedup set: %w", err))
		}
	}

	now := time.Now()
	state.ScopeID = scope.ID
	state.Cursor = newCursor
	state.Stats.Discovered += report.Discovered
	state.Stats.Indexed += report.Indexed
	state.Stats.Skipped += report.Skipped
	state.Stats.Failed += report.Failed
	state.LastRunAt = &now
	state.LastError = nil
	if report.Failed > 0 {
		msg := fmt.Sprintf("%d of %d items failed", report.Failed, report.Discovered)
		state.LastError = &msg
	}

	if err := o.store.UpsertSyncState(ctx, state); err != nil {
		return o.abortRun(ctx, report, start, fmt.Errorf("persist sync state: %w", err))
	}

	// Operator-facing bookkeeping is best-effort.
	if len(logEntries) > 0 {
		if err := o.store.AppendLogEntries(ctx, logEntries); err != nil {
			log.Warn("append processing log failed", slog.String("error", err.Error()))
		}
	}
	if err := o.store.TrimLog(ctx, scope.ID, o.tunables.LogCap); err != nil {
		log.Warn("trim processing log failed", slog.String("error", err.Error()))
	}
	if o.tunables.ProcessedMaxAge > 0 {
		if _, err := o.store.PruneProcessed(ctx, scope.ID, o.tunables.ProcessedMaxAge); err != nil {
			log.Warn("prune dedup set failed", slog.String("error", err.Error()))
		}
	}

	// A force-full run saw the complete listing, so anything not in it no
	// longer exists at the source.
	if opts.ForceFull && report.Failed == 0 {
		live := make([]string, len(candidates))
		for i, c := range candidates {
			live[i] = c.SourceID
		}
		if n, err := o.store.DeleteStaleDocuments(ctx, scope.ID, live); err != nil {
			log.Warn("stale document gc failed", slog.String("error", err.Error()))
		} else if n > 0 {
			log.Info("stale documents collected", slog.Int64("count", n))
		}
	}

	report.Status = postgres.RunStatusCompleted
	if report.Failed > 0 {
		report.Status = postgres.RunStatusCompletedWithErrors
	}
	report.Duration = time.Since(start)

	if err := o.store.FinishRun(ctx, postgres.FinishRunParams{
		RunID:      runID,
		Status:     report.Status,
		Discovered: report.Discovered,
		Indexed:    report.Indexed,
		Skipped:    report.Skipped,
		Failed:     report.Failed,
	}); err != nil {
		return report, fmt.Errorf("finish run: %w", err)
	}

	log.Info("sync run finished",
		slog.String("status", report.Status),
		slog.Int("discovered", report.Discovered),
		slog.Int("indexed", report.Indexed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration))

	return report, nil
}

// abortRun records a terminal run-level failure. Sync state is left
// untouched: an aborted run must not move the cursor or the dedup set.
func (o *Orchestrator) abortRun(ctx context.Context, report RunReport, start time.Time, cause error) (RunReport, error) {
	report.Status = postgres.RunStatusFailed
	report.Duration = time.Since(start)

	msg := cause.Error()
	if err := o.store.FinishRun(ctx, postgres.FinishRunParams{
		RunID:        report.RunID,
		Status:       postgres.RunStatusFailed,
		Discovered:   report.Discovered,
		Indexed:      report.Indexed,
		Skipped:      report.Skipped,
		Failed:       report.Failed,
		ErrorMessage: &msg,
	}); err != nil {
		o.logger.Error("record run failure", slog.String("error", err.Error()))
	}
	return report, cause
}
