package postgres

import (
	"time"

	"github.com/google/uuid"
)

// Scope is one (tenant, source_kind, source_locator) sync unit.
type Scope struct {
	ID            uuid.UUID     `json:"id"`
	TenantID      string        `json:"tenant_id"`
	SourceKind    string        `json:"source_kind"`
	SourceLocator string        `json:"source_locator"`
	SyncInterval  time.Duration `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SyncStats are the per-run counters persisted inside sync_states.stats.
type SyncStats struct {
	Discovered int `json:"discovered"`
	Indexed    int `json:"indexed"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// SyncState is the durable per-scope watermark and counters. A nil Cursor
// means the scope has never completed a run.
type SyncState struct {
	ScopeID   uuid.UUID  `json:"scope_id"`
	Cursor    *time.Time `json:"cursor"`
	Stats     SyncStats  `json:"stats"`
	LastRunAt *time.Time `json:"last_run_at"`
	LastError *string    `json:"last_error"`
}

// ProcessedItem is one entry of the dedup set.
type ProcessedItem struct {
	ScopeID     uuid.UUID `json:"scope_id"`
	SourceID    string    `json:"source_id"`
	ModifiedAt  time.Time `json:"modified_at"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Sync run statuses.
const (
	RunStatusQueued              = "queued"
	RunStatusRunning             = "running"
	RunStatusCompleted           = "completed"
	RunStatusCompletedWithErrors = "completed_with_errors"
	RunStatusFailed              = "failed"
)

// SyncRun records one orchestrator execution.
type SyncRun struct {
	ID           uuid.UUID  `json:"id"`
	ScopeID      uuid.UUID  `json:"scope_id"`
	Status       string     `json:"status"`
	ForceFull    bool       `json:"force_full"`
	Discovered   int        `json:"discovered"`
	Indexed      int        `json:"indexed"`
	Skipped      int        `json:"skipped"`
	Failed       int        `json:"failed"`
	ErrorMessage *string    `json:"error_message"`
	StartedAt    *time.Time `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Processing log outcomes.
const (
	OutcomeIndexed = "indexed"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// LogEntry is one append-only processing-log record.
type LogEntry struct {
	ID        int64     `json:"id"`
	ScopeID   uuid.UUID `json:"scope_id"`
	RunID     uuid.UUID `json:"run_id"`
	SourceID  string    `json:"source_id"`
	Outcome   string    `json:"outcome"`
	Detail    *string   `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is the indexed unit of truth for one (scope, source_id).
// The embedding column is written on upsert but not read back here.
type Document struct {
	ID          uuid.UUID      `json:"id"`
	ScopeID     uuid.UUID      `json:"scope_id"`
	TenantID    string         `json:"tenant_id"`
	SourceID    string         `json:"source_id"`
	Category    string         `json:"category"`
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	Keywords    []string       `json:"keywords"`
	Metadata    map[string]any `json:"metadata"`
	Confidence  float32        `json:"confidence"`
	Method      string         `json:"method"`
	Degraded    bool           `json:"degraded"`
	ArtifactRef *string        `json:"artifact_ref"`
	ModifiedAt  time.Time      `json:"modified_at"`
	IndexedAt   time.Time      `json:"indexed_at"`
}
