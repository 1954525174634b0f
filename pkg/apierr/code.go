package apierr

// Code is a machine-readable error code returned in API responses.
type Code string

// Common errors.
const (
	CodeInvalidRequestBody Code = "INVALID_REQUEST_BODY"
	CodeInvalidID          Code = "INVALID_ID"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Scope errors.
const (
	CodeScopeNotFound     Code = "SCOPE_NOT_FOUND"
	CodeInvalidScopeID    Code = "INVALID_SCOPE_ID"
	CodeInvalidSourceKind Code = "INVALID_SOURCE_KIND"
	CodeScopeExists       Code = "SCOPE_EXISTS"
	CodeScopeCreateFailed Code = "SCOPE_CREATE_FAILED"
	CodeScopeListFailed   Code = "SCOPE_LIST_FAILED"
)

// Sync errors.
const (
	CodeSyncEnqueueFailed Code = "SYNC_ENQUEUE_FAILED"
	CodeSyncRunNotFound   Code = "SYNC_RUN_NOT_FOUND"
	CodeSyncRunListFailed Code = "SYNC_RUN_LIST_FAILED"
	CodeSyncStatusFailed  Code = "SYNC_STATUS_FAILED"
	CodeStateClearFailed  Code = "STATE_CLEAR_FAILED"
)

// Search errors.
const (
	CodeQueryRequired  Code = "QUERY_REQUIRED"
	CodeTenantRequired Code = "TENANT_REQUIRED"
	CodeInvalidPhase   Code = "INVALID_PHASE"
	CodeSearchFailed   Code = "SEARCH_FAILED"
)

// Validation errors.
const (
	CodeTenantInvalid   Code = "TENANT_INVALID"
	CodeLocatorRequired Code = "LOCATOR_REQUIRED"
)

// Health errors.
const (
	CodeDatabaseNotReady Code = "DATABASE_NOT_READY"
)
