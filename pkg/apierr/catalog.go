package apierr

import "net/http"

// --- Common ---

func InvalidRequestBody() *Error {
	return New(CodeInvalidRequestBody, http.StatusBadRequest, "Invalid request body")
}

func InvalidID(entity string) *Error {
	return New(CodeInvalidID, http.StatusBadRequest, "Invalid "+entity+" ID")
}

func InternalError(cause error) *Error {
	return Wrap(CodeInternalError, http.StatusInternalServerError, "Internal server error", cause)
}

// --- Scope ---

func ScopeNotFound() *Error {
	return New(CodeScopeNotFound, http.StatusNotFound, "Scope not found")
}

func InvalidScopeID() *Error {
	return New(CodeInvalidScopeID, http.StatusBadRequest, "Invalid scope ID")
}

func InvalidSourceKind(kinds string) *Error {
	return New(CodeInvalidSourceKind, http.StatusBadRequest, "source_kind must be one of: "+kinds)
}

func ScopeExists() *Error {
	return New(CodeScopeExists, http.StatusConflict, "A scope with this tenant, kind and locator already exists")
}

func ScopeCreateFailed(cause error) *Error {
	return Wrap(CodeScopeCreateFailed, http.StatusInternalServerError, "Failed to create scope", cause)
}

func ScopeListFailed(cause error) *Error {
	return Wrap(CodeScopeListFailed, http.StatusInternalServerError, "Failed to list scopes", cause)
}

// --- Sync ---

func SyncEnqueueFailed(cause error) *Error {
	return Wrap(CodeSyncEnqueueFailed, http.StatusInternalServerError, "Failed to enqueue sync run", cause)
}

func SyncRunNotFound() *Error {
	return New(CodeSyncRunNotFound, http.StatusNotFound, "Sync run not found")
}

func SyncRunListFailed(cause error) *Error {
	return Wrap(CodeSyncRunListFailed, http.StatusInternalServerError, "Failed to list sync runs", cause)
}

func SyncStatusFailed(cause error) *Error {
	return Wrap(CodeSyncStatusFailed, http.StatusInternalServerError, "Failed to load sync status", cause)
}

func StateClearFailed(cause error) *Error {
	return Wrap(CodeStateClearFailed, http.StatusInternalServerError, "Failed to clear sync state", cause)
}

// --- Search ---

func QueryRequired() *Error {
	return New(CodeQueryRequired, http.StatusBadRequest, "Query text is required")
}

func TenantRequired() *Error {
	return New(CodeTenantRequired, http.StatusBadRequest, "tenant_id is required")
}

func InvalidPhase(phases string) *Error {
	return New(CodeInvalidPhase, http.StatusBadRequest, "phase must be one of: "+phases)
}

func SearchFailed(cause error) *Error {
	return Wrap(CodeSearchFailed, http.StatusInternalServerError, "Search failed", cause)
}

// --- Validation ---

func TenantInvalid() *Error {
	return New(CodeTenantInvalid, http.StatusBadRequest, "tenant_id must be 3-63 chars, lowercase alphanumeric and hyphens, must start/end with alphanumeric")
}

func LocatorRequired() *Error {
	return New(CodeLocatorRequired, http.StatusBadRequest, "source_locator is required")
}

// --- Health ---

func DatabaseNotReady() *Error {
	return New(CodeDatabaseNotReady, http.StatusServiceUnavailable, "Database not ready")
}
