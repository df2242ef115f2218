package store

import "errors"

// ErrCommitFailed is returned by Save when the backend could not persist the
// pending changes. The backend's own error is wrapped alongside it, so both
// errors.Is(err, ErrCommitFailed) and errors.Is(err, cause) hold.
//
// In-memory state is left untouched; a later Save retries the same work.
var ErrCommitFailed = errors.New("persistence commit failed")
