// ABOUTME: Sentinel errors shared across the sync core
// ABOUTME: Callers classify failures with errors.Is against these values
package errs

import "errors"

// Caller-side failures, never retried.
var ErrValidation = errors.New("validation failed")
var ErrOffline = errors.New("offline")
var ErrNotFound = errors.New("record not found")

// Per-attempt failures, retried while attempts remain.
var ErrTimeout = errors.New("operation timed out")
var ErrRemote = errors.New("remote store error")

// Terminal failures, surfaced after the attempt budget is spent.
var ErrRetryExhausted = errors.New("retry attempts exhausted")
var ErrAddFailed = errors.New("add failed")
var ErrUpdateFailed = errors.New("update failed")
var ErrDeleteFailed = errors.New("delete failed")
var ErrFetchFailed = errors.New("fetch failed")
