// Package errors implements a discriminated error taxonomy: every
// failure is classified once at a component boundary and converted into
// a metric increment, a log line, and (where one exists) a status
// message, never propagated further up the call stack.
package errors

import (
	stderrors "errors"

	"github.com/pkg/errors"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Class discriminates the error taxonomy's variants.
type Class int

const (
	// ClassTransient covers connection resets, throttling, and patch
	// conflicts, safe to retry with back-off.
	ClassTransient Class = iota
	// ClassPermanent covers forbidden/schema-violation errors, logged
	// and surfaced in status, no retry until the next reconcile trigger.
	ClassPermanent
	// ClassFailOpen covers a policy-lookup failure during admission.
	ClassFailOpen
	// ClassRemediationFailure covers a per-workload enforcement patch
	// failure; it never aborts sibling workloads.
	ClassRemediationFailure
	// ClassPanic covers a recovered panic inside the admission handler.
	ClassPanic
	// ClassLeaderLoss covers the watch controller losing its lease.
	ClassLeaderLoss
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	case ClassFailOpen:
		return "fail_open"
	case ClassRemediationFailure:
		return "remediation_failure"
	case ClassPanic:
		return "panic"
	case ClassLeaderLoss:
		return "leader_loss"
	default:
		return "unknown"
	}
}

// Error pairs a classified error with its taxonomy variant.
type Error struct {
	Class Class
	Err   error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error wrapping a plain message, using
// github.com/pkg/errors so the resulting error carries a stack trace from
// its point of origin.
func New(class Class, msg string) *Error {
	return &Error{Class: class, Err: errors.New(msg)}
}

// Wrap classifies an existing error, adding msg as context.
func Wrap(class Class, err error, msg string) *Error {
	return &Error{Class: class, Err: errors.Wrap(err, msg)}
}

// ClassifyAPIError maps a Kubernetes API error onto the taxonomy: conflict
// and throttling responses are transient, everything else permanent.
func ClassifyAPIError(err error) Class {
	if apierrors.IsConflict(err) || apierrors.IsTooManyRequests(err) || apierrors.IsServerTimeout(err) || apierrors.IsTimeout(err) {
		return ClassTransient
	}
	return ClassPermanent
}

// As is a thin re-export of the standard library's errors.As so callers
// classifying an *Error at a component boundary don't need a second
// import alongside this package.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
