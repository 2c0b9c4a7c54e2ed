package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags classify failures so the HTTP layer can pick a status code
var (
	TagNotFound     = goerr.NewTag("not_found")
	TagValidation   = goerr.NewTag("validation")
	TagUnauthorized = goerr.NewTag("unauthorized")
	TagForbidden    = goerr.NewTag("forbidden")
	TagConflict     = goerr.NewTag("conflict")
)

// Sentinel errors for domain operations
var (
	ErrUserNotFound            = goerr.New("user not found", goerr.T(TagNotFound))
	ErrStakeholderNotFound     = goerr.New("stakeholder not found", goerr.T(TagNotFound))
	ErrCohortNotFound          = goerr.New("cohort not found", goerr.T(TagNotFound))
	ErrCandidateNotFound       = goerr.New("candidate not found", goerr.T(TagNotFound))
	ErrEffortNotFound          = goerr.New("effort not found", goerr.T(TagNotFound))
	ErrWeeklySummaryNotFound   = goerr.New("weekly summary not found", goerr.T(TagNotFound))
	ErrFeedbackRequestNotFound = goerr.New("feedback request not found", goerr.T(TagNotFound))
	ErrNotificationNotFound    = goerr.New("notification not found", goerr.T(TagNotFound))

	ErrInvalidCredentials = goerr.New("invalid email or password", goerr.T(TagUnauthorized))
	ErrInvalidToken       = goerr.New("invalid or expired token", goerr.T(TagUnauthorized))
	ErrPermissionDenied   = goerr.New("permission denied", goerr.T(TagForbidden))
	ErrUserInactive       = goerr.New("account is inactive", goerr.T(TagForbidden))

	ErrSubmissionWindow  = goerr.New("submissions are only accepted for the current or previous week", goerr.T(TagValidation))
	ErrFeedbackInactive  = goerr.New("this feedback link has been deactivated", goerr.T(TagForbidden))
	ErrFeedbackExpired   = goerr.New("this feedback link has expired", goerr.T(TagForbidden))
	ErrFeedbackDuplicate = goerr.New("feedback already submitted for this employee ID", goerr.T(TagConflict))
)

// IsNotFound reports whether err is classified as a missing resource
func IsNotFound(err error) bool {
	return walk(err, func(e error) bool { return goerr.HasTag(e, TagNotFound) })
}

// IsValidation reports whether err is classified as invalid input
func IsValidation(err error) bool {
	return walk(err, func(e error) bool { return goerr.HasTag(e, TagValidation) })
}

// IsUnauthorized reports whether err is classified as an authentication failure
func IsUnauthorized(err error) bool {
	return walk(err, func(e error) bool { return goerr.HasTag(e, TagUnauthorized) })
}

// IsForbidden reports whether err is classified as a permission failure
func IsForbidden(err error) bool {
	return walk(err, func(e error) bool { return goerr.HasTag(e, TagForbidden) })
}

// IsConflict reports whether err is classified as a uniqueness conflict
func IsConflict(err error) bool {
	return walk(err, func(e error) bool { return goerr.HasTag(e, TagConflict) })
}

func walk(err error, match func(error) bool) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if match(e) {
			return true
		}
	}
	return false
}

// validationError creates a validation error with context values
func validationError(msg string, opts ...goerr.Option) error {
	return goerr.New(msg, append(opts, goerr.T(TagValidation))...)
}
