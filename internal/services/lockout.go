package services

import "time"

// LockoutDecision is the outcome of evaluating the lockout policy for one
// login attempt.
type LockoutDecision int

const (
	// LockoutAllow permits the attempt.
	LockoutAllow LockoutDecision = iota
	// LockoutAllowExpired permits the attempt because the lockout window
	// has elapsed; the caller must reset the failure counters.
	LockoutAllowExpired
	// LockoutDeny refuses the attempt without evaluating the password.
	LockoutDeny
)

// LockoutPolicy decides whether a login attempt may proceed given the
// account's failure counters. It is pure: no I/O and no clock reads, the
// caller supplies now. Callers must re-evaluate on every attempt since the
// window boundary is relative to wall-clock time.
type LockoutPolicy struct {
	MaxAttempts     int           // Failed attempts before lockout
	LockoutDuration time.Duration // How long the lockout lasts after the most recent failure
}

// Evaluate applies the policy to the account's current counters.
func (p LockoutPolicy) Evaluate(failedAttempts int, lastFailure *time.Time, now time.Time) LockoutDecision {
	if failedAttempts < p.MaxAttempts {
		return LockoutAllow
	}
	if lastFailure == nil || now.Sub(*lastFailure) >= p.LockoutDuration {
		return LockoutAllowExpired
	}
	return LockoutDeny
}
