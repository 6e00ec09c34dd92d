package models

import "time"

// RecoveryRequest is a single-use recovery code issued for an email.
// There is at most one row per email; re-requesting overwrites it.
// Valid flips to false on the first validation attempt, whatever its
// outcome.
type RecoveryRequest struct {
	ID         string
	Email      string
	Code       string
	Expiration time.Time
	Valid      bool
}
