// Package content holds the ownership rules applied to mutable records.
package content

import "errors"

// ErrForbidden indicates an authenticated requester who is not the owner of
// the record they are trying to mutate. Non-owner mutations always fail with
// this error, never with a not-found, so "exists but not yours" stays
// distinguishable from "does not exist".
var ErrForbidden = errors.New("forbidden: not the owner")

// Authorize reports whether the requester owns the record.
func Authorize(ownerID, requesterID string) bool {
	return ownerID != "" && ownerID == requesterID
}

// RequireOwner returns ErrForbidden unless the requester owns the record.
// Every mutating content endpoint calls this before persisting changes.
func RequireOwner(ownerID, requesterID string) error {
	if !Authorize(ownerID, requesterID) {
		return ErrForbidden
	}
	return nil
}
