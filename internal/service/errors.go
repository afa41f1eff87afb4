// Package service implements the token and session lifecycle engine: the
// session manager, the one-time-code manager, the federated identity
// resolver and the user account operations around them.
package service

import "errors"

// Sentinel errors returned by the service layer.  Handlers translate these
// into HTTP responses; the messages deliberately do not reveal which exact
// condition failed where that would allow account enumeration.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so a prober cannot tell accounts apart.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotConfirmed is returned after the password check passed but the
	// account has not confirmed its email yet.
	ErrNotConfirmed = errors.New("email not confirmed")
	// ErrUserBlocked rejects token issuance for blocked accounts.
	ErrUserBlocked = errors.New("user is blocked")
	// ErrEmailTaken signals a registration conflict.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCode covers a wrong, expired or absent one-time code
	// without distinguishing which.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrUnauthorized covers a missing, expired or already-used refresh
	// token, again without distinguishing which.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned where presence is required, e.g. recovery
	// for an unknown email.
	ErrNotFound = errors.New("user not found")
	// ErrForbidden signals a failed role/ownership check.
	ErrForbidden = errors.New("forbidden")
	// ErrProviderAccount rejects password recovery for federated accounts.
	ErrProviderAccount = errors.New("account is linked to an external provider")
	// ErrProviderAuth signals that federated account creation failed.
	ErrProviderAuth = errors.New("provider account creation failed")
	// ErrDelivery signals a failed outbound notification.  State changed
	// before the send (such as an issued code) is not rolled back.
	ErrDelivery = errors.New("mail delivery failed")
)
