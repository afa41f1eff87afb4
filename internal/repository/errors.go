// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// service layer to distinguish between different failure scenarios without
// parsing driver errors themselves.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique key on
// users.email.  The service layer maps this to a registration conflict, or
// retries as an update during federated account creation races.
var ErrEmailExists = errors.New("email already exists")
