// Package policy holds the single authorization decision function.  It is
// deliberately free of transport and annotation mechanics: callers evaluate
// it once per request with the actor's claims and the record they target.
package policy

import (
	"github.com/iliyamo/auth-service/internal/utils"
)

// Allow reports whether the actor may perform an operation gated by the
// required roles.  An actor holding any of the required roles passes; so
// does an actor targeting their own record (self-service override).  An
// empty required set admits any authenticated actor.
func Allow(required []string, actor utils.Claims, targetID string) bool {
	if targetID != "" && actor.ID == targetID {
		return true
	}
	if len(required) == 0 {
		return actor.ID != ""
	}
	for _, need := range required {
		for _, have := range actor.Roles {
			if need == have {
				return true
			}
		}
	}
	return false
}
