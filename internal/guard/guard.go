// Package guard decides whether a session may see a role-restricted screen.
package guard

import (
	"workshopportal/internal/entity"
	"workshopportal/internal/session"
)

// Public is the required role of screens anyone may open.
const Public entity.Role = ""

type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnauthenticated
	ReasonRoleMismatch
)

func (r Reason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonRoleMismatch:
		return "role_mismatch"
	}
	return "none"
}

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason Reason) Decision { return Decision{Reason: reason} }

// Evaluate applies the access table. Public screens are always allowed;
// otherwise the session must be present and carry exactly the required role.
func Evaluate(required entity.Role, s session.Session) Decision {
	if required == Public {
		return allow()
	}
	if !s.Present() {
		return deny(ReasonUnauthenticated)
	}
	if s.Role != required {
		return deny(ReasonRoleMismatch)
	}
	return allow()
}
