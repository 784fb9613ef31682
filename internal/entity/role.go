package entity

import "fmt"

// Role is the closed set of portal roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleFaculty, RoleStudent}

// ParseRole maps a wire string onto a Role. Matching is exact: the backend
// emits lower-case names and anything else is rejected rather than guessed.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// HomePath is the dashboard a role lands on after login.
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin-dashboard"
	case RoleFaculty:
		return "/faculty-dashboard"
	case RoleStudent:
		return "/student-dashboard"
	}
	return "/login"
}

func (r Role) String() string {
	return string(r)
}
