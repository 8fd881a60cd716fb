package auth

// Role is the access level assigned to a user account. Every account carries
// exactly one role.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
	RoleUnset   Role = ""
)

// ParseRole maps a stored or transmitted role string onto the closed role
// set. Unknown values come back as RoleUnset.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RolePatient:
		return Role(s)
	default:
		return RoleUnset
	}
}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether the role is one of the known assignable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	default:
		return false
	}
}
