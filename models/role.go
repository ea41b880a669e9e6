package models

type Role string

const (
	RoleAdmin Role = "admin"
	// RoleOwner may edit the profile of the team whose OwnerEmail matches the token email.
	RoleOwner Role = "owner"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleOwner
}
