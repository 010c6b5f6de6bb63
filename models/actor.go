package models

// Role of an authenticated caller.
type Role string

const (
	RoleOwner Role = "owner"
	RoleVet   Role = "vet"
	// RoleSystem is used for transitions originated by the service itself, such as payment webhooks.
	RoleSystem Role = "system"
)

// Actor is whoever asked for an operation.
type Actor struct {
	ID   string
	Role Role
}

// SystemActor performs system-originated changes.
var SystemActor = Actor{ID: "system", Role: RoleSystem}

func (a Actor) IsSystem() bool { return a.Role == RoleSystem }
