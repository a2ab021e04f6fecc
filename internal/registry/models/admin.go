package models

import "time"

// AdminConfig is the registry's singleton admin record.
//
// Invariants:
//   - At most one instance ever exists (enforced by creation at the fixed
//     derived identifier).
//   - Admin is set at initialization and never mutated afterward.
type AdminConfig struct {
	Admin     SignerKey `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectSuffix is an admin-registered namespace under which aliases are
// created. A given suffix string maps to exactly one account; there is no
// deregistration.
type ProjectSuffix struct {
	Suffix       string    `json:"suffix"`
	RegisteredBy SignerKey `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
}
