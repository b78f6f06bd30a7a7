package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
	RoleAccountant Role = "ACCOUNTANT"
	RoleDriver     Role = "DRIVER"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Principal) IsDispatcher() bool { return p.Role == RoleDispatcher }
func (p Principal) IsAccountant() bool { return p.Role == RoleAccountant }
func (p Principal) IsDriver() bool     { return p.Role == RoleDriver }
