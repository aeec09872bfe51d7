package models

import "github.com/golang-jwt/jwt/v5"

// AdminRole represents the available roles for the RBAC system.
type AdminRole string

const (
	RoleGeneralAdmin AdminRole = "generalAdmin"
	RoleGymAdmin     AdminRole = "gymAdmin"
)

// Admin is the session principal. A gymAdmin is implicitly restricted to their home
// base across every listing and aggregation; a generalAdmin sees all bases.
type Admin struct {
	ID       string    `json:"_id"`
	Username string    `json:"username"`
	Role     AdminRole `json:"role"`
	BaseID   string    `json:"baseId,omitempty"`
}

// JWTClaims is the access-token payload minted by the upstream backend.
type JWTClaims struct {
	AdminID  string    `json:"adminId"`
	Username string    `json:"username"`
	Role     AdminRole `json:"role"`
	BaseID   string    `json:"baseId,omitempty"`
	jwt.RegisteredClaims
}

// Scope captures the role-based visibility restriction applied to every snapshot and
// aggregation. It replaces ambient session state with an explicit parameter.
type Scope struct {
	Role   AdminRole
	BaseID string
}

// ScopeFor derives the visibility scope for an admin.
func ScopeFor(role AdminRole, baseID string) Scope {
	if role == RoleGeneralAdmin {
		return Scope{Role: role}
	}
	return Scope{Role: role, BaseID: baseID}
}

// AllowsBase reports whether records from the given base are visible in this scope.
func (s Scope) AllowsBase(baseID string) bool {
	if s.Role == RoleGeneralAdmin || s.BaseID == "" {
		return true
	}
	return s.BaseID == baseID
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
