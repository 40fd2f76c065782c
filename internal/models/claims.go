package models

import "github.com/golang-jwt/jwt/v5"

// Application permissions
const (
	PermissionWalletRead   = "wallet:read"
	PermissionWalletWrite  = "wallet:write"
	PermissionBookingRead  = "booking:read"
	PermissionBookingWrite = "booking:write"
	PermissionSessionWrite = "session:write"
	PermissionReadAdmin    = "admin:read"
	PermissionWriteAdmin   = "admin:write"
)

type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint     `json:"user_id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	TokenVersion int      `json:"token_version"`
}

// HasPermission checks if the claims include a specific permission
func (c *UserClaims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionBookingRead,
			PermissionBookingWrite,
			PermissionReadAdmin,
			PermissionWriteAdmin,
		}
	case RoleAstrologer:
		return []string{
			PermissionWalletRead,
			PermissionBookingRead,
			PermissionSessionWrite,
		}
	case RoleUser:
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionBookingRead,
			PermissionBookingWrite,
		}
	default:
		return []string{}
	}
}
