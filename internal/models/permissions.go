package models

// Permission constants
const (
	// Wallet permissions
	PermissionWalletRead  = "wallet:read"
	PermissionWalletWrite = "wallet:write"

	// Payment request permissions
	PermissionRequestSubmit = "request:submit"
	PermissionRequestReview = "request:review"

	// Admin permissions
	PermissionReadAdmin   = "admin:read"
	PermissionWriteAdmin  = "admin:write"
	PermissionReconcile   = "admin:reconcile"
	PermissionConfigWrite = "admin:config-write"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionReadAdmin,
			PermissionWriteAdmin,
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionRequestSubmit,
			PermissionRequestReview,
			PermissionReconcile,
			PermissionConfigWrite,
		}
	case "regular", RoleUser:
		return []string{
			PermissionWalletRead,
			PermissionWalletWrite,
			PermissionRequestSubmit,
		}
	default:
		return []string{}
	}
}
