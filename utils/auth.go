package utils

// Permission levels
const (
	DeveloperPermission = "developer"
	AdminPermission     = "admin"
	GuestPermission     = "guest"
)

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a != "" && a == item {
			return true
		}
	}
	return false
}

// CheckPermission returns the highest permission level of a member. Guild admin
// roles and the global admin roles both grant AdminPermission.
func CheckPermission(memberRoleIDs []string, userID string, guildAdminRoleIDs, globalAdminRoleIDs, developerUserIDs []string) string {
	if contains(developerUserIDs, userID) {
		return DeveloperPermission
	}
	for _, roleID := range memberRoleIDs {
		if contains(guildAdminRoleIDs, roleID) || contains(globalAdminRoleIDs, roleID) {
			return AdminPermission
		}
	}
	return GuestPermission
}

// CanModerate reports whether a permission level may issue or revoke sanctions.
func CanModerate(level string) bool {
	return level == DeveloperPermission || level == AdminPermission
}
