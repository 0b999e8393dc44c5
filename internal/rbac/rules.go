package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"submission:create",
		"submission:view-own",
		"leaderboard:view",
	},
	"admin": {
		"*", // everything
	},
}
