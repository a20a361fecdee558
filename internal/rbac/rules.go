package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"material:view",
		"quiz:view",
		"quiz:submit",
		"attempt:view-own",
	},
	"instructor": {
		"material:upload",
		"material:view",
		"material:delete-own",
		"material:summary",
		"quiz:view",
		"quiz:submit",
		"attempt:view-own",
		"attempt:view-all",
	},
	"admin": {
		"*", // everything
	},
}
