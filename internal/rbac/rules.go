package rbac

const (
	PermFormCreate    = "form:create"
	PermFormView      = "form:view"
	PermFormUpdate    = "form:update"
	PermFormDelete    = "form:delete"
	PermFormPublish   = "form:publish"
	PermResponseView  = "response:view"
	PermFormManageAll = "form:manage-all" // act on forms owned by others
)

// Default policy. Editors manage their own forms; Checker.CanManage lets
// PermFormManageAll holders past the owner check.
var RolePermissions = map[string][]string{
	"editor": {
		PermFormCreate,
		PermFormView,
		PermFormUpdate,
		PermFormDelete,
		PermFormPublish,
		PermResponseView,
	},
	"admin": {
		"*", // everything
	},
}
