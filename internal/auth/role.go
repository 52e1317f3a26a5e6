package auth

// Role is the coarse admin role stored on the account. Authorization
// decisions go through Capability checks, never through role comparisons at
// call sites.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type Capability string

const (
	CapManageCatalog Capability = "manage_catalog"
	CapManageOrders  Capability = "manage_orders"
	CapManageStore   Capability = "manage_store"
	CapViewAdmins    Capability = "view_admins"
	CapViewLogs      Capability = "view_logs"
	CapManageAdmins  Capability = "manage_admins"
)

var roleCaps = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapManageCatalog: true,
		CapManageOrders:  true,
		CapManageStore:   true,
		CapViewAdmins:    true,
		CapViewLogs:      true,
	},
	RoleSuperAdmin: {
		CapManageCatalog: true,
		CapManageOrders:  true,
		CapManageStore:   true,
		CapViewAdmins:    true,
		CapViewLogs:      true,
		CapManageAdmins:  true,
	},
}

func (r Role) Can(cap Capability) bool {
	return roleCaps[r][cap]
}
