package auth

import "testing"

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleAdmin, CapManageCatalog, true},
		{RoleAdmin, CapManageOrders, true},
		{RoleAdmin, CapManageStore, true},
		{RoleAdmin, CapViewAdmins, true},
		{RoleAdmin, CapViewLogs, true},
		{RoleAdmin, CapManageAdmins, false},
		{RoleSuperAdmin, CapManageAdmins, true},
		{RoleSuperAdmin, CapManageCatalog, true},
		{Role("viewer"), CapManageCatalog, false},
		{Role(""), CapViewLogs, false},
	}
	for _, tc := range cases {
		if got := tc.role.Can(tc.cap); got != tc.want {
			t.Fatalf("%s.Can(%s): got %v want %v", tc.role, tc.cap, got, tc.want)
		}
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleAdmin.Valid() || !RoleSuperAdmin.Valid() {
		t.Fatal("known roles must be valid")
	}
	if Role("root").Valid() {
		t.Fatal("unknown role must be invalid")
	}
}

func TestClaimsCan(t *testing.T) {
	admin := Claims{Role: RoleAdmin}
	if admin.Can(CapManageAdmins) {
		t.Fatal("admin claims must not manage admins")
	}
	if !admin.Can(CapManageOrders) {
		t.Fatal("admin claims must manage orders")
	}

	super := Claims{Role: RoleSuperAdmin}
	if !super.Can(CapManageAdmins) {
		t.Fatal("super_admin claims must manage admins")
	}
}
