package auth

import "testing"

func TestNormalizeRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Role
	}{
		{name: "plain role", raw: "MANAGER", want: RoleManager},
		{name: "legacy prefixed role", raw: "ROLE_MANAGER", want: RoleManager},
		{name: "lowercase", raw: "manager", want: RoleManager},
		{name: "lowercase prefixed", raw: "role_hr", want: RoleHR},
		{name: "surrounding whitespace", raw: "  ADMIN ", want: RoleAdmin},
		{name: "empty", raw: "", want: Role("")},
		{name: "unknown role passes through", raw: "ROLE_INTERN", want: Role("INTERN")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeRole(tt.raw); got != tt.want {
				t.Errorf("NormalizeRole(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRoleEquals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Role
		want bool
	}{
		{name: "exact match", a: "MANAGER", b: "MANAGER", want: true},
		{name: "prefixed user role", a: "ROLE_MANAGER", b: "MANAGER", want: true},
		{name: "prefixed required role", a: "MANAGER", b: "ROLE_MANAGER", want: true},
		{name: "both prefixed", a: "ROLE_HR", b: "ROLE_HR", want: true},
		{name: "different roles", a: "EMPLOYEE", b: "MANAGER", want: false},
		{name: "prefixed different roles", a: "ROLE_EMPLOYEE", b: "MANAGER", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Equals(tt.b); got != tt.want {
				t.Errorf("%q.Equals(%q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRoleIsValid(t *testing.T) {
	t.Parallel()

	for _, role := range []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee} {
		if !role.IsValid() {
			t.Errorf("IsValid() = false for %q, want true", role)
		}
	}
	if Role("INTERN").IsValid() {
		t.Error("IsValid() = true for INTERN, want false")
	}
	// Prefixed values are not valid as-is: normalization happens at the
	// construction boundary, not inside IsValid.
	if Role("ROLE_ADMIN").IsValid() {
		t.Error("IsValid() = true for ROLE_ADMIN, want false")
	}
}

func TestUserHasAnyRole(t *testing.T) {
	t.Parallel()

	u := &User{Role: "ROLE_MANAGER"}
	if !u.HasAnyRole(RoleHR, RoleManager) {
		t.Error("HasAnyRole(HR, MANAGER) = false for ROLE_MANAGER user, want true")
	}
	if u.HasAnyRole(RoleHR, RoleAdmin) {
		t.Error("HasAnyRole(HR, ADMIN) = true for ROLE_MANAGER user, want false")
	}
}
