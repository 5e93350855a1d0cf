package rbac

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		name   string
		role   Role
		action Action
		allow  bool
	}{
		{name: "viewer read", role: RoleViewer, action: ActionRead, allow: true},
		{name: "viewer write", role: RoleViewer, action: ActionWrite, allow: false},
		{name: "finance write", role: RoleFinance, action: ActionWrite, allow: true},
		{name: "finance approve", role: RoleFinance, action: ActionApprove, allow: false},
		{name: "pmo approve", role: RolePMO, action: ActionApprove, allow: true},
		{name: "pmo admin", role: RolePMO, action: ActionAdmin, allow: false},
		{name: "admin admin", role: RoleAdmin, action: ActionAdmin, allow: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Can(tc.role, tc.action); got != tc.allow {
				t.Fatalf("Can(%q, %q) = %v, want %v", tc.role, tc.action, got, tc.allow)
			}
		})
	}
}

func TestNormalizeFallsBackToViewer(t *testing.T) {
	if got := Normalize("estimator"); got != RoleViewer {
		t.Fatalf("Normalize(estimator) = %q, want viewer", got)
	}
	if got := Normalize("pmo"); got != RolePMO {
		t.Fatalf("Normalize(pmo) = %q, want pmo", got)
	}
}
