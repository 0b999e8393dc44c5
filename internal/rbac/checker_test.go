package rbac

import (
	"context"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role, perm string
		want       bool
	}{
		{"student", "exam:view", true},
		{"student", "submission:create", true},
		{"student", "exam:create", false},
		{"student", "submission:view-all", false},
		{"admin", "exam:create", true},
		{"admin", "anything:at-all", true},
		{"ghost", "exam:view", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "submission:view-own", "submission:view-all") {
		t.Error("student should pass with view-own")
	}
	if c.Any("student", "exam:create", "exam:release") {
		t.Error("student should fail both admin perms")
	}
}

func TestMatchPermWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{"grader": {"submission:*"}})
	if !c.Has("grader", "submission:view-all") {
		t.Error("prefix wildcard should match")
	}
	if c.Has("grader", "exam:view") {
		t.Error("prefix wildcard must not cross concerns")
	}
}

func TestRoleContext(t *testing.T) {
	ctx := WithRole(context.Background(), "admin")
	if got := RoleFromContext(ctx); got != "admin" {
		t.Errorf("RoleFromContext = %q", got)
	}
	if got := RoleFromContext(context.Background()); got != "" {
		t.Errorf("empty context should yield no role, got %q", got)
	}
}
