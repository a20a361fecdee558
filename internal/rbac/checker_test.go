package rbac

import (
	"context"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "quiz:submit", true},
		{"student", "material:upload", false},
		{"student", "attempt:view-all", false},
		{"instructor", "material:upload", true},
		{"instructor", "attempt:view-all", true},
		{"admin", "material:delete-own", true},
		{"admin", "anything:at-all", true},
		{"nobody", "quiz:view", false},
		{"", "quiz:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "material:upload", "quiz:view") {
		t.Error("student should satisfy at least one permission")
	}
	if c.Any("student", "material:upload", "material:summary") {
		t.Error("student should satisfy none of the instructor permissions")
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"grader": {"attempt:*"}})
	if !c.Has("grader", "attempt:view-all") {
		t.Error("prefix wildcard should match")
	}
	if c.Has("grader", "material:view") {
		t.Error("prefix wildcard should not cross resource boundaries")
	}
}

func TestRoleContextRoundTrip(t *testing.T) {
	ctx := WithRole(context.Background(), "instructor")
	if got := RoleFromContext(ctx); got != "instructor" {
		t.Fatalf("role = %q", got)
	}
	if got := RoleFromContext(context.Background()); got != "" {
		t.Fatalf("empty context role = %q", got)
	}
}
