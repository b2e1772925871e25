package auth

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{input: "admin", want: RoleAdmin},
		{input: "user", want: RoleUser},
		{input: "owner", want: RoleOwner},
		{input: " owner ", want: RoleOwner},
		{input: "root", wantErr: true},
		{input: "", wantErr: true},
		{input: "Admin", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseRole(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q) expected error, got %q", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q) returned error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestAuthorizeDeniesMissingIdentity(t *testing.T) {
	if err := Authorize(nil, RoleAdmin, RoleUser, RoleOwner); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthorizeRoleMatrix(t *testing.T) {
	roles := []Role{RoleAdmin, RoleUser, RoleOwner}

	for _, identityRole := range roles {
		for _, allowed := range roles {
			identity := &Identity{ID: "u1", Role: identityRole, Email: "u1@example.com"}
			err := Authorize(identity, allowed)
			if identityRole == allowed {
				if err != nil {
					t.Errorf("Authorize(%s, %s) = %v, want nil", identityRole, allowed, err)
				}
				continue
			}
			if !errors.Is(err, ErrForbidden) {
				t.Errorf("Authorize(%s, %s) = %v, want ErrForbidden", identityRole, allowed, err)
			}
		}
	}
}

func TestAuthorizeMultipleAllowedRoles(t *testing.T) {
	identity := &Identity{ID: "u1", Role: RoleOwner, Email: "owner@example.com"}
	if err := Authorize(identity, RoleAdmin, RoleOwner); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
	if err := Authorize(identity); !errors.Is(err, ErrForbidden) {
		t.Fatalf("empty allowed set must deny, got %v", err)
	}
}
