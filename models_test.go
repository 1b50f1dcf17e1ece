package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestUserEmailString(t *testing.T) {
	email := "octo@example.com"

	cases := []struct {
		name string
		user *User
		want string
	}{
		{name: "nil user", user: nil, want: ""},
		{name: "nil email", user: &User{}, want: ""},
		{name: "email set", user: &User{Email: &email}, want: email},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.EmailString(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNewIdentityFromUser(t *testing.T) {
	if identity := NewIdentityFromUser(nil); identity != nil {
		t.Fatal("expected nil identity for nil user")
	}

	email := "octo@example.com"
	user := &User{
		ID:       uuid.New(),
		Username: "octo",
		Email:    &email,
	}

	identity := NewIdentityFromUser(user)
	if identity == nil {
		t.Fatal("expected identity")
	}
	if identity.ID() != user.ID.String() {
		t.Fatalf("expected id %q, got %q", user.ID.String(), identity.ID())
	}
	if identity.Username() != "octo" {
		t.Fatalf("expected username octo, got %q", identity.Username())
	}
	if identity.Email() != email {
		t.Fatalf("expected email %q, got %q", email, identity.Email())
	}
}
