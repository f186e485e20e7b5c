package web

import (
	"testing"

	"github.com/goliatone/go-transfers/components/session"
)

func TestGuard(t *testing.T) {
	guest := session.State{Role: session.RoleRider}
	rider := session.State{IsAuthenticated: true, Role: session.RoleRider}
	adminState := session.State{IsAuthenticated: true, Role: session.RoleAdmin, IsAdmin: true}

	cases := []struct {
		name     string
		path     string
		state    session.State
		redirect string
		ok       bool
	}{
		{"home is public", "/", guest, "", true},
		{"login for guests", "/login", guest, "", true},
		{"login redirects admins", "/login", adminState, PathAdmin, false},
		{"login allowed for riders", "/login", rider, "", true},
		{"dashboard requires admin", "/admin", guest, PathLogin, false},
		{"dashboard rejects riders", "/admin", rider, PathLogin, false},
		{"dashboard for admins", "/admin", adminState, "", true},
		{"section for admins", "/admin/promotions", adminState, "", true},
		{"trailing slash", "/admin/users/", adminState, "", true},
		{"query string ignored", "/admin/users?status=active", guest, PathLogin, false},
		{"chat requires sign in", "/chat", guest, PathLogin, false},
		{"chat for riders", "/chat", rider, "", true},
		{"unknown page", "/nowhere", adminState, PathHome, false},
		{"unknown admin section", "/admin/reports", adminState, PathHome, false},
		{"home alias", "/home", guest, PathHome, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			redirect, ok := Guard(tc.path, tc.state)
			if ok != tc.ok || redirect != tc.redirect {
				t.Fatalf("Guard(%q) = (%q, %v), want (%q, %v)", tc.path, redirect, ok, tc.redirect, tc.ok)
			}
		})
	}
}
