package web

import (
	"strings"

	"github.com/goliatone/go-transfers/components/session"
)

// Page paths.
const (
	PathHome  = "/"
	PathLogin = "/login"
	PathAdmin = "/admin"
	PathChat  = "/chat"
)

// AdminSections are the pages nested under PathAdmin, in menu order.
var AdminSections = []string{"users", "drivers", "restaurants", "rides", "orders", "promotions", "settings"}

type access int

const (
	accessPublic access = iota
	accessGuest
	accessSignedIn
	accessAdmin
)

var pageAccess = func() map[string]access {
	pages := map[string]access{
		PathHome:  accessPublic,
		PathLogin: accessGuest,
		PathAdmin: accessAdmin,
		PathChat:  accessSignedIn,
	}
	for _, section := range AdminSections {
		pages[PathAdmin+"/"+section] = accessAdmin
	}
	return pages
}()

// Guard decides whether a page may render for state. When it may not, the
// returned path is where the client is sent instead.
func Guard(path string, state session.State) (string, bool) {
	path = normalizePath(path)
	level, known := pageAccess[path]
	if !known {
		return PathHome, false
	}
	switch level {
	case accessGuest:
		if state.IsAdmin {
			return PathAdmin, false
		}
	case accessSignedIn:
		if !state.IsAuthenticated {
			return PathLogin, false
		}
	case accessAdmin:
		if !state.IsAdmin {
			return PathLogin, false
		}
	}
	return "", true
}

func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return PathHome
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
