package admin

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidStatus = errors.New("admin: invalid status")

var allowedStatuses = map[string]map[string]bool{
	CollectionUsers:       {"active": true, "suspended": true, "banned": true},
	CollectionDrivers:     {"active": true, "offline": true, "suspended": true, "pending": true},
	CollectionRestaurants: {"open": true, "closed": true, "suspended": true, "pending": true},
	CollectionPromotions:  {"active": true, "paused": true, "expired": true},
}

func validateStatus(collection, status string) error {
	allowed, ok := allowedStatuses[collection]
	if !ok {
		return nil
	}
	if !allowed[status] {
		return fmt.Errorf("%w: %q for %s", ErrInvalidStatus, status, collection)
	}
	return nil
}

// Statuses lists the statuses a collection accepts. Collections without a
// status workflow return nil.
func Statuses(collection string) []string {
	allowed := allowedStatuses[collection]
	if len(allowed) == 0 {
		return nil
	}
	out := make([]string, 0, len(allowed))
	for status := range allowed {
		out = append(out, status)
	}
	sort.Strings(out)
	return out
}
