package queries

import (
	"context"
	"fmt"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-transfers/components/admin"
)

// ListInput filters a collection listing.
type ListInput struct {
	Collection string `json:"collection"`
	Status     string `json:"status,omitempty"`
	Search     string `json:"search,omitempty"`
}

// ListResult holds whichever slice matches the requested collection.
type ListResult struct {
	Collection  string             `json:"collection"`
	Total       int                `json:"total"`
	Users       []admin.User       `json:"users,omitempty"`
	Drivers     []admin.Driver     `json:"drivers,omitempty"`
	Restaurants []admin.Restaurant `json:"restaurants,omitempty"`
	Rides       []admin.Ride       `json:"rides,omitempty"`
	Orders      []admin.Order      `json:"orders,omitempty"`
	Promotions  []admin.Promotion  `json:"promotions,omitempty"`
}

type collectionService interface {
	Users() []admin.User
	Drivers() []admin.Driver
	Restaurants() []admin.Restaurant
	Rides() []admin.Ride
	Orders() []admin.Order
	Promotions() []admin.Promotion
}

// ListQuery lists a collection with optional status and text filters.
type ListQuery struct {
	service collectionService
}

// NewListQuery builds the query.
func NewListQuery(service collectionService) *ListQuery {
	return &ListQuery{service: service}
}

var _ gocommand.Querier[ListInput, ListResult] = (*ListQuery)(nil)

// Query filters the requested collection.
func (q *ListQuery) Query(_ context.Context, input ListInput) (ListResult, error) {
	result := ListResult{Collection: input.Collection}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	search := strings.ToLower(strings.TrimSpace(input.Search))

	switch input.Collection {
	case admin.CollectionUsers:
		result.Users = filter(q.service.Users(), status, search, func(u admin.User) (string, []string) {
			return u.Status, []string{u.ID, u.Name, u.NameEn, u.Email, u.Phone}
		})
		result.Total = len(result.Users)
	case admin.CollectionDrivers:
		result.Drivers = filter(q.service.Drivers(), status, search, func(d admin.Driver) (string, []string) {
			return d.Status, []string{d.ID, d.Name, d.NameEn, d.Phone, d.Plate, d.Vehicle}
		})
		result.Total = len(result.Drivers)
	case admin.CollectionRestaurants:
		result.Restaurants = filter(q.service.Restaurants(), status, search, func(r admin.Restaurant) (string, []string) {
			return r.Status, []string{r.ID, r.Name, r.NameEn, r.Cuisine}
		})
		result.Total = len(result.Restaurants)
	case admin.CollectionRides:
		result.Rides = filter(q.service.Rides(), status, search, func(r admin.Ride) (string, []string) {
			return r.Status, []string{r.ID, r.Rider, r.Driver, r.From, r.To}
		})
		result.Total = len(result.Rides)
	case admin.CollectionOrders:
		result.Orders = filter(q.service.Orders(), status, search, func(o admin.Order) (string, []string) {
			return o.Status, []string{o.ID, o.Customer, o.Restaurant}
		})
		result.Total = len(result.Orders)
	case admin.CollectionPromotions:
		result.Promotions = filter(q.service.Promotions(), status, search, func(p admin.Promotion) (string, []string) {
			return p.Status, []string{p.ID, p.Code}
		})
		result.Total = len(result.Promotions)
	default:
		return ListResult{}, fmt.Errorf("list query: %w %q", admin.ErrUnknownCollection, input.Collection)
	}
	return result, nil
}

func filter[T any](items []T, status, search string, fields func(T) (string, []string)) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		itemStatus, text := fields(item)
		if status != "" && status != "all" && itemStatus != status {
			continue
		}
		if search != "" && !matchesAny(text, search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesAny(fields []string, needle string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
