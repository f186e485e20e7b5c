package admin

import "context"

// Identifiable is implemented by every record kept in a Collection.
type Identifiable interface {
	Key() string
}

// User is a rider account as seen by operators.
type User struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	NameEn string `json:"nameEn" yaml:"name_en"`
	Email  string `json:"email" yaml:"email"`
	Phone  string `json:"phone" yaml:"phone"`
	Status string `json:"status" yaml:"status"`
	Rides  int    `json:"rides" yaml:"rides"`
	Orders int    `json:"orders" yaml:"orders"`
	Joined string `json:"joined" yaml:"joined"`
}

func (u User) Key() string { return u.ID }

// Driver is a registered driver.
type Driver struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	NameEn   string  `json:"nameEn" yaml:"name_en"`
	Phone    string  `json:"phone" yaml:"phone"`
	Vehicle  string  `json:"vehicle" yaml:"vehicle"`
	Plate    string  `json:"plate" yaml:"plate"`
	Rating   float64 `json:"rating" yaml:"rating"`
	Status   string  `json:"status" yaml:"status"`
	Verified bool    `json:"verified" yaml:"verified"`
	Trips    int     `json:"trips" yaml:"trips"`
	Earnings float64 `json:"earnings" yaml:"earnings"`
}

func (d Driver) Key() string { return d.ID }

// Restaurant is a delivery partner.
type Restaurant struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	NameEn  string  `json:"nameEn" yaml:"name_en"`
	Cuisine string  `json:"cuisine" yaml:"cuisine"`
	Status  string  `json:"status" yaml:"status"`
	Rating  float64 `json:"rating" yaml:"rating"`
	Orders  int     `json:"orders" yaml:"orders"`
	Revenue float64 `json:"revenue" yaml:"revenue"`
}

func (r Restaurant) Key() string { return r.ID }

// Ride is a single trip.
type Ride struct {
	ID     string  `json:"id" yaml:"id"`
	Rider  string  `json:"rider" yaml:"rider"`
	Driver string  `json:"driver" yaml:"driver"`
	From   string  `json:"from" yaml:"from"`
	To     string  `json:"to" yaml:"to"`
	Fare   float64 `json:"fare" yaml:"fare"`
	Status string  `json:"status" yaml:"status"`
	Date   string  `json:"date" yaml:"date"`
}

func (r Ride) Key() string { return r.ID }

// Order is a food delivery order.
type Order struct {
	ID         string  `json:"id" yaml:"id"`
	Customer   string  `json:"customer" yaml:"customer"`
	Restaurant string  `json:"restaurant" yaml:"restaurant"`
	Items      int     `json:"items" yaml:"items"`
	Total      float64 `json:"total" yaml:"total"`
	Status     string  `json:"status" yaml:"status"`
	Date       string  `json:"date" yaml:"date"`
}

func (o Order) Key() string { return o.ID }

// Promotion is a discount code.
type Promotion struct {
	ID        string  `json:"id" yaml:"id"`
	Code      string  `json:"code" yaml:"code"`
	Type      string  `json:"type" yaml:"type"`
	Value     float64 `json:"value" yaml:"value"`
	MinOrder  float64 `json:"minOrder" yaml:"min_order"`
	MaxUses   int     `json:"maxUses" yaml:"max_uses"`
	Used      int     `json:"used" yaml:"used"`
	Status    string  `json:"status" yaml:"status"`
	ExpiresAt string  `json:"expiresAt" yaml:"expires_at"`
}

func (p Promotion) Key() string { return p.ID }

// PromotionInput is the payload accepted by AddPromotion.
type PromotionInput struct {
	Code      string  `json:"code"`
	Type      string  `json:"type"`
	Value     float64 `json:"value"`
	MinOrder  float64 `json:"minOrder"`
	MaxUses   int     `json:"maxUses"`
	Status    string  `json:"status"`
	ExpiresAt string  `json:"expiresAt"`
}

// Stats are the headline dashboard numbers.
type Stats struct {
	TotalUsers        int     `json:"totalUsers" yaml:"total_users"`
	ActiveDrivers     int     `json:"activeDrivers" yaml:"active_drivers"`
	TotalRestaurants  int     `json:"totalRestaurants" yaml:"total_restaurants"`
	TotalRevenue      float64 `json:"totalRevenue" yaml:"total_revenue"`
	TodayRides        int     `json:"todayRides" yaml:"today_rides"`
	TodayOrders       int     `json:"todayOrders" yaml:"today_orders"`
	PendingOrders     int     `json:"pendingOrders" yaml:"pending_orders"`
	UsersChange       float64 `json:"usersChange" yaml:"users_change"`
	DriversChange     float64 `json:"driversChange" yaml:"drivers_change"`
	RestaurantsChange float64 `json:"restaurantsChange" yaml:"restaurants_change"`
	RevenueChange     float64 `json:"revenueChange" yaml:"revenue_change"`
}

// WeeklyPoint is one day of ride/order volume.
type WeeklyPoint struct {
	Day    string `json:"day" yaml:"day"`
	Rides  int    `json:"rides" yaml:"rides"`
	Orders int    `json:"orders" yaml:"orders"`
}

// MonthlyPoint is one month of revenue.
type MonthlyPoint struct {
	Month   string  `json:"month" yaml:"month"`
	Revenue float64 `json:"revenue" yaml:"revenue"`
}

// ChartData feeds the dashboard charts.
type ChartData struct {
	Weekly  []WeeklyPoint  `json:"weekly" yaml:"weekly"`
	Monthly []MonthlyPoint `json:"monthly" yaml:"monthly"`
}

// Admin is the signed-in operator profile.
type Admin struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Preferences are the operator UI settings.
type Preferences struct {
	Language         string `json:"language"`
	Currency         string `json:"currency"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
}

// Collection names used in change events.
const (
	CollectionUsers       = "users"
	CollectionDrivers     = "drivers"
	CollectionRestaurants = "restaurants"
	CollectionRides       = "rides"
	CollectionOrders      = "orders"
	CollectionPromotions  = "promotions"
	CollectionPreferences = "preferences"
)

// ChangeEvent describes a mutation of the store.
type ChangeEvent struct {
	Collection string `json:"collection"`
	ID         string `json:"id,omitempty"`
	Reason     string `json:"reason"`
	Actor      string `json:"actor,omitempty"`
}

// ChangeHook is notified after every successful mutation.
type ChangeHook interface {
	DataChanged(ctx context.Context, event ChangeEvent) error
}

type noopChangeHook struct{}

func (noopChangeHook) DataChanged(context.Context, ChangeEvent) error { return nil }

// Telemetry records store events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
