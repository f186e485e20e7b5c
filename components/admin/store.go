package admin

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-transfers/pkg/activity"
)

var (
	ErrInvalidCurrency    = errors.New("admin: invalid currency")
	ErrInvalidCredentials = errors.New("admin: invalid credentials")
)

const (
	defaultAdminEmail    = "admin@transfers.com"
	defaultAdminPassword = "admin123"
	defaultAdminName     = "مدير النظام"
	superAdminRole       = "super_admin"

	languageArabic  = "ar"
	languageEnglish = "en"
	defaultCurrency = "SAR"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Credentials is the operator login pair.
type Credentials struct {
	Email    string
	Password string
}

// Options configures a Store.
type Options struct {
	Fixtures    *Fixtures
	Credentials Credentials
	Validator   PromotionValidator
	ChangeHook  ChangeHook
	Telemetry   Telemetry
	Activity    *activity.Emitter
	Preferences Preferences
}

// Store is the process-wide operator data store. Mutations replace records by id.
type Store struct {
	mu          sync.RWMutex
	creds       Credentials
	admin       *Admin
	prefs       Preferences
	users       *Collection[User]
	drivers     *Collection[Driver]
	restaurants *Collection[Restaurant]
	rides       *Collection[Ride]
	orders      *Collection[Order]
	promotions  *Collection[Promotion]
	stats       Stats
	charts      ChartData

	validator PromotionValidator
	hook      ChangeHook
	telemetry Telemetry
	activity  *activity.Emitter
}

// NewStore seeds a store from opts.Fixtures, or the embedded fixtures when nil.
func NewStore(opts Options) (*Store, error) {
	doc := opts.Fixtures
	if doc == nil {
		var err error
		if doc, err = DefaultFixtures(); err != nil {
			return nil, err
		}
	}
	s := &Store{
		creds:     opts.Credentials,
		prefs:     opts.Preferences,
		stats:     doc.Stats,
		charts:    cloneCharts(doc.Charts),
		validator: opts.Validator,
		hook:      opts.ChangeHook,
		telemetry: normalizeTelemetry(opts.Telemetry),
		activity:  opts.Activity,
	}
	if s.creds.Email == "" {
		s.creds.Email = defaultAdminEmail
	}
	if s.creds.Password == "" {
		s.creds.Password = defaultAdminPassword
	}
	if s.prefs.Language == "" {
		s.prefs.Language = languageArabic
	}
	if s.prefs.Currency == "" {
		s.prefs.Currency = defaultCurrency
	}
	if s.validator == nil {
		s.validator = NewSchemaPromotionValidator()
	}
	if s.hook == nil {
		s.hook = noopChangeHook{}
	}

	var err error
	if s.users, err = NewCollection(doc.Users); err != nil {
		return nil, fmt.Errorf("admin: seed users: %w", err)
	}
	if s.drivers, err = NewCollection(doc.Drivers); err != nil {
		return nil, fmt.Errorf("admin: seed drivers: %w", err)
	}
	if s.restaurants, err = NewCollection(doc.Restaurants); err != nil {
		return nil, fmt.Errorf("admin: seed restaurants: %w", err)
	}
	if s.rides, err = NewCollection(doc.Rides); err != nil {
		return nil, fmt.Errorf("admin: seed rides: %w", err)
	}
	if s.orders, err = NewCollection(doc.Orders); err != nil {
		return nil, fmt.Errorf("admin: seed orders: %w", err)
	}
	if s.promotions, err = NewCollection(doc.Promotions); err != nil {
		return nil, fmt.Errorf("admin: seed promotions: %w", err)
	}
	return s, nil
}

// Login signs the operator in when email and password match the configured pair.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	s.mu.Lock()
	ok := email == s.creds.Email && password == s.creds.Password
	if ok {
		s.admin = &Admin{Name: defaultAdminName, Email: email, Role: superAdminRole}
	}
	s.mu.Unlock()

	s.telemetry.Record(ctx, "admin.login", map[string]any{"email": email, "success": ok})
	if ok {
		s.emit(ctx, activity.Event{Verb: "admin.login", ActorID: email, ObjectType: "admin", ObjectID: email})
	}
	return ok
}

// Logout clears the operator session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	actor := s.actorLocked()
	s.admin = nil
	s.mu.Unlock()
	s.telemetry.Record(ctx, "admin.logout", map[string]any{"actor": actor})
}

// IsAuthenticated reports whether an operator is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin != nil
}

// Admin returns the signed-in operator.
func (s *Store) Admin() (Admin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin == nil {
		return Admin{}, false
	}
	return *s.admin, true
}

// Preferences returns the operator UI settings.
func (s *Store) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *Store) ToggleSidebar(ctx context.Context) Preferences {
	return s.updatePreferences(ctx, "sidebar", func(p *Preferences) {
		p.SidebarCollapsed = !p.SidebarCollapsed
	})
}

// ToggleLanguage flips between Arabic and English.
func (s *Store) ToggleLanguage(ctx context.Context) Preferences {
	return s.updatePreferences(ctx, "language", func(p *Preferences) {
		if p.Language == languageArabic {
			p.Language = languageEnglish
		} else {
			p.Language = languageArabic
		}
	})
}

// SetCurrency stores an ISO-4217 currency code.
func (s *Store) SetCurrency(ctx context.Context, code string) (Preferences, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(code) {
		return s.Preferences(), fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return s.updatePreferences(ctx, "currency", func(p *Preferences) {
		p.Currency = code
	}), nil
}

func (s *Store) updatePreferences(ctx context.Context, reason string, fn func(*Preferences)) Preferences {
	s.mu.Lock()
	fn(&s.prefs)
	prefs := s.prefs
	actor := s.actorLocked()
	s.mu.Unlock()
	s.changed(ctx, ChangeEvent{Collection: CollectionPreferences, Reason: reason, Actor: actor}, nil)
	return prefs
}

// UpdateUserStatus sets the status of a user.
func (s *Store) UpdateUserStatus(ctx context.Context, id, status string) (User, error) {
	status = normalizeStatus(status)
	if err := validateStatus(CollectionUsers, status); err != nil {
		return User{}, err
	}
	s.mu.Lock()
	user, err := s.users.Replace(id, func(u User) User {
		u.Status = status
		return u
	})
	actor := s.actorLocked()
	s.mu.Unlock()
	if err != nil {
		return User{}, err
	}
	s.changed(ctx, ChangeEvent{Collection: CollectionUsers, ID: id, Reason: "status", Actor: actor},
		map[string]any{"status": status})
	return user, nil
}

// UpdateDriverStatus sets the status of a driver.
func (s *Store) UpdateDriverStatus(ctx context.Context, id, status string) (Driver, error) {
	status = normalizeStatus(status)
	if err := validateStatus(CollectionDrivers, status); err != nil {
		return Driver{}, err
	}
	s.mu.Lock()
	driver, err := s.drivers.Replace(id, func(d Driver) Driver {
		d.Status = status
		return d
	})
	actor := s.actorLocked()
	s.mu.Unlock()
	if err != nil {
		return Driver{}, err
	}
	s.changed(ctx, ChangeEvent{Collection: CollectionDrivers, ID: id, Reason: "status", Actor: actor},
		map[string]any{"status": status})
	return driver, nil
}

// VerifyDriver marks a driver verified. The status is left as it was.
func (s *Store) VerifyDriver(ctx context.Context, id string) (Driver, error) {
	s.mu.Lock()
	driver, err := s.drivers.Replace(id, func(d Driver) Driver {
		d.Verified = true
		return d
	})
	actor := s.actorLocked()
	s.mu.Unlock()
	if err != nil {
		return Driver{}, err
	}
	s.changed(ctx, ChangeEvent{Collection: CollectionDrivers, ID: id, Reason: "verify", Actor: actor},
		map[string]any{"verified": true})
	return driver, nil
}

// UpdateRestaurantStatus sets the status of a restaurant.
func (s *Store) UpdateRestaurantStatus(ctx context.Context, id, status string) (Restaurant, error) {
	status = normalizeStatus(status)
	if err := validateStatus(CollectionRestaurants, status); err != nil {
		return Restaurant{}, err
	}
	s.mu.Lock()
	restaurant, err := s.restaurants.Replace(id, func(r Restaurant) Restaurant {
		r.Status = status
		return r
	})
	actor := s.actorLocked()
	s.mu.Unlock()
	if err != nil {
		return Restaurant{}, err
	}
	s.changed(ctx, ChangeEvent{Collection: CollectionRestaurants, ID: id, Reason: "status", Actor: actor},
		map[string]any{"status": status})
	return restaurant, nil
}

// AddPromotion validates input and appends it as P00{n+1} with no uses.
func (s *Store) AddPromotion(ctx context.Context, input PromotionInput) (Promotion, error) {
	input = normalizePromotionInput(input)
	if err := s.validator.Validate(input); err != nil {
		return Promotion{}, err
	}
	if input.Status == "" {
		input.Status = "active"
	}

	s.mu.Lock()
	promo := Promotion{
		ID:        s.nextPromotionIDLocked(),
		Code:      input.Code,
		Type:      input.Type,
		Value:     input.Value,
		MinOrder:  input.MinOrder,
		MaxUses:   input.MaxUses,
		Used:      0,
		Status:    input.Status,
		ExpiresAt: input.ExpiresAt,
	}
	err := s.promotions.Append(promo)
	actor := s.actorLocked()
	s.mu.Unlock()
	if err != nil {
		return Promotion{}, err
	}
	s.changed(ctx, ChangeEvent{Collection: CollectionPromotions, ID: promo.ID, Reason: "add", Actor: actor},
		map[string]any{"code": promo.Code, "type": promo.Type, "value": promo.Value})
	return promo, nil
}

// nextPromotionIDLocked follows the P00{n+1} scheme and skips ids already taken.
func (s *Store) nextPromotionIDLocked() string {
	for n := s.promotions.Len() + 1; ; n++ {
		id := fmt.Sprintf("P00%d", n)
		if _, taken := s.promotions.Get(id); !taken {
			return id
		}
	}
}

// UpdatePromotionStatus sets the status of a promotion.
func (s *Store) UpdatePromotionStatus(ctx context.Context, id, status string) (Promotion, error) {
	status = normalizeStatus(status)
	if err := validateStatus(CollectionPromotions, status); err != nil {
		return Promotion{}, err
	}
	s.mu.Lock()
	promo, err := s.promotions.Replace(id, func(p Promotion) Promotion {
		p.Status = status
		return p
	})
	actor := s.actorLocked()
	s.mu.Unlock()
	if err != nil {
		return Promotion{}, err
	}
	s.changed(ctx, ChangeEvent{Collection: CollectionPromotions, ID: id, Reason: "status", Actor: actor},
		map[string]any{"status": status})
	return promo, nil
}

func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.All()
}

func (s *Store) Drivers() []Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drivers.All()
}

func (s *Store) Restaurants() []Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restaurants.All()
}

func (s *Store) Rides() []Ride {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rides.All()
}

func (s *Store) Orders() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders.All()
}

func (s *Store) Promotions() []Promotion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promotions.All()
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Store) ChartData() ChartData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCharts(s.charts)
}

func (s *Store) FindUser(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.users, id)
}

func (s *Store) FindDriver(id string) (Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.drivers, id)
}

func (s *Store) FindRestaurant(id string) (Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.restaurants, id)
}

func (s *Store) FindRide(id string) (Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.rides, id)
}

func (s *Store) FindOrder(id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.orders, id)
}

func (s *Store) FindPromotion(id string) (Promotion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.promotions, id)
}

func find[T Identifiable](c *Collection[T], id string) (T, error) {
	item, ok := c.Get(id)
	if !ok {
		return item, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

func (s *Store) actorLocked() string {
	if s.admin == nil {
		return ""
	}
	return s.admin.Email
}

// changed fans a mutation out to the hook, telemetry and activity.
// Hook and activity failures are reported through telemetry only; the
// mutation has already been applied.
func (s *Store) changed(ctx context.Context, evt ChangeEvent, meta map[string]any) {
	payload := map[string]any{
		"collection": evt.Collection,
		"id":         evt.ID,
		"reason":     evt.Reason,
	}
	if err := s.hook.DataChanged(ctx, evt); err != nil {
		payload["hook_error"] = err.Error()
	}
	if err := s.emit(ctx, activity.Event{
		Verb:       singular(evt.Collection) + "." + evt.Reason,
		ActorID:    evt.Actor,
		ObjectType: singular(evt.Collection),
		ObjectID:   evt.ID,
		Metadata:   meta,
	}); err != nil {
		payload["activity_error"] = err.Error()
	}
	s.telemetry.Record(ctx, "admin.changed", payload)
}

func (s *Store) emit(ctx context.Context, evt activity.Event) error {
	if s.activity == nil {
		return nil
	}
	return s.activity.Emit(ctx, evt)
}

func singular(collection string) string {
	switch collection {
	case CollectionPreferences:
		return "preference"
	default:
		return strings.TrimSuffix(collection, "s")
	}
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func cloneCharts(c ChartData) ChartData {
	return ChartData{
		Weekly:  append([]WeeklyPoint(nil), c.Weekly...),
		Monthly: append([]MonthlyPoint(nil), c.Monthly...),
	}
}
