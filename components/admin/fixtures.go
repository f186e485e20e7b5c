package admin

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	fixturesVersionV1 = "1"
	// FixturesVersion is the current fixture document format.
	FixturesVersion = fixturesVersionV1
)

//go:embed fixtures/mock.yaml
var embeddedFixtures []byte

// Fixtures is the mock data document that seeds a Store.
type Fixtures struct {
	Version     string       `yaml:"version"`
	Users       []User       `yaml:"users"`
	Drivers     []Driver     `yaml:"drivers"`
	Restaurants []Restaurant `yaml:"restaurants"`
	Rides       []Ride       `yaml:"rides"`
	Orders      []Order      `yaml:"orders"`
	Promotions  []Promotion  `yaml:"promotions"`
	Stats       Stats        `yaml:"stats"`
	Charts      ChartData    `yaml:"charts"`
	Source      string       `yaml:"-"`
}

// DefaultFixtures decodes the embedded mock data.
func DefaultFixtures() (*Fixtures, error) {
	doc, err := DecodeFixtures(bytes.NewReader(embeddedFixtures))
	if err != nil {
		return nil, err
	}
	doc.Source = "embedded"
	return doc, nil
}

// ReadFixtures loads a fixture document from disk.
func ReadFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("admin: open fixtures %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeFixtures(f)
	if err != nil {
		return nil, fmt.Errorf("admin: decode fixtures %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeFixtures reads a fixture document from any reader.
func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc Fixtures
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("admin: fixtures document is empty")
		}
		return nil, fmt.Errorf("admin: parse fixtures: %w", err)
	}
	if doc.Version == "" {
		doc.Version = fixturesVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks versioning, unique ids and known statuses.
func (doc *Fixtures) Validate() error {
	if doc.Version != fixturesVersionV1 {
		return fmt.Errorf("admin: unsupported fixtures version %q", doc.Version)
	}
	checks := []struct {
		collection string
		ids        []string
		statuses   []string
	}{
		{CollectionUsers, keys(doc.Users), statusesOf(doc.Users, func(u User) string { return u.Status })},
		{CollectionDrivers, keys(doc.Drivers), statusesOf(doc.Drivers, func(d Driver) string { return d.Status })},
		{CollectionRestaurants, keys(doc.Restaurants), statusesOf(doc.Restaurants, func(r Restaurant) string { return r.Status })},
		{CollectionRides, keys(doc.Rides), nil},
		{CollectionOrders, keys(doc.Orders), nil},
		{CollectionPromotions, keys(doc.Promotions), statusesOf(doc.Promotions, func(p Promotion) string { return p.Status })},
	}
	for _, check := range checks {
		seen := make(map[string]struct{}, len(check.ids))
		for idx, id := range check.ids {
			if id == "" {
				return fmt.Errorf("admin: %s entry %d is missing id", check.collection, idx)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("admin: %s duplicates id %s", check.collection, id)
			}
			seen[id] = struct{}{}
		}
		for _, status := range check.statuses {
			if err := validateStatus(check.collection, status); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary counts the records per collection.
func (doc *Fixtures) Summary() map[string]int {
	return map[string]int{
		CollectionUsers:       len(doc.Users),
		CollectionDrivers:     len(doc.Drivers),
		CollectionRestaurants: len(doc.Restaurants),
		CollectionRides:       len(doc.Rides),
		CollectionOrders:      len(doc.Orders),
		CollectionPromotions:  len(doc.Promotions),
	}
}

func keys[T Identifiable](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Key()
	}
	return out
}

func statusesOf[T any](items []T, status func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = status(item)
	}
	return out
}
