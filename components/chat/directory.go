package chat

import (
	"sort"
	"strings"
	"sync"
)

// Directory resolves participant ids.
type Directory interface {
	Lookup(id string) (Participant, bool)
}

// MemoryDirectory is a fixed in-memory participant list.
type MemoryDirectory struct {
	mu   sync.RWMutex
	byID map[string]Participant
}

// NewMemoryDirectory indexes participants by upper-cased id.
func NewMemoryDirectory(participants ...Participant) *MemoryDirectory {
	d := &MemoryDirectory{byID: make(map[string]Participant, len(participants))}
	for _, p := range participants {
		d.Add(p)
	}
	return d
}

// Add inserts or replaces a participant.
func (d *MemoryDirectory) Add(p Participant) {
	p.ID = strings.ToUpper(strings.TrimSpace(p.ID))
	if p.ID == "" {
		return
	}
	d.mu.Lock()
	d.byID[p.ID] = p
	d.mu.Unlock()
}

func (d *MemoryDirectory) Lookup(id string) (Participant, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byID[strings.ToUpper(strings.TrimSpace(id))]
	return p, ok
}

// Participants lists everyone sorted by id.
func (d *MemoryDirectory) Participants() []Participant {
	d.mu.RLock()
	out := make([]Participant, 0, len(d.byID))
	for _, p := range d.byID {
		out = append(out, p)
	}
	d.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultParticipants is the mock rider directory. TV12345 is the signed-in mock rider.
func DefaultParticipants() []Participant {
	return []Participant{
		{ID: "TV12345", Name: "أحمد محمد", NameEn: "Ahmed Mohammed", Status: "online"},
		{ID: "TV23456", Name: "سارة علي", NameEn: "Sara Ali", Status: "online"},
		{ID: "TV34567", Name: "خالد عبدالله", NameEn: "Khalid Abdullah", Status: "offline"},
		{ID: "TV45678", Name: "نورة سعد", NameEn: "Noura Saad", Status: "away"},
	}
}
