package profile

import (
	"sync"
	"time"
)

// Store is the profile table used by the prompt router.
// Every mutating method performs an implicit GetOrCreate and returns a copy
// of the profile after the change.
type Store interface {
	GetOrCreate(name string) Profile
	AppendSymptom(name string, flags SymptomFlags) Profile
	AppendPeriodLog(name string, entry PeriodLog) Profile
	SetLifestyle(name string, prefs Lifestyle) Profile
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// MemoryStore keeps profiles in a process-local map.
type MemoryStore struct {
	clock Clock

	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewMemoryStore creates an empty MemoryStore using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(realClock{})
}

// NewMemoryStoreWithClock creates an empty MemoryStore with a custom clock (for testing).
func NewMemoryStoreWithClock(clock Clock) *MemoryStore {
	return &MemoryStore{
		clock:    clock,
		profiles: make(map[string]*Profile),
	}
}

// GetOrCreate returns the profile for name, creating an empty one on first reference.
func (s *MemoryStore) GetOrCreate(name string) Profile {
	// Fast path: read lock for an existing profile.
	s.mu.RLock()
	if p, ok := s.profiles[name]; ok {
		cp := deepCopyProfile(p)
		s.mu.RUnlock()
		return cp
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopyProfile(s.getOrCreateLocked(name))
}

// AppendSymptom records a symptom checker submission with the current time.
func (s *MemoryStore) AppendSymptom(name string, flags SymptomFlags) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.getOrCreateLocked(name)
	p.SymptomHistory = append(p.SymptomHistory, SymptomRecord{
		Date:     s.clock.Now(),
		Symptoms: flags,
	})
	return deepCopyProfile(p)
}

// AppendPeriodLog appends entry to the end of the period log.
func (s *MemoryStore) AppendPeriodLog(name string, entry PeriodLog) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.getOrCreateLocked(name)
	p.PeriodLogs = append(p.PeriodLogs, entry)
	return deepCopyProfile(p)
}

// SetLifestyle replaces the stored lifestyle answers. Last write wins.
func (s *MemoryStore) SetLifestyle(name string, prefs Lifestyle) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.getOrCreateLocked(name)
	p.Lifestyle = prefs
	return deepCopyProfile(p)
}

// Count returns the number of profiles held.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// getOrCreateLocked must be called with s.mu held for writing.
func (s *MemoryStore) getOrCreateLocked(name string) *Profile {
	if p, ok := s.profiles[name]; ok {
		return p
	}
	p := &Profile{
		Name:           name,
		SymptomHistory: []SymptomRecord{},
		PeriodLogs:     []PeriodLog{},
		MoodScores:     []int{},
	}
	s.profiles[name] = p
	return p
}

func deepCopyProfile(p *Profile) Profile {
	if p == nil {
		return Profile{}
	}
	cp := *p

	if p.SymptomHistory != nil {
		cp.SymptomHistory = make([]SymptomRecord, len(p.SymptomHistory))
		copy(cp.SymptomHistory, p.SymptomHistory)
	}
	if p.PeriodLogs != nil {
		cp.PeriodLogs = make([]PeriodLog, len(p.PeriodLogs))
		copy(cp.PeriodLogs, p.PeriodLogs)
	}
	if p.MoodScores != nil {
		cp.MoodScores = make([]int, len(p.MoodScores))
		copy(cp.MoodScores, p.MoodScores)
	}
	if p.LastInteraction != nil {
		t := *p.LastInteraction
		cp.LastInteraction = &t
	}
	return cp
}
