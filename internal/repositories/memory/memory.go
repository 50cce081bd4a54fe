// Package memory provides mutex guarded in-process stores for tests and
// DB_DRIVER=memory development runs. Values are copied in and out so callers
// never share state with the store.
package memory

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mroshb/hitched/internal/models"
	"github.com/mroshb/hitched/pkg/errors"
)

type UserStore struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	byTgID map[int64]string
}

func NewUserStore() *UserStore {
	return &UserStore{byID: map[string]*models.User{}, byTgID: map[int64]string{}}
}

func (s *UserStore) FindOrCreateByTelegram(u models.User) (*models.User, error) {
	if u.TelegramID == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "telegram id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byTgID[u.TelegramID]; ok {
		existing := s.byID[id]
		existing.Username = u.Username
		existing.FirstName = u.FirstName
		existing.UpdatedAt = time.Now().UTC()
		out := *existing
		return &out, nil
	}

	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	stored := u
	s.byID[u.ID] = &stored
	s.byTgID[u.TelegramID] = u.ID
	return &u, nil
}

func (s *UserStore) FindByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	out := *u
	return &out, nil
}

func (s *UserStore) FindByTelegramID(telegramID int64) (*models.User, error) {
	s.mu.RLock()
	id, ok := s.byTgID[telegramID]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return s.FindByID(id)
}

type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: map[string]models.Profile{}}
}

func (s *ProfileStore) Save(p *models.Profile) error {
	if p.UserID == "" {
		return errors.New(errors.ErrCodeValidation, "profile user id is required")
	}
	p.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = cloneProfile(*p)
	return nil
}

func (s *ProfileStore) FindByUserID(userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "profile not found")
	}
	out := cloneProfile(p)
	return &out, nil
}

func (s *ProfileStore) ListByGender(gender string) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Profile{}
	for _, p := range s.profiles {
		if p.Gender == gender {
			out = append(out, cloneProfile(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func cloneProfile(p models.Profile) models.Profile {
	p.Values = slices.Clone(p.Values)
	p.Lifestyle = slices.Clone(p.Lifestyle)
	p.Dealbreakers = slices.Clone(p.Dealbreakers)
	if p.Flags != nil {
		flags := make(models.FlagSet, len(p.Flags))
		for k, v := range p.Flags {
			flags[k] = v
		}
		p.Flags = flags
	}
	if p.Age != nil {
		p.Age = models.IntPtr(*p.Age)
	}
	if p.AgeRangeMin != nil {
		p.AgeRangeMin = models.IntPtr(*p.AgeRangeMin)
	}
	if p.AgeRangeMax != nil {
		p.AgeRangeMax = models.IntPtr(*p.AgeRangeMax)
	}
	if p.MaxDistanceKm != nil {
		p.MaxDistanceKm = models.IntPtr(*p.MaxDistanceKm)
	}
	if p.Extracted != nil {
		tr := *p.Extracted
		tr.Values = slices.Clone(tr.Values)
		p.Extracted = &tr
	}
	return p
}

type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]*models.Match
}

func NewMatchStore() *MatchStore {
	return &MatchStore{matches: map[string]*models.Match{}}
}

func (s *MatchStore) Create(m *models.Match) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.matches[m.ID]; exists {
		return errors.New(errors.ErrCodeAlreadyExists, "match already exists")
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

func (s *MatchStore) FindByID(id string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "match not found")
	}
	return m.Clone(), nil
}

// Update keeps the stored history so a stale copy cannot drop appended snapshots.
func (s *MatchStore) Update(m *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.matches[m.ID]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "match not found")
	}
	m.UpdatedAt = time.Now().UTC()
	next := m.Clone()
	next.History = existing.History
	next.CreatedAt = existing.CreatedAt
	s.matches[m.ID] = next
	return nil
}

func (s *MatchStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "match not found")
	}
	delete(s.matches, id)
	return nil
}

// ListForUser returns the user's matches, newest first.
func (s *MatchStore) ListForUser(userID string) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Match{}
	for _, m := range s.matches {
		if m.HasParticipant(userID) {
			out = append(out, *m.Clone())
		}
	}
	sortMatches(out, true)
	return out, nil
}

func (s *MatchStore) LatestForUser(userID string) (*models.Match, error) {
	list, _ := s.ListForUser(userID)
	if len(list) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "match not found")
	}
	return &list[0], nil
}

// ListAll returns every match, oldest first.
func (s *MatchStore) ListAll() ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, *m.Clone())
	}
	sortMatches(out, false)
	return out, nil
}

func (s *MatchStore) AppendEvaluation(matchID string, snap models.CompatibilitySnapshot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return 0, errors.New(errors.ErrCodeNotFound, "match not found")
	}
	m.History = append(slices.Clone(m.History), snap)
	return len(m.History), nil
}

func sortMatches(list []models.Match, newestFirst bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].CreatedAt, list[j].CreatedAt
		if a.Equal(b) {
			return list[i].ID < list[j].ID
		}
		if newestFirst {
			return a.After(b)
		}
		return a.Before(b)
	})
}

type TokenStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{revoked: map[string]time.Time{}}
}

func (s *TokenStore) Revoke(tokenID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[tokenID]; !ok {
		s.revoked[tokenID] = at
	}
	return nil
}

func (s *TokenStore) IsRevoked(tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}

type SafetyReportStore struct {
	mu      sync.Mutex
	nextID  uint
	reports []models.SafetyReport
}

func NewSafetyReportStore() *SafetyReportStore {
	return &SafetyReportStore{}
}

func (s *SafetyReportStore) Create(r *models.SafetyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	s.reports = append(s.reports, *r)
	return nil
}

// ListAll returns the reports, newest first.
func (s *SafetyReportStore) ListAll() ([]models.SafetyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SafetyReport, len(s.reports))
	for i, r := range s.reports {
		out[len(s.reports)-1-i] = r
	}
	return out, nil
}
