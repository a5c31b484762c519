package devserver

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/journal/internal/client/models"
	"github.com/dmitrijs2005/journal/internal/common"
)

// Store is the in-memory backing state: users, journal entries and metric
// sets, all scoped per user. It exists to unblock client development and
// integration tests; nothing survives a restart.
type Store struct {
	mu      sync.RWMutex
	users   map[string]user                             // username -> user
	entries map[string]map[string]models.Entry          // userID -> entryID -> entry
	metrics map[string]map[models.Date]models.MetricSet // userID -> date -> set
	refresh map[string]refreshToken                     // token -> state
}

type user struct {
	ID           string
	Username     string
	PasswordHash []byte
}

type refreshToken struct {
	UserID    string
	ExpiresAt time.Time
	Used      bool
}

func NewStore() *Store {
	return &Store{
		users:   map[string]user{},
		entries: map[string]map[string]models.Entry{},
		metrics: map[string]map[models.Date]models.MetricSet{},
		refresh: map[string]refreshToken{},
	}
}

// AddUser registers a user with a bcrypt-hashed password.
func (s *Store) AddUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return common.ErrorAlreadyExists
	}
	s.users[username] = user{ID: uuid.NewString(), Username: username, PasswordHash: hash}
	return nil
}

// Authenticate verifies the password and returns the user id.
func (s *Store) Authenticate(username, password string) (string, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return "", common.ErrorUnauthorized
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return "", common.ErrorUnauthorized
	}
	return u.ID, nil
}

// IssueRefreshToken records a single-use refresh token for the user.
func (s *Store) IssueRefreshToken(userID string, ttl time.Duration) (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.refresh[token] = refreshToken{UserID: userID, ExpiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return token, nil
}

// ConsumeRefreshToken validates and spends a refresh token, returning the
// user id it was issued to. A token is good exactly once; replay, expiry and
// unknown tokens all fail the same way.
func (s *Store) ConsumeRefreshToken(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.refresh[token]
	if !ok || rt.Used || time.Now().After(rt.ExpiresAt) {
		return "", common.ErrRefreshTokenExpired
	}
	rt.Used = true
	s.refresh[token] = rt
	return rt.UserID, nil
}

// ListEntries returns the user's entries for one date, ordered by WrittenAt.
func (s *Store) ListEntries(userID string, date models.Date) []models.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Entry
	for _, e := range s.entries[userID] {
		if e.Date == date {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WrittenAt.Equal(out[j].WrittenAt) {
			return out[i].WrittenAt.Before(out[j].WrittenAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// EntryDates returns which days of the given month have at least one entry.
func (s *Store) EntryDates(userID string, year int, month time.Month) []models.CalendarDay {
	s.mu.RLock()
	has := map[models.Date]bool{}
	for _, e := range s.entries[userID] {
		has[e.Date] = true
	}
	s.mu.RUnlock()

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := make([]models.CalendarDay, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		date := models.DateOf(d)
		days = append(days, models.CalendarDay{Date: date, HasEntry: has[date]})
	}
	return days
}

// CreateEntry mints an id and stores the entry with WrittenAt = now.
func (s *Store) CreateEntry(userID string, date models.Date, content string) models.Entry {
	now := time.Now().UTC()
	e := models.Entry{
		ID:        uuid.NewString(),
		Date:      date,
		Content:   content,
		WrittenAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	if s.entries[userID] == nil {
		s.entries[userID] = map[string]models.Entry{}
	}
	s.entries[userID][e.ID] = e
	s.mu.Unlock()
	return e
}

// UpdateEntry applies the patch and returns the updated entry.
func (s *Store) UpdateEntry(userID, id string, patch models.EntryPatch) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID][id]
	if !ok {
		return models.Entry{}, common.ErrorNotFound
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.WrittenAt != nil {
		e.WrittenAt = *patch.WrittenAt
	}
	e.UpdatedAt = time.Now().UTC()
	s.entries[userID][id] = e
	return e, nil
}

func (s *Store) DeleteEntry(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[userID][id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.entries[userID], id)
	return nil
}

// GetMetrics returns the metric set for one date.
func (s *Store) GetMetrics(userID string, date models.Date) (models.MetricSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metrics[userID][date]
	if !ok {
		return models.MetricSet{}, common.ErrorNotFound
	}
	return m, nil
}

// ListMetrics returns the sets in [from, to], ascending by date.
func (s *Store) ListMetrics(userID string, from, to models.Date) []models.MetricSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MetricSet
	for date, m := range s.metrics[userID] {
		if date >= from && date <= to {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// UpsertMetrics replaces the whole set for the date. The client always sends
// the full merged object, so no field-level merge happens here.
func (s *Store) UpsertMetrics(userID string, m models.MetricSet) models.MetricSet {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metrics[userID] == nil {
		s.metrics[userID] = map[models.Date]models.MetricSet{}
	}
	if prev, ok := s.metrics[userID][m.Date]; ok {
		m.CreatedAt = prev.CreatedAt
	} else {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	s.metrics[userID][m.Date] = m
	return m
}
