package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/OraComigo/metrics"
	"github.com/OraComigo/models"
	"github.com/OraComigo/storage"
)

const DefaultGracesPerPrayer = 5

type Options struct {
	Backend         storage.Backend
	Clock           Clock
	IDs             IDGenerator
	GracesPerPrayer int
	EditorEmails    []string
}

// Store is the handle every core operation runs against. Operations that only
// touch existing entities hold the read side of mu plus the entity locks they
// need; inserting entities and snapshotting hold the write side.
type Store struct {
	mu    sync.RWMutex
	locks *keyedMutex

	users        map[string]*models.User
	userOrder    []string
	prayers      map[string]*models.Prayer
	prayerOrder  []string // newest first
	circulos     map[string]*models.Circulo
	circuloOrder []string
	credentials  map[string]string
	pushTokens   map[string][]models.PushToken
	resetCodes   map[string]*models.PasswordResetCode
	inbox        map[string][]*models.Notification // newest first

	backend         storage.Backend
	clock           Clock
	ids             IDGenerator
	gracesPerPrayer int
	editorEmails    []string

	saveMu   sync.Mutex
	seq      uint64
	savedSeq uint64
}

func NewStore(opts Options) *Store {
	s := &Store{
		locks:           newKeyedMutex(),
		backend:         opts.Backend,
		clock:           opts.Clock,
		ids:             opts.IDs,
		gracesPerPrayer: opts.GracesPerPrayer,
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.ids == nil {
		s.ids = UUIDGenerator{}
	}
	if s.gracesPerPrayer <= 0 {
		s.gracesPerPrayer = DefaultGracesPerPrayer
	}
	for _, email := range opts.EditorEmails {
		if email = normalizeEmail(email); email != "" {
			s.editorEmails = append(s.editorEmails, email)
		}
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = make(map[string]*models.User)
	s.userOrder = nil
	s.prayers = make(map[string]*models.Prayer)
	s.prayerOrder = nil
	s.circulos = make(map[string]*models.Circulo)
	s.circuloOrder = nil
	s.credentials = make(map[string]string)
	s.pushTokens = make(map[string][]models.PushToken)
	s.resetCodes = make(map[string]*models.PasswordResetCode)
	s.inbox = make(map[string][]*models.Notification)
}

// Load replaces the in-memory state with the backend's snapshot. A backend with
// no snapshot yields an empty store.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	data, err := s.backend.Load(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		log.Info().Msg("No snapshot found, starting with an empty store")
		return nil
	}
	if err != nil {
		return err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Version > models.SnapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, models.SnapshotVersion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	for _, u := range snap.Users {
		if u == nil || u.User_ID == "" {
			continue
		}
		normalizeUser(u)
		s.users[u.User_ID] = u
		s.userOrder = append(s.userOrder, u.User_ID)
	}
	for _, p := range snap.Prayers {
		if p == nil || p.Prayer_ID == "" {
			continue
		}
		if p.Status == "" {
			p.Status = models.PrayerStatusPublished
		}
		s.prayers[p.Prayer_ID] = p
		s.prayerOrder = append(s.prayerOrder, p.Prayer_ID)
	}
	for _, c := range snap.Circulos {
		if c == nil || c.Circulo_ID == "" {
			continue
		}
		if c.Posts == nil {
			c.Posts = make(map[string]*models.Post)
		}
		s.circulos[c.Circulo_ID] = c
		s.circuloOrder = append(s.circuloOrder, c.Circulo_ID)
	}
	for id, hash := range snap.Credentials {
		s.credentials[id] = hash
	}
	for id, tokens := range snap.Push_Tokens {
		s.pushTokens[id] = tokens
	}
	for id, notifications := range snap.Notifications {
		s.inbox[id] = notifications
	}

	log.Info().
		Int("users", len(s.users)).
		Int("prayers", len(s.prayers)).
		Int("circulos", len(s.circulos)).
		Msg("Snapshot loaded")
	return nil
}

// Save writes the current state to the backend. Saves are serialised and a
// snapshot older than the last one written is dropped.
func (s *Store) Save(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	data, err := json.Marshal(s.snapshotLocked())
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if seq <= s.savedSeq {
		return nil
	}
	if err := s.backend.Save(ctx, data); err != nil {
		metrics.RecordSnapshotSave(false)
		log.Error().Err(err).Uint64("seq", seq).Msg("Failed to save snapshot")
		return err
	}
	metrics.RecordSnapshotSave(true)
	s.savedSeq = seq
	return nil
}

func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

func (s *Store) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		Version:       models.SnapshotVersion,
		Users:         make([]*models.User, 0, len(s.userOrder)),
		Prayers:       make([]*models.Prayer, 0, len(s.prayerOrder)),
		Circulos:      make([]*models.Circulo, 0, len(s.circuloOrder)),
		Credentials:   s.credentials,
		Push_Tokens:   s.pushTokens,
		Notifications: s.inbox,
	}
	for _, id := range s.userOrder {
		snap.Users = append(snap.Users, s.users[id])
	}
	for _, id := range s.prayerOrder {
		snap.Prayers = append(snap.Prayers, s.prayers[id])
	}
	for _, id := range s.circuloOrder {
		snap.Circulos = append(snap.Circulos, s.circulos[id])
	}
	return snap
}

// withEntities runs fn under the read side of mu and the given entity locks.
func (s *Store) withEntities(keys []string, fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unlock := s.locks.lock(keys...)
	defer unlock()

	return fn()
}

// exclusive runs fn with the whole store locked.
func (s *Store) exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// mutate runs fn like withEntities and saves the snapshot when fn succeeds.
func (s *Store) mutate(ctx context.Context, keys []string, fn func() error) error {
	if err := s.withEntities(keys, fn); err != nil {
		return err
	}
	return s.Save(ctx)
}

// insert runs fn like exclusive and saves the snapshot when fn succeeds.
func (s *Store) insert(ctx context.Context, fn func() error) error {
	if err := s.exclusive(fn); err != nil {
		return err
	}
	return s.Save(ctx)
}

func (s *Store) userLocked(id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return u, nil
}

func (s *Store) prayerLocked(id string) (*models.Prayer, error) {
	p, ok := s.prayers[id]
	if !ok {
		return nil, fmt.Errorf("prayer %s: %w", id, models.ErrNotFound)
	}
	return p, nil
}

func (s *Store) circuloLocked(id string) (*models.Circulo, error) {
	c, ok := s.circulos[id]
	if !ok {
		return nil, fmt.Errorf("circulo %s: %w", id, models.ErrNotFound)
	}
	return c, nil
}

func normalizeUser(u *models.User) {
	if u.History == nil {
		u.History = make(map[string]models.DayCompletion)
	}
	if u.Favorite_Prayer_IDs == nil {
		u.Favorite_Prayer_IDs = []string{}
	}
	if u.Joined_Circulo_IDs == nil {
		u.Joined_Circulo_IDs = []string{}
	}
	if u.Schedule == nil {
		u.Schedule = []models.PrayerSchedule{}
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.Level = models.LevelFor(u.Graces)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(v string) bool { return v == id })
}
