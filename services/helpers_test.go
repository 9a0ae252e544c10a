package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/OraComigo/models"
	"github.com/OraComigo/storage"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(date string) *fixedClock {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		panic(err)
	}
	return &fixedClock{now: d.Add(12 * time.Hour)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Today() string {
	return c.Now().Format(DateLayout)
}

func (c *fixedClock) advanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

type sequentialIDs struct {
	mu   sync.Mutex
	next map[string]int
}

func (g *sequentialIDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == nil {
		g.next = make(map[string]int)
	}
	g.next[prefix]++
	return fmt.Sprintf("%s-%d", prefix, g.next[prefix])
}

type testStore struct {
	*Store
	clock   *fixedClock
	backend *storage.MemoryBackend
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	clock := newFixedClock("2024-05-10")
	backend := storage.NewMemoryBackend()
	s := NewStore(Options{
		Backend:      backend,
		Clock:        clock,
		IDs:          &sequentialIDs{},
		EditorEmails: []string{"editor@oracomigo.com"},
	})
	return &testStore{Store: s, clock: clock, backend: backend}
}

func (ts *testStore) seedUser(id, name string) *models.User {
	u := &models.User{
		User_ID: id,
		Name:    name,
		Email:   id + "@example.com",
		City:    "Piracicaba",
	}
	normalizeUser(u)
	ts.users[id] = u
	ts.userOrder = append(ts.userOrder, id)
	return u
}

func (ts *testStore) seedEditor(id, name string) *models.User {
	u := ts.seedUser(id, name)
	u.Role = models.RoleEditor
	return u
}

func (ts *testStore) seedPrayer(id, title string) *models.Prayer {
	p := &models.Prayer{
		Prayer_ID: id,
		Title:     title,
		Text:      "Pai Nosso, que estais no céu...",
		Category:  models.CategoryDiarias,
		Tags:      []string{},
		Status:    models.PrayerStatusPublished,
	}
	ts.prayers[id] = p
	ts.prayerOrder = append(ts.prayerOrder, id)
	return p
}

// seedCirculo creates a circle led by leaderID with the given extra members.
func (ts *testStore) seedCirculo(id, leaderID string, members ...string) *models.Circulo {
	c := &models.Circulo{
		Circulo_ID:    id,
		Name:          "Círculo " + id,
		Leader_ID:     leaderID,
		Moderator_IDs: []string{leaderID},
		Member_Count:  1 + len(members),
		Posts:         make(map[string]*models.Post),
	}
	ts.circulos[id] = c
	ts.circuloOrder = append(ts.circuloOrder, id)

	for _, userID := range append([]string{leaderID}, members...) {
		u := ts.users[userID]
		u.Joined_Circulo_IDs = append(u.Joined_Circulo_IDs, id)
	}
	return c
}
