// Package memstore keeps every collection in process memory. It backs the
// handler tests and STORE_DRIVER=memory for local runs without a database.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	meals    map[string]*models.Meal
	workouts map[string]*models.Workout
	posts    map[string]*models.Post
	goals    map[string]*models.Goal // keyed by owner
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		meals:    make(map[string]*models.Meal),
		workouts: make(map[string]*models.Workout),
		posts:    make(map[string]*models.Post),
		goals:    make(map[string]*models.Goal),
	}
}

func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match *models.User
	for _, u := range s.users {
		if u.Username == username {
			match = u
			break
		}
		if strings.EqualFold(u.Username, username) {
			match = u
		}
	}
	if match == nil {
		return nil, store.ErrNotFound
	}
	cp := *match
	return &cp, nil
}

func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetAuthors(ctx context.Context, ids []string) (map[string]models.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Author, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = models.Author{FullName: u.FullName, Username: u.Username}
		}
	}
	return out, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// --- meals ---

func (s *Store) CreateMeal(ctx context.Context, m *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = uuid.NewString()
	cp := *m
	s.meals[m.ID] = &cp
	return nil
}

func (s *Store) ListMeals(ctx context.Context, owner string, window *store.TimeRange) ([]models.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Meal, 0)
	for _, m := range s.meals {
		if m.UserID != owner {
			continue
		}
		if window != nil && !window.Contains(m.CreatedAt) {
			continue
		}
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteMeal(ctx context.Context, owner, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meals[id]
	if !ok || m.UserID != owner {
		return false, nil
	}
	delete(s.meals, id)
	return true, nil
}

func (s *Store) DeleteMealsByOwner(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.meals {
		if m.UserID == owner {
			delete(s.meals, id)
		}
	}
	return nil
}

// --- workouts ---

func (s *Store) CreateWorkout(ctx context.Context, w *models.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.ID = uuid.NewString()
	cp := *w
	s.workouts[w.ID] = &cp
	return nil
}

func (s *Store) ListWorkouts(ctx context.Context, owner string, window *store.TimeRange) ([]models.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Workout, 0)
	for _, w := range s.workouts {
		if w.UserID != owner {
			continue
		}
		if window != nil && !window.Contains(w.CreatedAt) {
			continue
		}
		out = append(out, *w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteWorkout(ctx context.Context, owner, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workouts[id]
	if !ok || w.UserID != owner {
		return false, nil
	}
	delete(s.workouts, id)
	return true, nil
}

func (s *Store) DeleteWorkoutsByOwner(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range s.workouts {
		if w.UserID == owner {
			delete(s.workouts, id)
		}
	}
	return nil
}

// --- posts ---

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	p.Likes = 0
	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

func (s *Store) ListRecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) IncrementLikes(ctx context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Likes++
	cp := *p
	return &cp, nil
}

func (s *Store) DeletePostsByOwner(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.posts {
		if p.UserID == owner {
			delete(s.posts, id)
		}
	}
	return nil
}

// --- goals ---

func (s *Store) GetGoal(ctx context.Context, owner string) (*models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[owner]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *Store) CreateGoal(ctx context.Context, g *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[g.UserID]; ok {
		return store.ErrDuplicate
	}
	g.ID = uuid.NewString()
	cp := *g
	s.goals[g.UserID] = &cp
	return nil
}

func (s *Store) UpsertGoal(ctx context.Context, owner string, update models.GoalUpdate, now time.Time) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[owner]
	if !ok {
		g = models.NewDefaultGoal(owner, now)
		g.ID = uuid.NewString()
		s.goals[owner] = g
	}
	update.Apply(g, now)
	cp := *g
	return &cp, nil
}

func (s *Store) DeleteGoal(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.goals, owner)
	return nil
}
