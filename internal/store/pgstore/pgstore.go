// Package pgstore implements store.Store on PostgreSQL through lib/pq.
// The tables are created by database.InitPostgresTables.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return err
}

// validID reports whether id can be compared against a uuid column
// without Postgres rejecting the query.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// --- users ---

const userColumns = `id, username, email, password, full_name, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, u.Username, u.Email, u.PasswordHash, u.FullName, u.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	u.ID = id
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	return u, mapErr(err)
}

// GetUserByUsername ignores case. An exact-case row wins over a case variant.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)
		ORDER BY username = $1 DESC LIMIT 1`,
		username,
	)
	u, err := scanUser(row)
	return u, mapErr(err)
}

func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2))`,
		username, email,
	).Scan(&taken)
	return taken, err
}

func (s *Store) GetAuthors(ctx context.Context, ids []string) (map[string]models.Author, error) {
	out := make(map[string]models.Author, len(ids))
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name, username FROM users WHERE id = ANY($1)`,
		pq.StringArray(valid),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var a models.Author
		if err := rows.Scan(&id, &a.FullName, &a.Username); err != nil {
			return nil, err
		}
		out[id] = a
	}
	return out, rows.Err()
}

// DeleteUser removes the user row. Foreign keys cascade to the user's
// meals, workouts, posts and goal.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// windowClause appends the optional created_at bounds to an owner filter.
func windowClause(query string, args []interface{}, window *store.TimeRange) (string, []interface{}) {
	if window == nil {
		return query, args
	}
	n := len(args)
	query += fmt.Sprintf(` AND created_at >= $%d AND created_at < $%d`, n+1, n+2)
	return query, append(args, window.From, window.To)
}

func (s *Store) deleteOwned(ctx context.Context, table, owner, id string) (bool, error) {
	if !validID(owner) || !validID(id) {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) deleteByOwner(ctx context.Context, table, owner string) error {
	if !validID(owner) {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, owner)
	return err
}

// --- meals ---

const mealColumns = `id, user_id, name, meal_type, calories, protein, carbs, fats, serving_size, is_custom, created_at`

func (s *Store) CreateMeal(ctx context.Context, m *models.Meal) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meals (`+mealColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, m.UserID, m.Name, string(m.MealType), m.Calories, m.Protein, m.Carbs, m.Fats, m.ServingSize, m.IsCustom, m.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	m.ID = id
	return nil
}

func (s *Store) ListMeals(ctx context.Context, owner string, window *store.TimeRange) ([]models.Meal, error) {
	out := make([]models.Meal, 0)
	if !validID(owner) {
		return out, nil
	}

	query, args := windowClause(`SELECT `+mealColumns+` FROM meals WHERE user_id = $1`, []interface{}{owner}, window)
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Meal
		var mealType string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &mealType, &m.Calories, &m.Protein, &m.Carbs, &m.Fats, &m.ServingSize, &m.IsCustom, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.MealType = models.MealType(mealType)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) DeleteMeal(ctx context.Context, owner, id string) (bool, error) {
	return s.deleteOwned(ctx, "meals", owner, id)
}

func (s *Store) DeleteMealsByOwner(ctx context.Context, owner string) error {
	return s.deleteByOwner(ctx, "meals", owner)
}

// --- workouts ---

const workoutColumns = `id, user_id, exercise_name, sets, reps, weight, duration, notes, created_at`

func (s *Store) CreateWorkout(ctx context.Context, w *models.Workout) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workouts (`+workoutColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, w.UserID, w.ExerciseName, w.Sets, w.Reps, w.Weight, w.Duration, w.Notes, w.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	w.ID = id
	return nil
}

func (s *Store) ListWorkouts(ctx context.Context, owner string, window *store.TimeRange) ([]models.Workout, error) {
	out := make([]models.Workout, 0)
	if !validID(owner) {
		return out, nil
	}

	query, args := windowClause(`SELECT `+workoutColumns+` FROM workouts WHERE user_id = $1`, []interface{}{owner}, window)
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.ExerciseName, &w.Sets, &w.Reps, &w.Weight, &w.Duration, &w.Notes, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) DeleteWorkout(ctx context.Context, owner, id string) (bool, error) {
	return s.deleteOwned(ctx, "workouts", owner, id)
}

func (s *Store) DeleteWorkoutsByOwner(ctx context.Context, owner string) error {
	return s.deleteByOwner(ctx, "workouts", owner)
}

// --- posts ---

const postColumns = `id, user_id, content, image_url, likes, created_at`

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.UserID, &p.Content, &p.ImageURL, &p.Likes, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, 0, $5)`,
		id, p.UserID, p.Content, p.ImageURL, p.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	p.ID = id
	p.Likes = 0
	return nil
}

func (s *Store) ListRecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// IncrementLikes bumps the counter in one statement so concurrent likes
// never lose an update.
func (s *Store) IncrementLikes(ctx context.Context, id string) (*models.Post, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING `+postColumns,
		id,
	)
	p, err := scanPost(row)
	return p, mapErr(err)
}

func (s *Store) DeletePostsByOwner(ctx context.Context, owner string) error {
	return s.deleteByOwner(ctx, "posts", owner)
}

// --- goals ---

const goalColumns = `id, user_id, target_weight, target_calories, target_protein, target_carbs, target_fats, updated_at`

func scanGoal(row interface{ Scan(...interface{}) error }) (*models.Goal, error) {
	var g models.Goal
	if err := row.Scan(&g.ID, &g.UserID, &g.TargetWeight, &g.TargetCalories, &g.TargetProtein, &g.TargetCarbs, &g.TargetFats, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) GetGoal(ctx context.Context, owner string) (*models.Goal, error) {
	if !validID(owner) {
		return nil, store.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = $1`, owner)
	g, err := scanGoal(row)
	return g, mapErr(err)
}

func (s *Store) CreateGoal(ctx context.Context, g *models.Goal) error {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, g.UserID, g.TargetWeight, g.TargetCalories, g.TargetProtein, g.TargetCarbs, g.TargetFats, g.UpdatedAt,
	)
	if err != nil {
		return mapErr(err)
	}
	g.ID = id
	return nil
}

// upsertGoalQuery inserts the defaults for absent fields, or on conflict
// keeps the stored value for them. NULL parameters mean "not supplied".
const upsertGoalQuery = `INSERT INTO goals (` + goalColumns + `)
VALUES ($1, $2, $3::numeric, COALESCE($4::integer, $9), COALESCE($5::integer, $10), COALESCE($6::integer, $11), COALESCE($7::integer, $12), $8)
ON CONFLICT (user_id) DO UPDATE SET
	target_weight = COALESCE($3::numeric, goals.target_weight),
	target_calories = COALESCE($4::integer, goals.target_calories),
	target_protein = COALESCE($5::integer, goals.target_protein),
	target_carbs = COALESCE($6::integer, goals.target_carbs),
	target_fats = COALESCE($7::integer, goals.target_fats),
	updated_at = $8
RETURNING ` + goalColumns

func (s *Store) UpsertGoal(ctx context.Context, owner string, update models.GoalUpdate, now time.Time) (*models.Goal, error) {
	if !validID(owner) {
		return nil, fmt.Errorf("invalid owner id %q", owner)
	}
	row := s.db.QueryRowContext(ctx, upsertGoalQuery,
		uuid.NewString(), owner, update.TargetWeight,
		update.TargetCalories, update.TargetProtein, update.TargetCarbs, update.TargetFats,
		now,
		models.DefaultTargetCalories, models.DefaultTargetProtein, models.DefaultTargetCarbs, models.DefaultTargetFats,
	)
	g, err := scanGoal(row)
	return g, mapErr(err)
}

func (s *Store) DeleteGoal(ctx context.Context, owner string) error {
	return s.deleteByOwner(ctx, "goals", owner)
}
