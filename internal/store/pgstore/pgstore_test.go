package pgstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := s.CreateUser(context.Background(), &models.User{Username: "ana", Email: "ana@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserAssignsID(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "ana", "ana@example.com", "hash", "Ana Lima", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{Username: "ana", Email: "ana@example.com", PasswordHash: "hash", FullName: "Ana Lima"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	_, err := uuid.Parse(u.ID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDNotFound(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.NewString()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "full_name", "created_at"}))

	_, err := s.GetUserByID(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsernameIgnoresCase(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.NewString()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(username) = LOWER($1)")).
		WithArgs("johndoe").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "full_name", "created_at"}).
			AddRow(id, "JohnDoe", "John@Example.com", "hash", "John Doe", time.Now()))

	u, err := s.GetUserByUsername(context.Background(), "johndoe")
	require.NoError(t, err)
	assert.Equal(t, "JohnDoe", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsernameOrEmailTaken(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2)")).
		WithArgs("ana", "ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := s.UsernameOrEmailTaken(context.Background(), "ana", "ana@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestListMealsWithWindow(t *testing.T) {
	s, mock := newMock(t)
	owner := uuid.NewString()
	from := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "meal_type", "calories", "protein", "carbs", "fats", "serving_size", "is_custom", "created_at"}).
		AddRow(uuid.NewString(), owner, "Oats", "breakfast", 300, 10.5, 54.0, 5.0, "1 cup", false, from.Add(8*time.Hour)).
		AddRow(uuid.NewString(), owner, "Apple", "snack", 95, 0.5, 25.0, 0.3, nil, true, from.Add(7*time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM meals WHERE user_id = $1 AND created_at >= $2 AND created_at < $3 ORDER BY created_at DESC")).
		WithArgs(owner, from, to).
		WillReturnRows(rows)

	meals, err := s.ListMeals(context.Background(), owner, &store.TimeRange{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, models.MealTypeBreakfast, meals[0].MealType)
	require.NotNil(t, meals[0].ServingSize)
	assert.Equal(t, "1 cup", *meals[0].ServingSize)
	assert.Nil(t, meals[1].ServingSize)
	assert.True(t, meals[1].IsCustom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMeal(t *testing.T) {
	t.Run("foreign owner affects nothing", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM meals WHERE id = $1 AND user_id = $2")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		removed, err := s.DeleteMeal(context.Background(), uuid.NewString(), uuid.NewString())
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("malformed id skips the query", func(t *testing.T) {
		s, mock := newMock(t)

		removed, err := s.DeleteMeal(context.Background(), uuid.NewString(), "42")
		require.NoError(t, err)
		assert.False(t, removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIncrementLikes(t *testing.T) {
	cols := []string{"id", "user_id", "content", "image_url", "likes", "created_at"}

	t.Run("returns the new count", func(t *testing.T) {
		s, mock := newMock(t)
		id := uuid.NewString()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE posts SET likes = likes + 1 WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(id, uuid.NewString(), "leg day", nil, 3, time.Now()))

		p, err := s.IncrementLikes(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 3, p.Likes)
		assert.Nil(t, p.ImageURL)
	})

	t.Run("unknown post", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE posts")).WillReturnRows(sqlmock.NewRows(cols))

		_, err := s.IncrementLikes(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestListRecentPostsLimit(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM posts ORDER BY created_at DESC LIMIT $1")).
		WithArgs(models.FeedPageSize).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "image_url", "likes", "created_at"}))

	posts, err := s.ListRecentPosts(context.Background(), models.FeedPageSize)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertGoalPassesNullForAbsentFields(t *testing.T) {
	s, mock := newMock(t)
	owner := uuid.NewString()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), owner, nil, 2500, nil, nil, nil, now,
			models.DefaultTargetCalories, models.DefaultTargetProtein, models.DefaultTargetCarbs, models.DefaultTargetFats).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "target_weight", "target_calories", "target_protein", "target_carbs", "target_fats", "updated_at"}).
			AddRow(uuid.NewString(), owner, nil, 2500, 150, 200, 65, now))

	cal := 2500
	g, err := s.UpsertGoal(context.Background(), owner, models.GoalUpdate{TargetCalories: &cal}, now)
	require.NoError(t, err)
	assert.Equal(t, 2500, g.TargetCalories)
	assert.Equal(t, models.DefaultTargetProtein, g.TargetProtein)
	assert.Nil(t, g.TargetWeight)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAuthorsSkipsMalformedIDs(t *testing.T) {
	s, mock := newMock(t)
	id := uuid.NewString()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "username"}).AddRow(id, "Ana Lima", "ana"))

	authors, err := s.GetAuthors(context.Background(), []string{id, "legacy"})
	require.NoError(t, err)
	assert.Equal(t, map[string]models.Author{id: {FullName: "Ana Lima", Username: "ana"}}, authors)
}
