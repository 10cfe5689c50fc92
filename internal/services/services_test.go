package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/evofit/evofit-backend/internal/auth"
	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store/memstore"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	store  *memstore.Store
	tokens *auth.TokenService
	hub    *FeedHub
	svc    *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	tokens := auth.NewTokenService("test-secret", 7*24*time.Hour)
	hub := NewFeedHub(nil, quietLogger(), nil)
	svc := New(Params{
		Store:    st,
		Hasher:   auth.NewPasswordHasher(auth.Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}),
		Tokens:   tokens,
		Hub:      hub,
		Location: time.UTC,
		Logger:   quietLogger(),
	})
	return &fixture{store: st, tokens: tokens, hub: hub, svc: svc}
}

func (f *fixture) signup(t *testing.T, username string) *models.AuthResponse {
	t.Helper()
	resp, err := f.svc.Accounts.Signup(context.Background(), models.SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
		FullName: "Test " + username,
	})
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Accounts.Signup(ctx, models.SignupRequest{
		Username: "  Ana_Lifts ",
		Email:    "Ana@Example.com",
		Password: "correct horse",
		FullName: "Ana Lima",
	})
	require.NoError(t, err)

	assert.Equal(t, "ana_lifts", resp.User.Username)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.NotEqual(t, "correct horse", resp.User.PasswordHash)

	id, err := f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, id)

	goal, err := f.store.GetGoal(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTargetCalories, goal.TargetCalories)
}

func TestSignupConflicts(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "ana")

	tests := []struct {
		name string
		req  models.SignupRequest
	}{
		{"same username different case", models.SignupRequest{Username: "ANA", Email: "new@example.com", Password: "pw", FullName: "X"}},
		{"same email", models.SignupRequest{Username: "other", Email: "ana@example.com", Password: "pw", FullName: "X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Accounts.Signup(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrConflict)
		})
	}
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  models.SignupRequest
	}{
		{"missing email", models.SignupRequest{Username: "ana", Password: "pw", FullName: "Ana"}},
		{"bad email", models.SignupRequest{Username: "ana", Email: "nope", Password: "pw", FullName: "Ana"}},
		{"missing password", models.SignupRequest{Username: "ana", Email: "a@example.com", FullName: "Ana"}},
		{"blank full name", models.SignupRequest{Username: "ana", Email: "a@example.com", Password: "pw", FullName: "   "}},
		{"short username", models.SignupRequest{Username: "an", Email: "a@example.com", Password: "pw", FullName: "Ana"}},
		{"username with spaces", models.SignupRequest{Username: "ana lima", Email: "a@example.com", Password: "pw", FullName: "Ana"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Accounts.Signup(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	created := f.signup(t, "ana")
	ctx := context.Background()

	resp, err := f.svc.Accounts.Login(ctx, models.LoginRequest{Username: "Ana", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	_, err = f.svc.Accounts.Login(ctx, models.LoginRequest{Username: "ana", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Accounts.Login(ctx, models.LoginRequest{Username: "nobody", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Accounts.Login(ctx, models.LoginRequest{Username: "ana"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginMixedCaseImportedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	legacy := &models.User{
		Username:     "JohnDoe",
		Email:        "John@Example.com",
		FullName:     "John Doe",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.store.CreateUser(ctx, legacy))

	for _, name := range []string{"JohnDoe", "johndoe", " JOHNDOE "} {
		resp, err := f.svc.Accounts.Login(ctx, models.LoginRequest{Username: name, Password: "pw"})
		require.NoError(t, err, name)
		assert.Equal(t, legacy.ID, resp.User.ID)
	}

	_, err = f.svc.Accounts.Signup(ctx, models.SignupRequest{
		Username: "jane",
		Email:    "john@example.com",
		Password: "correct horse",
		FullName: "Jane",
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Accounts.Signup(ctx, models.SignupRequest{
		Username: "johndoe",
		Email:    "jd@example.com",
		Password: "correct horse",
		FullName: "Other John",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUsernameFormatAppliesToSignupOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Accounts.Signup(ctx, models.SignupRequest{
		Username: "john.doe",
		Email:    "john.doe@example.com",
		Password: "correct horse",
		FullName: "John Doe",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "letters, numbers, and underscores")

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.store.CreateUser(ctx, &models.User{
		Username:     "john.doe",
		Email:        "john.doe@example.com",
		PasswordHash: string(hash),
	}))

	_, err = f.svc.Accounts.Login(ctx, models.LoginRequest{Username: "john.doe", Password: "pw"})
	assert.NoError(t, err)
}

func TestDeleteAccountCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.signup(t, "ana").User
	bob := f.signup(t, "bob").User

	_, err := f.svc.Meals.Create(ctx, ana.ID, validMeal(300))
	require.NoError(t, err)
	_, err = f.svc.Posts.Create(ctx, ana.ID, models.CreatePostRequest{Content: "hi"})
	require.NoError(t, err)
	_, err = f.svc.Posts.Create(ctx, bob.ID, models.CreatePostRequest{Content: "yo"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Accounts.DeleteAccount(ctx, ana.ID))

	_, err = f.svc.Accounts.Me(ctx, ana.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	meals, err := f.svc.Meals.List(ctx, ana.ID)
	require.NoError(t, err)
	assert.Empty(t, meals)

	feed, err := f.svc.Posts.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "yo", feed[0].Content)
}

func validMeal(cal int) models.CreateMealRequest {
	protein, carbs, fats := 20.0, 30.0, 10.0
	return models.CreateMealRequest{
		Name:     "meal",
		MealType: "lunch",
		Calories: &cal,
		Protein:  &protein,
		Carbs:    &carbs,
		Fats:     &fats,
	}
}

func TestMealsToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loc := time.FixedZone("UTC+2", 2*60*60)
	f.svc.Meals.loc = loc
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, loc)
	f.svc.Meals.now = func() time.Time { return now }

	for _, at := range []time.Time{
		time.Date(2024, 5, 9, 23, 59, 0, 0, loc),
		time.Date(2024, 5, 10, 0, 1, 0, 0, loc),
		time.Date(2024, 5, 10, 23, 59, 59, 999e6, loc),
		time.Date(2024, 5, 11, 0, 0, 0, 0, loc),
	} {
		require.NoError(t, f.store.CreateMeal(ctx, &models.Meal{UserID: "u1", Name: "m", Calories: 1, CreatedAt: at.UTC()}))
	}

	today, err := f.svc.Meals.ListToday(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.True(t, today[0].CreatedAt.After(today[1].CreatedAt))
}

func TestMealsSameDaySum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "ana").User.ID

	for _, cal := range []int{300, 400, 500} {
		_, err := f.svc.Meals.Create(ctx, owner, validMeal(cal))
		require.NoError(t, err)
	}

	today, err := f.svc.Meals.ListToday(ctx, owner)
	require.NoError(t, err)
	require.Len(t, today, 3)

	total := 0
	for _, m := range today {
		total += m.Calories
	}
	assert.Equal(t, 1200, total)

	report, err := f.svc.Summary.Summary(ctx, owner, 1)
	require.NoError(t, err)
	assert.Equal(t, 1200, report.Today.Calories)
	assert.InDelta(t, 60.0, report.Progress.Calories, 1e-9)
}

func TestMealCreateValidation(t *testing.T) {
	f := newFixture(t)
	req := validMeal(100)
	req.MealType = "brunch"

	_, err := f.svc.Meals.Create(context.Background(), "u1", req)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "mealType")
}

func TestMealCreateRejectsOversizedMacros(t *testing.T) {
	f := newFixture(t)
	req := validMeal(100)
	protein := 10000.0
	req.Protein = &protein

	_, err := f.svc.Meals.Create(context.Background(), "u1", req)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "protein must be at most 9999.99")
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	meal, err := f.svc.Meals.Create(ctx, "owner", validMeal(100))
	require.NoError(t, err)

	require.NoError(t, f.svc.Meals.Delete(ctx, "intruder", meal.ID))
	require.NoError(t, f.svc.Meals.Delete(ctx, "owner", "does-not-exist"))

	meals, err := f.svc.Meals.List(ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, meals, 1)

	require.NoError(t, f.svc.Meals.Delete(ctx, "owner", meal.ID))
	meals, err = f.svc.Meals.List(ctx, "owner")
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestWorkouts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sets, reps := 3, 10

	w, err := f.svc.Workouts.Create(ctx, "u1", models.CreateWorkoutRequest{ExerciseName: "Squat", Sets: &sets, Reps: &reps})
	require.NoError(t, err)
	assert.Nil(t, w.Weight)

	zero := 0
	_, err = f.svc.Workouts.Create(ctx, "u1", models.CreateWorkoutRequest{ExerciseName: "Squat", Sets: &zero, Reps: &reps})
	assert.ErrorIs(t, err, ErrValidation)

	today, err := f.svc.Workouts.ListToday(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, today, 1)

	require.NoError(t, f.svc.Workouts.Delete(ctx, "u1", w.ID))
	all, err := f.svc.Workouts.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGoalsLazyCreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Goals.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTargetProtein, first.TargetProtein)

	second, err := f.svc.Goals.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	cal := 1800
	updated, err := f.svc.Goals.Update(ctx, "u1", models.GoalUpdate{TargetCalories: &cal})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, 1800, updated.TargetCalories)
	assert.Equal(t, models.DefaultTargetProtein, updated.TargetProtein)

	neg := -1
	_, err = f.svc.Goals.Update(ctx, "u1", models.GoalUpdate{TargetFats: &neg})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGoalUpdateCreatesWhenMissing(t *testing.T) {
	f := newFixture(t)
	weight := 70.0

	g, err := f.svc.Goals.Update(context.Background(), "fresh", models.GoalUpdate{TargetWeight: &weight})
	require.NoError(t, err)
	require.NotNil(t, g.TargetWeight)
	assert.Equal(t, 70.0, *g.TargetWeight)
	assert.Equal(t, models.DefaultTargetCalories, g.TargetCalories)
}

func TestFeedComposesAuthors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.signup(t, "ana").User

	_, err := f.svc.Posts.Create(ctx, ana.ID, models.CreatePostRequest{Content: "PR today"})
	require.NoError(t, err)
	require.NoError(t, f.store.CreatePost(ctx, &models.Post{UserID: "ghost", Content: "orphan", CreatedAt: time.Now().Add(time.Minute)}))

	feed, err := f.svc.Posts.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	assert.Equal(t, "orphan", feed[0].Content)
	assert.Nil(t, feed[0].User)
	require.NotNil(t, feed[1].User)
	assert.Equal(t, models.Author{FullName: "Test ana", Username: "ana"}, *feed[1].User)
	assert.Equal(t, 0, feed[1].Likes)
}

func TestLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.hub.Subscribe()
	defer f.hub.Unsubscribe(sub)

	post, err := f.svc.Posts.Create(ctx, "u1", models.CreatePostRequest{Content: "hello"})
	require.NoError(t, err)

	created := <-sub.Events()
	assert.Equal(t, EventPostCreated, created.Type)
	require.NotNil(t, created.Post)
	assert.Equal(t, post.ID, created.Post.ID)

	liked, err := f.svc.Posts.Like(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)

	ev := <-sub.Events()
	assert.Equal(t, EventPostLiked, ev.Type)
	assert.Equal(t, post.ID, ev.PostID)
	assert.Equal(t, 1, ev.Likes)

	_, err = f.svc.Posts.Like(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Posts.Create(context.Background(), "u1", models.CreatePostRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	r := DayRange(time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC), loc)

	assert.Equal(t, time.Date(2024, 5, 9, 0, 0, 0, 0, loc), r.From)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, loc), r.To)

	w := SinceDays(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC), time.UTC, 7)
	assert.Equal(t, time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), w.To)
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, 1, ClampDays(0))
	assert.Equal(t, 30, ClampDays(30))
	assert.Equal(t, MaxSummaryDays, ClampDays(365))
}

func TestConcurrentLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post, err := f.svc.Posts.Create(ctx, "u1", models.CreatePostRequest{Content: "race"})
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.Posts.Like(ctx, post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	feed, err := f.svc.Posts.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, n, feed[0].Likes)
}
