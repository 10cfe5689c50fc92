// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evofit/evofit-backend/internal/models"
	"github.com/evofit/evofit-backend/internal/store"
)

type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	meals    *mongo.Collection
	workouts *mongo.Collection
	posts    *mongo.Collection
	goals    *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// caseInsensitive matches usernames and emails regardless of case. Older
// accounts were stored with their original casing.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:   client,
		users:    db.Collection(usersCollection),
		meals:    db.Collection(mealsCollection),
		workouts: db.Collection(workoutsCollection),
		posts:    db.Collection(postsCollection),
		goals:    db.Collection(goalsCollection),
	}
}

// EnsureIndexes creates the indexes the store relies on. The unique ones
// back ErrDuplicate for usernames, emails and the one-goal-per-user rule.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll   *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.users, []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().
				SetName("username_ci").SetUnique(true).SetCollation(caseInsensitive)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().
				SetName("email_ci").SetUnique(true).SetCollation(caseInsensitive)},
		}},
		{s.meals, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{s.workouts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{s.posts, []mongo.IndexModel{
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		}},
		{s.goals, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
	}

	for _, spec := range specs {
		if _, err := spec.coll.Indexes().CreateMany(ctx, spec.models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", spec.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.model(), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc userDoc
	opts := options.FindOne().SetCollation(caseInsensitive)
	if err := s.users.FindOne(ctx, bson.M{"username": username}, opts).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.model(), nil
}

func (s *Store) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": []bson.M{{"username": username}, {"email": email}}}
	n, err := s.users.CountDocuments(ctx, filter, options.Count().SetLimit(1).SetCollation(caseInsensitive))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetAuthors(ctx context.Context, ids []string) (map[string]models.Author, error) {
	out := make(map[string]models.Author, len(ids))
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "fullName": 1})
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID.Hex()] = models.Author{FullName: d.FullName, Username: d.Username}
	}
	return out, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = s.users.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// ownedWindow builds the filter shared by meal and workout listings.
func ownedWindow(owner primitive.ObjectID, window *store.TimeRange) bson.M {
	filter := bson.M{"userId": owner}
	if window != nil {
		filter["createdAt"] = bson.M{"$gte": window.From, "$lt": window.To}
	}
	return filter
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// deleteOwned removes the document only when both id and owner match.
func deleteOwned(ctx context.Context, coll *mongo.Collection, owner, id string) (bool, error) {
	ownerID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return false, nil
	}
	docID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": docID, "userId": ownerID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func deleteByOwner(ctx context.Context, coll *mongo.Collection, owner string) error {
	ownerID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return nil
	}
	_, err = coll.DeleteMany(ctx, bson.M{"userId": ownerID})
	return err
}

// --- meals ---

func (s *Store) CreateMeal(ctx context.Context, m *models.Meal) error {
	ownerID, err := primitive.ObjectIDFromHex(m.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q", m.UserID)
	}
	doc := mealDoc{
		ID:          primitive.NewObjectID(),
		UserID:      ownerID,
		Name:        m.Name,
		MealType:    string(m.MealType),
		Calories:    m.Calories,
		Protein:     m.Protein,
		Carbs:       m.Carbs,
		Fats:        m.Fats,
		ServingSize: m.ServingSize,
		IsCustom:    m.IsCustom,
		CreatedAt:   m.CreatedAt,
	}
	if _, err := s.meals.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	m.ID = doc.ID.Hex()
	return nil
}

func (s *Store) ListMeals(ctx context.Context, owner string, window *store.TimeRange) ([]models.Meal, error) {
	out := make([]models.Meal, 0)
	ownerID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return out, nil
	}

	cursor, err := s.meals.Find(ctx, ownedWindow(ownerID, window), newestFirst())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mealDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) DeleteMeal(ctx context.Context, owner, id string) (bool, error) {
	return deleteOwned(ctx, s.meals, owner, id)
}

func (s *Store) DeleteMealsByOwner(ctx context.Context, owner string) error {
	return deleteByOwner(ctx, s.meals, owner)
}

// --- workouts ---

func (s *Store) CreateWorkout(ctx context.Context, w *models.Workout) error {
	ownerID, err := primitive.ObjectIDFromHex(w.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q", w.UserID)
	}
	doc := workoutDoc{
		ID:           primitive.NewObjectID(),
		UserID:       ownerID,
		ExerciseName: w.ExerciseName,
		Sets:         w.Sets,
		Reps:         w.Reps,
		Weight:       w.Weight,
		Duration:     w.Duration,
		Notes:        w.Notes,
		CreatedAt:    w.CreatedAt,
	}
	if _, err := s.workouts.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	w.ID = doc.ID.Hex()
	return nil
}

func (s *Store) ListWorkouts(ctx context.Context, owner string, window *store.TimeRange) ([]models.Workout, error) {
	out := make([]models.Workout, 0)
	ownerID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return out, nil
	}

	cursor, err := s.workouts.Find(ctx, ownedWindow(ownerID, window), newestFirst())
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []workoutDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) DeleteWorkout(ctx context.Context, owner, id string) (bool, error) {
	return deleteOwned(ctx, s.workouts, owner, id)
}

func (s *Store) DeleteWorkoutsByOwner(ctx context.Context, owner string) error {
	return deleteByOwner(ctx, s.workouts, owner)
}

// --- posts ---

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	ownerID, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q", p.UserID)
	}
	doc := postDoc{
		ID:        primitive.NewObjectID(),
		UserID:    ownerID,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Likes:     0,
		CreatedAt: p.CreatedAt,
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	p.ID = doc.ID.Hex()
	p.Likes = 0
	return nil
}

func (s *Store) ListRecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	opts := newestFirst()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (s *Store) IncrementLikes(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDoc
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"likes": 1}}, opts).Decode(&doc)
	if err != nil {
		return nil, mapErr(err)
	}
	p := doc.model()
	return &p, nil
}

func (s *Store) DeletePostsByOwner(ctx context.Context, owner string) error {
	return deleteByOwner(ctx, s.posts, owner)
}

// --- goals ---

func (s *Store) GetGoal(ctx context.Context, owner string) (*models.Goal, error) {
	ownerID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return nil, store.ErrNotFound
	}
	var doc goalDoc
	if err := s.goals.FindOne(ctx, bson.M{"userId": ownerID}).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.model(), nil
}

func (s *Store) CreateGoal(ctx context.Context, g *models.Goal) error {
	ownerID, err := primitive.ObjectIDFromHex(g.UserID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q", g.UserID)
	}
	doc := goalDoc{
		ID:             primitive.NewObjectID(),
		UserID:         ownerID,
		TargetWeight:   g.TargetWeight,
		TargetCalories: g.TargetCalories,
		TargetProtein:  g.TargetProtein,
		TargetCarbs:    g.TargetCarbs,
		TargetFats:     g.TargetFats,
		UpdatedAt:      g.UpdatedAt,
	}
	if _, err := s.goals.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	g.ID = doc.ID.Hex()
	return nil
}

// UpsertGoal writes the supplied fields in a single findOneAndUpdate.
// Fields left out keep their stored value, or take the default when the
// document is being inserted.
func (s *Store) UpsertGoal(ctx context.Context, owner string, update models.GoalUpdate, now time.Time) (*models.Goal, error) {
	ownerID, err := primitive.ObjectIDFromHex(owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q", owner)
	}

	set, setOnInsert := goalUpdateDocs(update, now)
	change := bson.M{"$set": set}
	if len(setOnInsert) > 0 {
		change["$setOnInsert"] = setOnInsert
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc goalDoc
	if err := s.goals.FindOneAndUpdate(ctx, bson.M{"userId": ownerID}, change, opts).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.model(), nil
}

func goalUpdateDocs(update models.GoalUpdate, now time.Time) (bson.M, bson.M) {
	set := bson.M{"updatedAt": now}
	setOnInsert := bson.M{}

	if update.TargetWeight != nil {
		set["targetWeight"] = *update.TargetWeight
	}
	fields := []struct {
		name  string
		value *int
		def   int
	}{
		{"targetCalories", update.TargetCalories, models.DefaultTargetCalories},
		{"targetProtein", update.TargetProtein, models.DefaultTargetProtein},
		{"targetCarbs", update.TargetCarbs, models.DefaultTargetCarbs},
		{"targetFats", update.TargetFats, models.DefaultTargetFats},
	}
	for _, f := range fields {
		if f.value != nil {
			set[f.name] = *f.value
		} else {
			setOnInsert[f.name] = f.def
		}
	}
	return set, setOnInsert
}

func (s *Store) DeleteGoal(ctx context.Context, owner string) error {
	return deleteByOwner(ctx, s.goals, owner)
}
