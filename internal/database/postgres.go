package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ConnectPostgres opens the pool and verifies it. Schema setup is left to
// InitPostgresTables.
func ConnectPostgres(postgresURI string, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := preparePool(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("connected to PostgreSQL")
	return db, nil
}

func preparePool(ctx context.Context, db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db.PingContext(ctx)
}

// schemaQueries mirror the relational layout of the service: every owned
// table cascades on user deletion and goals are unique per user.
var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		full_name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS meals (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		meal_type TEXT NOT NULL,
		calories INTEGER NOT NULL,
		protein DECIMAL(6, 2) NOT NULL,
		carbs DECIMAL(6, 2) NOT NULL,
		fats DECIMAL(6, 2) NOT NULL,
		serving_size TEXT,
		is_custom BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS workouts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		exercise_name TEXT NOT NULL,
		sets INTEGER NOT NULL,
		reps INTEGER NOT NULL,
		weight DECIMAL(6, 2),
		duration INTEGER,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS posts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		image_url TEXT,
		likes INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS goals (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		target_weight DECIMAL(5, 2),
		target_calories INTEGER NOT NULL DEFAULT 2000,
		target_protein INTEGER NOT NULL DEFAULT 150,
		target_carbs INTEGER NOT NULL DEFAULT 200,
		target_fats INTEGER NOT NULL DEFAULT 65,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(user_id)
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users(LOWER(username))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users(LOWER(email))`,
	`CREATE INDEX IF NOT EXISTS idx_meals_user_created ON meals(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_workouts_user_created ON workouts(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id)`,
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	for _, query := range schemaQueries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
