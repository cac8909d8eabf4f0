// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"mcp-meal-score/internal/models"
)

// ErrNotFound is returned when a meal does not exist.
var ErrNotFound = errors.New("meal not found")

// Store persists meal records in SQLite or PostgreSQL.
type Store struct {
	db     *sql.DB
	driver string
}

// NewSQLiteStorage opens (and migrates) a SQLite database file.
func NewSQLiteStorage(dbPath string) (*Store, error) {
	return Open("sqlite", dbPath)
}

// Open connects with driver "sqlite" or "postgres" and ensures the schema.
func Open(driver, dsn string) (*Store, error) {
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// one writer avoids SQLITE_BUSY between concurrent tool calls
		db.SetMaxOpenConns(1)
	}

	storage := &Store{db: db, driver: driver}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS meals (
            id TEXT PRIMARY KEY,
            meal_type TEXT NOT NULL,
            date TEXT NOT NULL,
            day TEXT NOT NULL,
            food_name TEXT NOT NULL DEFAULT '',
            health_score INTEGER,
            confidence REAL NOT NULL DEFAULT 0,
            details TEXT NOT NULL DEFAULT '',
            source TEXT NOT NULL DEFAULT '',
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_meals_date ON meals(date)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_meals_type_day ON meals(meal_type, day)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// SaveMeal stores a meal as the only meal of its type on its calendar day
// (in meal.Date's location). An existing meal for that slot is replaced
// and its ID and CreatedAt are kept; meal is updated to match the stored
// row. Saving an existing ID first removes that row, so a meal can move
// to another slot.
func (s *Store) SaveMeal(ctx context.Context, meal *models.MealRecord) error {
	now := time.Now()
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = now
	}
	meal.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM meals WHERE id = ?`), meal.ID); err != nil {
		return fmt.Errorf("failed to replace meal: %w", err)
	}

	var score interface{}
	if meal.HealthScore != nil {
		score = *meal.HealthScore
	}

	mealQuery := `
        INSERT INTO meals (id, meal_type, date, day, food_name, health_score, confidence, details, source, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (meal_type, day) DO UPDATE SET
            date = excluded.date,
            food_name = excluded.food_name,
            health_score = excluded.health_score,
            confidence = excluded.confidence,
            details = excluded.details,
            source = excluded.source,
            updated_at = excluded.updated_at
        RETURNING id, created_at
    `
	var id, createdAt string
	err = tx.QueryRowContext(ctx, s.rebind(mealQuery),
		meal.ID, string(meal.MealType), formatTime(meal.Date), dayKey(meal.Date),
		meal.FoodName, score, meal.Confidence, meal.Details, string(meal.Source),
		formatTime(meal.CreatedAt), formatTime(meal.UpdatedAt)).Scan(&id, &createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit meal: %w", err)
	}

	meal.ID = id
	if meal.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}
	return nil
}

// dayKey is the calendar day of t in its own location.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

const selectMeal = `
        SELECT id, meal_type, date, food_name, health_score, confidence, details, source, created_at, updated_at
        FROM meals
    `

// GetMeals lists meals between two YYYY-MM-DD dates (inclusive, either
// may be empty), newest first.
func (s *Store) GetMeals(ctx context.Context, startDate, endDate string, limit int) ([]*models.MealRecord, error) {
	query := selectMeal + " WHERE 1=1"
	args := []interface{}{}

	if startDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date: %w", err)
		}
		query += " AND date >= ?"
		args = append(args, formatTime(start))
	}
	if endDate != "" {
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date: %w", err)
		}
		query += " AND date < ?"
		args = append(args, formatTime(end.AddDate(0, 0, 1)))
	}

	query += " ORDER BY date DESC LIMIT ?"
	args = append(args, limit)

	return s.queryMeals(ctx, query, args...)
}

// MealsSince returns every meal dated at or after t, oldest first.
func (s *Store) MealsSince(ctx context.Context, t time.Time) ([]*models.MealRecord, error) {
	return s.queryMeals(ctx, selectMeal+" WHERE date >= ? ORDER BY date", formatTime(t))
}

// GetMeal loads one meal by ID.
func (s *Store) GetMeal(ctx context.Context, id string) (*models.MealRecord, error) {
	meals, err := s.queryMeals(ctx, selectMeal+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, ErrNotFound
	}
	return meals[0], nil
}

// DeleteMeal removes a meal by ID.
func (s *Store) DeleteMeal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM meals WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountMeals returns the number of stored meals.
func (s *Store) CountMeals(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meals`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count meals: %w", err)
	}
	return n, nil
}

// DeleteAll removes every meal and reports how many were deleted.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meals`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear meals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear meals: %w", err)
	}
	return int(n), nil
}

func (s *Store) queryMeals(ctx context.Context, query string, args ...interface{}) ([]*models.MealRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []*models.MealRecord
	for rows.Next() {
		meal := &models.MealRecord{}
		var mealType, dateStr, createdAtStr, updatedAtStr, source string
		var score sql.NullInt64

		err := rows.Scan(
			&meal.ID, &mealType, &dateStr, &meal.FoodName, &score,
			&meal.Confidence, &meal.Details, &source, &createdAtStr, &updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}

		// Parse timestamps
		if meal.Date, err = time.Parse(timeLayout, dateStr); err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if meal.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if meal.UpdatedAt, err = time.Parse(timeLayout, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		meal.MealType = models.MealType(mealType)
		meal.Source = models.Source(source)
		if score.Valid {
			meal.HealthScore = models.IntPtr(int(score.Int64))
		}

		meals = append(meals, meal)
	}

	return meals, rows.Err()
}
