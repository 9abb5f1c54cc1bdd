package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/julianstephens/habitd/internal/migration"
	"github.com/julianstephens/habitd/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint
	ErrDuplicate = errors.New("record already exists")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// WithTx runs fn in a single transaction. The transaction commits when
	// fn returns nil and rolls back otherwise, including on ctx cancellation.
	WithTx(ctx context.Context, fn func(Repository) error) error

	// Utils
	GetConfigPath() string
	GetDB() *sql.DB
	Driver() migration.Driver
	MigrationRunner() (*migration.Runner, error)
}

// SubcategoryRef is a subcategory joined with its category
type SubcategoryRef struct {
	models.Subcategory
	CategoryName string
	CategoryIcon string
}

// Repository is the transactional data access surface shared by every backend
type Repository interface {
	// Habits
	InsertHabit(ctx context.Context, h models.Habit) error
	UpdateHabit(ctx context.Context, h models.Habit) error
	DeleteHabit(ctx context.Context, id string) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	// LockHabit reads a habit and holds a row lock until the transaction ends
	// on backends that support one.
	LockHabit(ctx context.Context, id string) (models.Habit, error)
	ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error)

	// Progress ledger
	InsertProgress(ctx context.Context, rec models.ProgressRecord) (bool, error)
	ListProgressDays(ctx context.Context, habitID string) ([]string, error)
	ListProgressDaysByOwner(ctx context.Context, ownerID string) (map[string][]string, error)
	CountProgress(ctx context.Context, habitID string) (int, error)

	// Taxonomy
	EnsureCategory(ctx context.Context, name, icon string, now time.Time) (models.Category, error)
	EnsureSubcategory(ctx context.Context, categoryID, name, icon, ownerID string, now time.Time) (models.Subcategory, bool, error)
	GetCategory(ctx context.Context, id string) (models.Category, error)
	GetSubcategory(ctx context.Context, id string) (models.Subcategory, error)
	ListSubcategories(ctx context.Context, ownerID string) ([]SubcategoryRef, error)
	DeleteSubcategory(ctx context.Context, id string) error

	// Interests
	InsertInterest(ctx context.Context, ui models.UserInterest) (bool, error)
	GetInterest(ctx context.Context, id string) (models.Interest, error)
	ListInterests(ctx context.Context, ownerID string) ([]models.Interest, error)
	DeleteInterest(ctx context.Context, id string) error

	// Counters
	InsertCounter(ctx context.Context, c models.Counter) error
	UpdateCounter(ctx context.Context, c models.Counter) error
	GetCounter(ctx context.Context, id string) (models.Counter, error)
	ListCounters(ctx context.Context, ownerID string) ([]models.Counter, error)
	DeleteCounter(ctx context.Context, id string) error
}
