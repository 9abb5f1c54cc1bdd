package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitd/internal/models"
)

// Dialect captures the differences between the SQL backends
type Dialect interface {
	// Rebind converts ?-style placeholders to the backend's syntax
	Rebind(query string) string
	// LockClause is appended to a SELECT to lock the returned rows
	LockClause() string
	IsUniqueViolation(err error) bool
}

// RebindDollar rewrites ? placeholders as $1, $2, ...
func RebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RunInTx executes fn inside a transaction on db
func RunInTx(ctx context.Context, db *sql.DB, d Dialect, fn func(Repository) error) error {
	if db == nil {
		return fmt.Errorf("storage not loaded")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewRepository(tx, d)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type sqlRepository struct {
	tx *sql.Tx
	d  Dialect
}

// NewRepository returns a Repository bound to an open transaction
func NewRepository(tx *sql.Tx, d Dialect) Repository {
	return &sqlRepository{tx: tx, d: d}
}

func (r *sqlRepository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.tx.ExecContext(ctx, r.d.Rebind(query), args...)
}

func (r *sqlRepository) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.tx.QueryContext(ctx, r.d.Rebind(query), args...)
}

func (r *sqlRepository) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.tx.QueryRowContext(ctx, r.d.Rebind(query), args...)
}

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// Habits

const habitColumns = `id, owner_id, name, description, category_id, subcategory_id, icon,
	duration_days, done, created_at, updated_at`

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var categoryID, subcategoryID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &categoryID, &subcategoryID,
		&h.Icon, &h.DurationDays, &h.Done, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.CategoryID = categoryID.String
	h.SubcategoryID = subcategoryID.String

	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (r *sqlRepository) InsertHabit(ctx context.Context, h models.Habit) error {
	_, err := r.exec(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.OwnerID, h.Name, h.Description, nullString(h.CategoryID), nullString(h.SubcategoryID),
		h.Icon, h.DurationDays, h.Done, formatTime(h.CreatedAt), formatTime(h.UpdatedAt))
	if err != nil {
		if r.d.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (r *sqlRepository) UpdateHabit(ctx context.Context, h models.Habit) error {
	res, err := r.exec(ctx, `
		UPDATE habits
		SET name = ?, description = ?, category_id = ?, subcategory_id = ?, icon = ?,
			duration_days = ?, done = ?, updated_at = ?
		WHERE id = ?`,
		h.Name, h.Description, nullString(h.CategoryID), nullString(h.SubcategoryID), h.Icon,
		h.DurationDays, h.Done, formatTime(h.UpdatedAt), h.ID)
	if err != nil {
		if r.d.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update habit: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRepository) DeleteHabit(ctx context.Context, id string) error {
	res, err := r.exec(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRepository) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	h, err := scanHabit(r.queryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id))
	if err != nil {
		return models.Habit{}, notFound(err)
	}
	return h, nil
}

func (r *sqlRepository) LockHabit(ctx context.Context, id string) (models.Habit, error) {
	h, err := scanHabit(r.queryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`+r.d.LockClause(), id))
	if err != nil {
		return models.Habit{}, notFound(err)
	}
	return h, nil
}

func (r *sqlRepository) ListHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	rows, err := r.query(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE owner_id = ?
		ORDER BY created_at, name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// Progress ledger

func (r *sqlRepository) InsertProgress(ctx context.Context, rec models.ProgressRecord) (bool, error) {
	res, err := r.exec(ctx, `
		INSERT INTO habit_progress (id, habit_id, day, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (habit_id, day) DO NOTHING`,
		rec.ID, rec.HabitID, rec.Day, formatTime(rec.CreatedAt))
	if err != nil {
		return false, fmt.Errorf("failed to insert progress: %w", err)
	}
	return affected(res)
}

func (r *sqlRepository) ListProgressDays(ctx context.Context, habitID string) ([]string, error) {
	rows, err := r.query(ctx, `
		SELECT day FROM habit_progress
		WHERE habit_id = ?
		ORDER BY day DESC`, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (r *sqlRepository) ListProgressDaysByOwner(ctx context.Context, ownerID string) (map[string][]string, error) {
	rows, err := r.query(ctx, `
		SELECT p.habit_id, p.day
		FROM habit_progress p
		JOIN habits h ON h.id = p.habit_id
		WHERE h.owner_id = ?
		ORDER BY p.habit_id, p.day DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	days := make(map[string][]string)
	for rows.Next() {
		var habitID, day string
		if err := rows.Scan(&habitID, &day); err != nil {
			return nil, err
		}
		days[habitID] = append(days[habitID], day)
	}
	return days, rows.Err()
}

func (r *sqlRepository) CountProgress(ctx context.Context, habitID string) (int, error) {
	var count int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM habit_progress WHERE habit_id = ?`, habitID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count progress: %w", err)
	}
	return count, nil
}

// Taxonomy

func (r *sqlRepository) EnsureCategory(ctx context.Context, name, icon string, now time.Time) (models.Category, error) {
	_, err := r.exec(ctx, `
		INSERT INTO categories (id, name, icon, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING`,
		NewID(), name, icon, formatTime(now))
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to ensure category %q: %w", name, err)
	}

	c, err := scanCategory(r.queryRow(ctx, `SELECT id, name, icon, created_at FROM categories WHERE name = ?`, name))
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to read category %q: %w", name, notFound(err))
	}
	return c, nil
}

func scanCategory(row scanner) (models.Category, error) {
	var c models.Category
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &createdAt); err != nil {
		return models.Category{}, err
	}
	var err error
	c.CreatedAt, err = parseTime("created_at", createdAt)
	return c, err
}

const subcategoryColumns = `s.id, s.category_id, s.name, s.icon, s.owner_id, s.created_at`

func scanSubcategory(row scanner, extra ...any) (models.Subcategory, error) {
	var s models.Subcategory
	var createdAt string
	dest := append([]any{&s.ID, &s.CategoryID, &s.Name, &s.Icon, &s.OwnerID, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Subcategory{}, err
	}
	var err error
	s.CreatedAt, err = parseTime("created_at", createdAt)
	return s, err
}

func (r *sqlRepository) EnsureSubcategory(ctx context.Context, categoryID, name, icon, ownerID string, now time.Time) (models.Subcategory, bool, error) {
	res, err := r.exec(ctx, `
		INSERT INTO subcategories (id, category_id, name, icon, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (category_id, name, owner_id) DO NOTHING`,
		NewID(), categoryID, name, icon, ownerID, formatTime(now))
	if err != nil {
		return models.Subcategory{}, false, fmt.Errorf("failed to ensure subcategory %q: %w", name, err)
	}
	created, err := affected(res)
	if err != nil {
		return models.Subcategory{}, false, err
	}

	s, err := scanSubcategory(r.queryRow(ctx, `
		SELECT `+subcategoryColumns+` FROM subcategories s
		WHERE s.category_id = ? AND s.name = ? AND s.owner_id = ?`,
		categoryID, name, ownerID))
	if err != nil {
		return models.Subcategory{}, false, fmt.Errorf("failed to read subcategory %q: %w", name, notFound(err))
	}
	return s, created, nil
}

func (r *sqlRepository) GetCategory(ctx context.Context, id string) (models.Category, error) {
	c, err := scanCategory(r.queryRow(ctx, `SELECT id, name, icon, created_at FROM categories WHERE id = ?`, id))
	if err != nil {
		return models.Category{}, notFound(err)
	}
	return c, nil
}

func (r *sqlRepository) GetSubcategory(ctx context.Context, id string) (models.Subcategory, error) {
	s, err := scanSubcategory(r.queryRow(ctx, `SELECT `+subcategoryColumns+` FROM subcategories s WHERE s.id = ?`, id))
	if err != nil {
		return models.Subcategory{}, notFound(err)
	}
	return s, nil
}

func (r *sqlRepository) ListSubcategories(ctx context.Context, ownerID string) ([]SubcategoryRef, error) {
	rows, err := r.query(ctx, `
		SELECT `+subcategoryColumns+`, c.name, c.icon
		FROM subcategories s
		JOIN categories c ON c.id = s.category_id
		WHERE s.owner_id = '' OR s.owner_id = ?
		ORDER BY s.created_at, s.name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subcategories: %w", err)
	}
	defer rows.Close()

	var refs []SubcategoryRef
	for rows.Next() {
		var ref SubcategoryRef
		s, err := scanSubcategory(rows, &ref.CategoryName, &ref.CategoryIcon)
		if err != nil {
			return nil, err
		}
		ref.Subcategory = s
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *sqlRepository) DeleteSubcategory(ctx context.Context, id string) error {
	res, err := r.exec(ctx, `DELETE FROM subcategories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subcategory: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Interests

const interestQuery = `
	SELECT ui.id, ui.owner_id, ui.subcategory_id, s.name, s.icon, s.owner_id, c.name, c.icon, ui.selected_at
	FROM user_interests ui
	JOIN subcategories s ON s.id = ui.subcategory_id
	JOIN categories c ON c.id = s.category_id`

func scanInterest(row scanner) (models.Interest, error) {
	var i models.Interest
	var subOwner, selectedAt string
	err := row.Scan(&i.ID, &i.OwnerID, &i.SubcategoryID, &i.SubcategoryName, &i.SubcategoryIcon,
		&subOwner, &i.CategoryName, &i.CategoryIcon, &selectedAt)
	if err != nil {
		return models.Interest{}, err
	}
	i.Custom = subOwner != ""
	i.SelectedAt, err = parseTime("selected_at", selectedAt)
	return i, err
}

func (r *sqlRepository) InsertInterest(ctx context.Context, ui models.UserInterest) (bool, error) {
	res, err := r.exec(ctx, `
		INSERT INTO user_interests (id, owner_id, subcategory_id, selected_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (owner_id, subcategory_id) DO NOTHING`,
		ui.ID, ui.OwnerID, ui.SubcategoryID, formatTime(ui.SelectedAt))
	if err != nil {
		return false, fmt.Errorf("failed to insert interest: %w", err)
	}
	return affected(res)
}

func (r *sqlRepository) GetInterest(ctx context.Context, id string) (models.Interest, error) {
	i, err := scanInterest(r.queryRow(ctx, interestQuery+` WHERE ui.id = ?`, id))
	if err != nil {
		return models.Interest{}, notFound(err)
	}
	return i, nil
}

func (r *sqlRepository) ListInterests(ctx context.Context, ownerID string) ([]models.Interest, error) {
	rows, err := r.query(ctx, interestQuery+`
		WHERE ui.owner_id = ?
		ORDER BY ui.selected_at DESC, s.name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	defer rows.Close()

	var interests []models.Interest
	for rows.Next() {
		i, err := scanInterest(rows)
		if err != nil {
			return nil, err
		}
		interests = append(interests, i)
	}
	return interests, rows.Err()
}

func (r *sqlRepository) DeleteInterest(ctx context.Context, id string) error {
	res, err := r.exec(ctx, `DELETE FROM user_interests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete interest: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Counters

const counterColumns = `id, owner_id, name, description, icon, started_at, created_at`

func scanCounter(row scanner) (models.Counter, error) {
	var c models.Counter
	var startedAt, createdAt string
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.Icon, &startedAt, &createdAt)
	if err != nil {
		return models.Counter{}, err
	}
	if c.StartedAt, err = parseTime("started_at", startedAt); err != nil {
		return models.Counter{}, err
	}
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Counter{}, err
	}
	return c, nil
}

func (r *sqlRepository) InsertCounter(ctx context.Context, c models.Counter) error {
	_, err := r.exec(ctx, `
		INSERT INTO counters (`+counterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Description, c.Icon, formatTime(c.StartedAt), formatTime(c.CreatedAt))
	if err != nil {
		if r.d.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert counter: %w", err)
	}
	return nil
}

func (r *sqlRepository) UpdateCounter(ctx context.Context, c models.Counter) error {
	res, err := r.exec(ctx, `
		UPDATE counters SET name = ?, description = ?, icon = ?, started_at = ?
		WHERE id = ?`,
		c.Name, c.Description, c.Icon, formatTime(c.StartedAt), c.ID)
	if err != nil {
		if r.d.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update counter: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRepository) GetCounter(ctx context.Context, id string) (models.Counter, error) {
	c, err := scanCounter(r.queryRow(ctx, `SELECT `+counterColumns+` FROM counters WHERE id = ?`, id))
	if err != nil {
		return models.Counter{}, notFound(err)
	}
	return c, nil
}

func (r *sqlRepository) ListCounters(ctx context.Context, ownerID string) ([]models.Counter, error) {
	rows, err := r.query(ctx, `
		SELECT `+counterColumns+` FROM counters
		WHERE owner_id = ?
		ORDER BY created_at, name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list counters: %w", err)
	}
	defer rows.Close()

	var counters []models.Counter
	for rows.Next() {
		c, err := scanCounter(rows)
		if err != nil {
			return nil, err
		}
		counters = append(counters, c)
	}
	return counters, rows.Err()
}

func (r *sqlRepository) DeleteCounter(ctx context.Context, id string) error {
	res, err := r.exec(ctx, `DELETE FROM counters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete counter: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
