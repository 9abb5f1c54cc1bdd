package models

import "time"

// Habit is a user-defined practice tracked toward a target number of
// consecutive days. Done is terminal: once set it is never cleared.
type Habit struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	CategoryID    string    `json:"category_id,omitempty"`
	SubcategoryID string    `json:"subcategory_id,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	DurationDays  int       `json:"duration_days"`
	Done          bool      `json:"done"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProgressRecord marks a habit as performed on one calendar day
type ProgressRecord struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at"`
}

// HabitWithStreak is a habit annotated with its current streak
type HabitWithStreak struct {
	Habit
	CurrentStreak int `json:"current_streak"`
}

// Completion is the outcome of marking a habit done for today
type Completion struct {
	HabitID string `json:"habit_id"`
	Day     string `json:"day"`
	Streak  int    `json:"streak"`
	Done    bool   `json:"done"`
}

// HabitTree groups an owner's habits under the taxonomy
type HabitTree struct {
	Categories    []CategoryNode    `json:"categories"`
	Uncategorized []HabitWithStreak `json:"uncategorized"`
}

// CategoryNode is one category of the tree. Habits holds habits filed
// under the category without a subcategory.
type CategoryNode struct {
	Name          string            `json:"name"`
	Icon          string            `json:"icon"`
	Subcategories []SubcategoryNode `json:"subcategories"`
	Habits        []HabitWithStreak `json:"habits,omitempty"`
}

type SubcategoryNode struct {
	Name   string            `json:"name"`
	Icon   string            `json:"icon"`
	Custom bool              `json:"custom,omitempty"`
	Habits []HabitWithStreak `json:"habits"`
}
