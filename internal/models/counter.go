package models

import "time"

// Counter tracks the time elapsed since an event, e.g. the last cigarette
type Counter struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Elapsed returns the time since StartedAt, never negative
func (c Counter) Elapsed(now time.Time) time.Duration {
	d := now.Sub(c.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Days returns the number of whole days since StartedAt
func (c Counter) Days(now time.Time) int {
	return int(c.Elapsed(now) / (24 * time.Hour))
}
