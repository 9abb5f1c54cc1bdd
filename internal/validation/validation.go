package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/habitd/internal/errors"
)

// ProblemType represents the type of validation problem
type ProblemType string

const (
	ProblemBlankName          ProblemType = "blank_name"
	ProblemTooLong            ProblemType = "too_long"
	ProblemInvalidDuration    ProblemType = "invalid_duration"
	ProblemUnresolvedInterest ProblemType = "unresolved_interest"
	ProblemOverlap            ProblemType = "overlap"
	ProblemAlreadySelected    ProblemType = "already_selected"
	ProblemNotSelected        ProblemType = "not_selected"
)

const (
	MaxNameLength        = 255
	MaxDescriptionLength = 500
	MaxIconLength        = 5
)

// Problem is a single failed check
type Problem struct {
	Type        ProblemType
	Description string
	Items       []string // Names involved
}

// Kind returns the error kind a problem maps to
func (p Problem) Kind() errors.Kind {
	if p.Type == ProblemAlreadySelected {
		return errors.Conflict
	}
	return errors.InvalidArgument
}

// Result collects every problem found by a validation pass
type Result struct {
	Problems []Problem
}

// Add records a problem
func (r *Result) Add(t ProblemType, items []string, format string, args ...interface{}) {
	r.Problems = append(r.Problems, Problem{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		Items:       items,
	})
}

// HasProblems returns true if any check failed
func (r *Result) HasProblems() bool {
	return len(r.Problems) > 0
}

// FormatReport returns a human-readable report of all problems
func (r *Result) FormatReport() string {
	if !r.HasProblems() {
		return "No problems detected."
	}

	var b strings.Builder
	b.WriteString("Problems detected:\n")
	for _, p := range r.Problems {
		fmt.Fprintf(&b, "- %s\n", p.Description)
	}
	return b.String()
}

// Err converts the result into a classified error, or nil when every check
// passed. The error is InvalidArgument when any problem is of that class and
// Conflict otherwise.
func (r *Result) Err() error {
	if !r.HasProblems() {
		return nil
	}

	kind := errors.Conflict
	details := make([]string, 0, len(r.Problems))
	for _, p := range r.Problems {
		if p.Kind() == errors.InvalidArgument {
			kind = errors.InvalidArgument
		}
		details = append(details, p.Description)
	}
	return errors.WithDetails(kind, details)
}

// HabitFields are the user-supplied attributes of a habit
type HabitFields struct {
	Name         string
	Description  string
	Icon         string
	DurationDays int
}

// ValidateHabit checks habit input without touching storage
func ValidateHabit(f HabitFields) Result {
	var result Result

	name := strings.TrimSpace(f.Name)
	if name == "" {
		result.Add(ProblemBlankName, nil, "Name is required")
	} else if utf8.RuneCountInString(name) > MaxNameLength {
		result.Add(ProblemTooLong, []string{name}, "Name must be at most %d characters", MaxNameLength)
	}

	if utf8.RuneCountInString(f.Description) > MaxDescriptionLength {
		result.Add(ProblemTooLong, nil, "Description must be at most %d characters", MaxDescriptionLength)
	}
	if utf8.RuneCountInString(f.Icon) > MaxIconLength {
		result.Add(ProblemTooLong, nil, "Icon must be at most %d characters", MaxIconLength)
	}

	if f.DurationDays <= 0 {
		result.Add(ProblemInvalidDuration, nil, "Duration must be a positive number of days, got %d", f.DurationDays)
	}

	return result
}

// InterestDiff is a requested bulk change to an owner's interests
type InterestDiff struct {
	Add    []string
	Remove []string
}

// ValidateInterestDiff runs every diff check and reports all failures at
// once. resolves reports whether a name exists in the catalog; selected
// holds the names the owner currently has.
func ValidateInterestDiff(diff InterestDiff, resolves func(string) bool, selected map[string]bool) Result {
	var result Result

	add := Normalize(diff.Add)
	remove := Normalize(diff.Remove)

	var unresolved []string
	for _, name := range add {
		if !resolves(name) {
			unresolved = append(unresolved, name)
		}
	}
	if len(unresolved) > 0 {
		result.Add(ProblemUnresolvedInterest, unresolved, "Unknown interests: %s", strings.Join(unresolved, ", "))
	}

	removeSet := make(map[string]bool, len(remove))
	for _, name := range remove {
		removeSet[name] = true
	}
	var overlap []string
	for _, name := range add {
		if removeSet[name] {
			overlap = append(overlap, name)
		}
	}
	if len(overlap) > 0 {
		result.Add(ProblemOverlap, overlap, "Interests cannot be both added and removed: %s", strings.Join(overlap, ", "))
	}

	var already []string
	for _, name := range add {
		if selected[name] {
			already = append(already, name)
		}
	}
	if len(already) > 0 {
		result.Add(ProblemAlreadySelected, already, "Interests already selected: %s", strings.Join(already, ", "))
	}

	var missing []string
	for _, name := range remove {
		if !selected[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		result.Add(ProblemNotSelected, missing, "Interests not selected: %s", strings.Join(missing, ", "))
	}

	return result
}

// Normalize trims names, drops blanks and removes duplicates while keeping
// first-seen order.
func Normalize(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
