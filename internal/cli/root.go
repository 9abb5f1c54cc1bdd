package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitd/internal/backup"
	"github.com/julianstephens/habitd/internal/catalog"
	"github.com/julianstephens/habitd/internal/counters"
	"github.com/julianstephens/habitd/internal/habits"
	"github.com/julianstephens/habitd/internal/interests"
	"github.com/julianstephens/habitd/internal/logger"
	"github.com/julianstephens/habitd/internal/migration"
	"github.com/julianstephens/habitd/internal/storage"
	"github.com/julianstephens/habitd/internal/utils"
)

type Context struct {
	Store     storage.Provider
	Clock     utils.Clock
	Owner     string
	Catalog   *catalog.Catalog
	Habits    *habits.Service
	Interests *interests.Service
	Counters  *counters.Service
}

// NewContext wires the services over store for one owner
func NewContext(store storage.Provider, clock utils.Clock, owner string) *Context {
	cat := catalog.MustDefault()
	return &Context{
		Store:     store,
		Clock:     clock,
		Owner:     owner,
		Catalog:   cat,
		Habits:    habits.NewService(store, cat, clock),
		Interests: interests.NewService(store, cat, clock),
		Counters:  counters.NewService(store, clock),
	}
}

// ConfigDir is the directory holding the database, logs and lockfile.
// PostgreSQL stores fall back to the default SQLite location.
func (c *Context) ConfigDir() string {
	if c.Store.Driver() == migration.DriverSQLite {
		return filepath.Dir(c.Store.GetConfigPath())
	}
	return filepath.Dir(ExpandHome(DefaultDBPath()))
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if c.Store.Driver() != migration.DriverSQLite {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	DangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	HeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// ProgressBar renders streak progress toward a target, e.g. [####------] 4/10
func ProgressBar(streak, target, width int) string {
	if target <= 0 {
		return ""
	}
	filled := streak * width / target
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %d/%d", strings.Repeat("#", filled), strings.Repeat("-", width-filled), streak, target)
}

// ShortID returns the first segment of a UUID for display
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
