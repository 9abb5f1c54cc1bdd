package migration

import (
	"database/sql"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReadMigrationFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    fstest.MapFS
		wantErr  string
		wantVers []int
	}{
		{
			name: "sorted by version",
			files: fstest.MapFS{
				"002_second.sql": {Data: []byte("SELECT 2;")},
				"001_first.sql":  {Data: []byte("SELECT 1;")},
				"010_tenth.sql":  {Data: []byte("SELECT 10;")},
				"README.md":      {Data: []byte("ignored")},
			},
			wantVers: []int{1, 2, 10},
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"001_a.sql": {Data: []byte("SELECT 1;")},
				"001_b.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "duplicate migration version 1",
		},
		{
			name:    "bad name",
			files:   fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "invalid migration filename format",
		},
		{
			name:    "version zero",
			files:   fstest.MapFS{"000_zero.sql": {Data: []byte("SELECT 1;")}},
			wantErr: "version must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(nil, tt.files, DriverSQLite)
			migrations, err := runner.ReadMigrationFiles()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadMigrationFiles() failed: %v", err)
			}
			if len(migrations) != len(tt.wantVers) {
				t.Fatalf("got %d migrations, want %d", len(migrations), len(tt.wantVers))
			}
			for i, v := range tt.wantVers {
				if migrations[i].Version != v {
					t.Errorf("migrations[%d].Version = %d, want %d", i, migrations[i].Version, v)
				}
			}
		})
	}
}

func TestApplyMigrationsSQLite(t *testing.T) {
	db := setupTestDB(t)
	files := fstest.MapFS{
		"001_init.sql":  {Data: []byte("CREATE TABLE habits (id TEXT PRIMARY KEY);")},
		"002_index.sql": {Data: []byte("CREATE INDEX idx_habits_id ON habits(id);")},
	}
	runner := NewRunner(db, files, DriverSQLite)

	var messages []string
	count, err := runner.ApplyMigrations(func(msg string) { messages = append(messages, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("applied %d migrations, want 2", count)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion() failed: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	// Second run is a no-op
	count, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("second run applied %d migrations, want 0", count)
	}
}

func TestApplyMigrationsRollsBackFailure(t *testing.T) {
	db := setupTestDB(t)
	files := fstest.MapFS{
		"001_init.sql":   {Data: []byte("CREATE TABLE habits (id TEXT PRIMARY KEY);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE broken (;")},
	}
	runner := NewRunner(db, files, DriverSQLite)

	count, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if count != 1 {
		t.Errorf("applied %d migrations before failure, want 1", count)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion() failed: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE habits (id TEXT PRIMARY KEY);")},
	}, DriverSQLite)

	if err := runner.EnsureSchemaVersionTable(); err != nil {
		t.Fatalf("EnsureSchemaVersionTable() failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (5)"); err != nil {
		t.Fatalf("failed to seed version: %v", err)
	}

	err := runner.ValidateVersion()
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() = %v, want newer-than-supported error", err)
	}
}

func TestApplyMigrationsPostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	migrationSQL := "CREATE TABLE habits (id TEXT PRIMARY KEY);"
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql": {Data: []byte(migrationSQL)},
	}, DriverPostgres)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_version").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_version")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(migrationSQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schema_version")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_version (version) VALUES ($1)")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	count, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("applied %d migrations, want 1", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStatus(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, fstest.MapFS{
		"001_init.sql":     {Data: []byte("CREATE TABLE habits (id TEXT PRIMARY KEY);")},
		"002_counters.sql": {Data: []byte("CREATE TABLE counters (id TEXT PRIMARY KEY);")},
	}, DriverSQLite)

	st, err := runner.Status()
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if st.Current != 0 || st.Latest != 2 || len(st.Pending) != 2 || st.UpToDate() {
		t.Fatalf("fresh Status() = %+v", st)
	}

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations() failed: %v", err)
	}

	st, err = runner.Status()
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if !st.UpToDate() || st.Newer() || st.Current != 2 {
		t.Errorf("migrated Status() = %+v", st)
	}
}
