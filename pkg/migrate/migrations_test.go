package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awisniewski/tiredepot-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestStockItemsMigrationEnforcesInvariants(t *testing.T) {
	content := readMigration(t, "*_create_stock_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS stock_items",
		"CHECK (quantity_on_hand >= 0)",
		"CHECK (reserved_qty >= 0)",
		"CHECK (reserved_qty <= quantity_on_hand)",
		"DROP TABLE IF EXISTS stock_items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDepositsMigrationEnforcesLocationUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_deposits.sql")

	checks := []string{
		"CREATE TYPE deposit_status AS ENUM",
		"ux_deposits_location_stored",
		"WHERE status = 'stored'",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAppointmentsMigrationEnforcesWindowOrder(t *testing.T) {
	content := readMigration(t, "*_create_appointments.sql")

	if !strings.Contains(content, "CHECK (start_at < end_at)") {
		t.Error("missing start/end ordering check")
	}
	if !strings.Contains(content, "idx_appointments_resource_start") {
		t.Error("missing per-resource conflict index")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
