package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/serviqo/serviqo-backend/pkg/migrate"
)

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestAccountsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_accounts.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS accounts",
		"email TEXT NOT NULL UNIQUE",
		"CHECK (role IN ('client', 'provider'))",
		"CHECK (balance_cents >= 0)",
		"DROP TABLE IF EXISTS accounts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBookingsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_bookings.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS bookings",
		"CHECK (amount_cents > 0)",
		"CHECK (status IN ('confirmed', 'cancelled'))",
		"FOREIGN KEY (client_id) REFERENCES accounts(id)",
		"FOREIGN KEY (service_id) REFERENCES service_listings(id)",
		"DROP TABLE IF EXISTS bookings",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestTransactionRecordsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_transaction_records.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transaction_records",
		"CHECK (type IN ('payment', 'refund'))",
		"CHECK (status IN ('completed', 'cancelled'))",
		"FOREIGN KEY (booking_id) REFERENCES bookings(id)",
		"DROP TABLE IF EXISTS transaction_records",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
