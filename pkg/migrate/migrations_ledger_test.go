package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ordercash/ordercash-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CONSTRAINT uniq_orders_tenant_number UNIQUE (tenant_id, number)",
		"CHECK (balance >= 0)",
		"order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAccountsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_payments_and_accounts.sql")

	checks := []string{
		"CONSTRAINT uniq_accounts_tenant_method UNIQUE (tenant_id, payment_method_id)",
		"account_id UUID NOT NULL REFERENCES accounts(id)",
		"CHECK (amount > 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
