//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expentra/expentra/internal/testutil"
)

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	for _, table := range []string{"users", "access_tokens", "expenses"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_ExpensesSchema(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	expectedColumns := []string{
		"id",
		"description",
		"amount",
		"type",
		"user_id",
		"payment_date",
		"is_active",
		"created_by",
		"created_date",
		"updated_by",
		"updated_date",
		"deleted_by",
		"deleted_date",
	}

	for _, col := range expectedColumns {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, pool, "expenses", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in expenses table", col)
			}
		})
	}
}

func TestIntegrationMigration_AmountCheckConstraint(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	user := testutil.NewTestUser(t, "constraint@example.com")
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_date)
		VALUES ($1, $2, 'x', NOW())
	`, user.ID, user.Email)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}

	// The storage layer rejects negative amounts on its own, even if
	// input validation were bypassed.
	_, err = pool.Exec(ctx, `
		INSERT INTO expenses (id, description, amount, type, user_id)
		VALUES ('exp-neg', 'bad', -5.00, 'comestibles', $1)
	`, user.ID)
	if err == nil {
		t.Error("Expected check constraint violation for negative amount")
	}
}

func TestIntegrationMigration_UserCascadeDeletesExpenses(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	user := testutil.NewTestUser(t, "cascade@example.com")
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, created_date)
		VALUES ($1, $2, 'x', NOW())
	`, user.ID, user.Email)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO expenses (id, description, amount, type, user_id)
		VALUES ('exp-cascade', 'ok', 10.00, 'comestibles', $1)
	`, user.ID)
	if err != nil {
		t.Fatalf("insert expense: %v", err)
	}

	if _, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id = $1`, user.ID).Scan(&count); err != nil {
		t.Fatalf("count expenses: %v", err)
	}
	if count != 0 {
		t.Errorf("expected cascade to remove expenses, found %d", count)
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	return ctx, pool
}
