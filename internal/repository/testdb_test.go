package repository

import (
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// testDB подключается к базе из TEST_DATABASE_URL и накатывает миграции.
// Без переменной окружения тесты пакета пропускаются: логика путей и
// блокировок проверяется только против живого Postgres.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	m, err := migrate.New("file://../../migrations", url)
	if err != nil {
		t.Fatalf("failed to create migrate instance: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to run migrations: %v", err)
	}
	m.Close()

	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	t.Cleanup(func() {
		db.MustExec("DELETE FROM shares")
		db.MustExec("DELETE FROM files")
		db.MustExec("DELETE FROM folders")
		db.MustExec("DELETE FROM storage_quotas")
		db.Close()
	})

	return db
}
