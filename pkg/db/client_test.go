package db

import (
	"context"
	"testing"

	"github.com/angelmondragon/cartsync/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewOpensSQLite(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          "file:client_test?mode=memory&cache=shared",
		MaxOpenConns: 2,
	}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() { _ = client.Close() }()

	if client.Driver() != config.DriverSQLite {
		t.Fatalf("unexpected driver %q", client.Driver())
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestDialectorForRejectsBadConfig(t *testing.T) {
	if _, err := dialectorFor(config.DBConfig{Driver: config.DriverPostgres}); err == nil {
		t.Fatal("expected missing DSN error")
	}
	if _, err := dialectorFor(config.DBConfig{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
	d, err := dialectorFor(config.DBConfig{Driver: config.DriverPostgres, DSN: "postgres://localhost/cartsync"})
	if err != nil {
		t.Fatalf("postgres dialector: %v", err)
	}
	if d.Name() != "postgres" {
		t.Fatalf("unexpected dialector %q", d.Name())
	}
}
