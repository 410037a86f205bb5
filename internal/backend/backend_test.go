package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finbot/internal/config"
	"finbot/internal/core"
)

func TestTypeIsValid(t *testing.T) {
	for _, valid := range []Type{Memory, SQLite, Sheets} {
		if !valid.IsValid() {
			t.Errorf("%s should be valid", valid)
		}
	}
	if Type("postgres").IsValid() {
		t.Error("postgres should not be valid")
	}
	if Type("").IsValid() {
		t.Error("empty type should not be valid")
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(nil)
	result, err := f.Create(context.Background(), &config.Config{DataBackend: "memory"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Store == nil {
		t.Fatal("store is nil")
	}
	if result.Cleanup != nil {
		t.Fatal("memory backend needs no cleanup")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	f := NewFactory(nil)
	cfg := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "test.db"),
	}
	result, err := f.Create(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer result.Cleanup()

	m, err := core.ParseMoney("10.50")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	spending := core.NewSpending(time.Now(), m, "coffee")
	row, err := result.Store.Append(context.Background(), spending)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if row != 1 {
		t.Fatalf("unexpected row: %d", row)
	}
}

func TestCreateRejectsUnknownBackend(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.Create(context.Background(), &config.Config{DataBackend: "postgres"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
