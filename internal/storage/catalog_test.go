package storage_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.tinydb/internal/logger"
	"go.tinydb/internal/storage"
)

func openTestCatalog(t *testing.T, path string) (*storage.Pager, *storage.Catalog) {
	t.Helper()
	pager := openTestPager(t, path)
	catalog, err := storage.OpenCatalog(pager, logger.Nop())
	if err != nil {
		t.Fatalf("OpenCatalog failed: %v", err)
	}
	return pager, catalog
}

func sampleColumns() []storage.ColumnDefinition {
	return []storage.ColumnDefinition{
		{Name: "id", Type: storage.DataTypeInteger},
		{Name: "name", Type: storage.DataTypeString, Size: 32},
		{Name: "score", Type: storage.DataTypeDouble},
	}
}

func TestCreateAndLookupTable(t *testing.T) {
	_, catalog := openTestCatalog(t, filepath.Join(t.TempDir(), "db.dat"))

	cols := sampleColumns()
	root, err := catalog.CreateTable("users", cols)
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if root == 0 {
		t.Fatal("CreateTable returned root page 0")
	}

	meta, err := catalog.LookupTable("users")
	if err != nil {
		t.Fatalf("LookupTable failed: %v", err)
	}
	if meta.Name != "users" || meta.RootPage != root {
		t.Fatalf("metadata = %q root %d, want %q root %d", meta.Name, meta.RootPage, "users", root)
	}
	if !reflect.DeepEqual(meta.Columns, cols) {
		t.Fatalf("columns = %+v, want %+v", meta.Columns, cols)
	}
}

func TestCreateTableDuplicate(t *testing.T) {
	_, catalog := openTestCatalog(t, filepath.Join(t.TempDir(), "db.dat"))

	if _, err := catalog.CreateTable("users", sampleColumns()); err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.CreateTable("users", sampleColumns()); !errors.Is(err, storage.ErrTableExists) {
		t.Fatalf("duplicate CreateTable returned %v, want ErrTableExists", err)
	}
}

func TestCreateTableValidation(t *testing.T) {
	_, catalog := openTestCatalog(t, filepath.Join(t.TempDir(), "db.dat"))
	cols := sampleColumns()

	if _, err := catalog.CreateTable(strings.Repeat("x", 64), cols); !errors.Is(err, storage.ErrNameTooLong) {
		t.Fatalf("64 char name returned %v, want ErrNameTooLong", err)
	}
	if _, err := catalog.CreateTable("", cols); !errors.Is(err, storage.ErrNameTooLong) {
		t.Fatalf("empty name returned %v, want ErrNameTooLong", err)
	}

	wide := make([]storage.ColumnDefinition, storage.MaxColumns+1)
	for i := range wide {
		wide[i] = storage.ColumnDefinition{Name: "c", Type: storage.DataTypeInteger}
	}
	if _, err := catalog.CreateTable("wide", wide); !errors.Is(err, storage.ErrTooManyCols) {
		t.Fatalf("%d columns returned %v, want ErrTooManyCols", len(wide), err)
	}

	if _, err := catalog.CreateTable("empty", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("zero columns returned %v, want ErrInvalidInput", err)
	}

	unsized := []storage.ColumnDefinition{{Name: "s", Type: storage.DataTypeString}}
	if _, err := catalog.CreateTable("unsized", unsized); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("sizeless STRING column returned %v, want ErrInvalidInput", err)
	}
}

func TestCatalogPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.dat")
	pager, catalog := openTestCatalog(t, path)

	tables := []string{"users", "orders", "items"}
	roots := make(map[string]uint32)
	for _, name := range tables {
		root, err := catalog.CreateTable(name, sampleColumns())
		if err != nil {
			t.Fatalf("CreateTable %s failed: %v", name, err)
		}
		roots[name] = root
	}
	if count, err := catalog.TableCount(); err != nil || count != len(tables) {
		t.Fatalf("TableCount = (%d, %v), want %d", count, err, len(tables))
	}
	if err := pager.Close(); err != nil {
		t.Fatal(err)
	}

	_, reopened := openTestCatalog(t, path)
	for _, name := range tables {
		meta, err := reopened.LookupTable(name)
		if err != nil {
			t.Fatalf("LookupTable %s after reopen failed: %v", name, err)
		}
		if meta.RootPage != roots[name] {
			t.Fatalf("table %s root = %d after reopen, want %d", name, meta.RootPage, roots[name])
		}
	}
	if count, err := reopened.TableCount(); err != nil || count != len(tables) {
		t.Fatalf("TableCount after reopen = (%d, %v), want %d", count, err, len(tables))
	}
}

func TestUpdateTableRoot(t *testing.T) {
	_, catalog := openTestCatalog(t, filepath.Join(t.TempDir(), "db.dat"))

	if _, err := catalog.CreateTable("users", sampleColumns()); err != nil {
		t.Fatal(err)
	}
	if err := catalog.UpdateTableRoot("users", 77); err != nil {
		t.Fatalf("UpdateTableRoot failed: %v", err)
	}

	meta, err := catalog.LookupTable("users")
	if err != nil {
		t.Fatal(err)
	}
	if meta.RootPage != 77 {
		t.Fatalf("root after update = %d, want 77", meta.RootPage)
	}

	if err := catalog.UpdateTableRoot("ghost", 5); !errors.Is(err, storage.ErrTableNotFound) {
		t.Fatalf("UpdateTableRoot on missing table returned %v, want ErrTableNotFound", err)
	}
}

func TestLookupMissingTable(t *testing.T) {
	_, catalog := openTestCatalog(t, filepath.Join(t.TempDir(), "db.dat"))

	if _, err := catalog.LookupTable("nope"); !errors.Is(err, storage.ErrTableNotFound) {
		t.Fatalf("LookupTable returned %v, want ErrTableNotFound", err)
	}
}
