package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"go.tinydb/internal/storage"
)

func TestFreePageReuse(t *testing.T) {
	pager := openTestPager(t, filepath.Join(t.TempDir(), "db.dat"))

	for i := 0; i < 3; i++ {
		if _, err := pager.AllocatePage(storage.PageTypeLeaf); err != nil {
			t.Fatal(err)
		}
	}

	if err := pager.FreePage(2); err != nil {
		t.Fatal(err)
	}
	if err := pager.FreePage(3); err != nil {
		t.Fatal(err)
	}

	// Most recently freed comes back first; the file must not grow
	// while the list has entries.
	countBefore := pager.PageCount()
	p, err := pager.AllocatePage(storage.PageTypeInterior)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 3 {
		t.Fatalf("first reuse returned page %d, want 3", p.ID)
	}
	if p.Type() != storage.PageTypeInterior {
		t.Fatalf("reused page has type %d, want interior", p.Type())
	}

	p, err = pager.AllocatePage(storage.PageTypeLeaf)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 2 {
		t.Fatalf("second reuse returned page %d, want 2", p.ID)
	}
	if pager.PageCount() != countBefore {
		t.Fatalf("page count grew to %d during reuse, want %d", pager.PageCount(), countBefore)
	}

	// List drained: back to appending.
	p, err = pager.AllocatePage(storage.PageTypeLeaf)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != countBefore {
		t.Fatalf("post-reuse allocation returned page %d, want %d", p.ID, countBefore)
	}
}

func TestFreeListSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.dat")
	pager := openTestPager(t, path)

	for i := 0; i < 2; i++ {
		if _, err := pager.AllocatePage(storage.PageTypeLeaf); err != nil {
			t.Fatal(err)
		}
	}
	if err := pager.FreePage(1); err != nil {
		t.Fatal(err)
	}
	if err := pager.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openTestPager(t, path)
	p, err := reopened.AllocatePage(storage.PageTypeLeaf)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != 1 {
		t.Fatalf("reuse after reopen returned page %d, want 1", p.ID)
	}
}

func TestFreePageValidation(t *testing.T) {
	pager := openTestPager(t, filepath.Join(t.TempDir(), "db.dat"))

	if err := pager.FreePage(0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("FreePage(0) returned %v, want ErrInvalidInput", err)
	}
	if err := pager.FreePage(42); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("FreePage(42) returned %v, want ErrInvalidInput", err)
	}
}
