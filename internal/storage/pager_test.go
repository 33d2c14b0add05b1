package storage_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.tinydb/internal/logger"
	"go.tinydb/internal/storage"
)

func openTestPager(t *testing.T, path string) *storage.Pager {
	t.Helper()
	pager, err := storage.Open(path, logger.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { pager.Close() })
	return pager
}

func TestOpenFreshFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.dat")
	pager := openTestPager(t, path)

	if got := pager.PageCount(); got != 1 {
		t.Fatalf("fresh file page count = %d, want 1", got)
	}

	header, err := pager.ReadPage(0)
	if err != nil {
		t.Fatalf("ReadPage(0) failed: %v", err)
	}
	if magic := binary.LittleEndian.Uint32(header.Data[0:4]); magic != storage.MagicNumber {
		t.Fatalf("header magic = %#x, want %#x", magic, storage.MagicNumber)
	}
	for i, b := range header.Data[8:] {
		if b != 0 {
			t.Fatalf("header page byte %d is %#x, want zero", i+8, b)
		}
	}
}

func TestAllocationSequence(t *testing.T) {
	pager := openTestPager(t, filepath.Join(t.TempDir(), "db.dat"))

	const n = 8
	for i := 1; i <= n; i++ {
		page, err := pager.AllocatePage(storage.PageTypeLeaf)
		if err != nil {
			t.Fatalf("AllocatePage %d failed: %v", i, err)
		}
		if page.ID != uint32(i) {
			t.Fatalf("allocation %d returned page %d", i, page.ID)
		}
		if got := pager.PageCount(); got != uint32(i+1) {
			t.Fatalf("page count after allocation %d = %d, want %d", i, got, i+1)
		}
	}
}

// The end-to-end scenario: fresh file, one allocation, a page of 0xAA
// surviving close and reopen byte for byte.
func TestPageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.dat")
	pager := openTestPager(t, path)

	if got := pager.PageCount(); got != 1 {
		t.Fatalf("page count = %d, want 1", got)
	}

	page, err := pager.AllocatePage(storage.PageTypeLeaf)
	if err != nil {
		t.Fatal(err)
	}
	if page.ID != 1 || pager.PageCount() != 2 {
		t.Fatalf("allocated page %d, count %d; want 1, 2", page.ID, pager.PageCount())
	}

	for i := range page.Data {
		page.Data[i] = 0xAA
	}
	if err := pager.WritePage(page); err != nil {
		t.Fatal(err)
	}
	if err := pager.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openTestPager(t, path)
	got, err := reopened.ReadPage(1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Data, page.Data) {
		t.Fatal("page content changed across close/reopen")
	}
}

func TestOpenRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.dat")
	if err := os.WriteFile(path, make([]byte, 5000), 0666); err != nil {
		t.Fatal(err)
	}

	_, err := storage.Open(path, logger.Nop())
	if !errors.Is(err, storage.ErrCorruptFile) {
		t.Fatalf("open of misaligned file returned %v, want ErrCorruptFile", err)
	}
}

func TestOpenRejectsBadSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.dat")
	if err := os.WriteFile(path, make([]byte, storage.PageSize), 0666); err != nil {
		t.Fatal(err)
	}

	_, err := storage.Open(path, logger.Nop())
	if !errors.Is(err, storage.ErrInvalidFileSig) {
		t.Fatalf("open of zeroed file returned %v, want ErrInvalidFileSig", err)
	}
}

func TestOutOfRangeAccess(t *testing.T) {
	pager := openTestPager(t, filepath.Join(t.TempDir(), "db.dat"))

	if _, err := pager.ReadPage(99); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("ReadPage(99) returned %v, want ErrInvalidInput", err)
	}
	if err := pager.WritePage(storage.NewPage(99)); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("WritePage(99) returned %v, want ErrInvalidInput", err)
	}
}

func TestAccessAfterClose(t *testing.T) {
	pager := openTestPager(t, filepath.Join(t.TempDir(), "db.dat"))
	if err := pager.Close(); err != nil {
		t.Fatal(err)
	}
	// Close is idempotent.
	if err := pager.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := pager.ReadPage(0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("ReadPage after close returned %v, want ErrInvalidInput", err)
	}
	if _, err := pager.AllocatePage(storage.PageTypeLeaf); !errors.Is(err, storage.ErrFileIO) {
		t.Fatalf("AllocatePage after close returned %v, want ErrFileIO", err)
	}
}
