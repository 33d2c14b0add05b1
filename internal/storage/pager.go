package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"go.tinydb/internal/logger"
)

// Free list head pointer, stored on the header page right after the
// magic number. Zero means the list is empty, so a fresh header page is
// still magic-then-zeros.
const freeHeadOffset = 4

// Pager owns the database file handle and the authoritative page count.
// All I/O goes through it, one full page at a time, and every write is
// flushed before the call returns.
type Pager struct {
	file      *os.File
	path      string
	pageCount uint32
	freeHead  uint32
	log       *logger.Logger
}

// Open a database file. A missing file is created with the reserved
// header page; an existing file must carry the magic number and be an
// exact multiple of the page size, otherwise it is corrupt and open
// fails without recovery. The handle is closed on every error path.
func Open(path string, log *logger.Logger) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0666)
	if errors.Is(err, os.ErrNotExist) {
		f, err = createDatabase(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrFileIO, path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", ErrFileIO, path, err)
	}

	size := info.Size()
	if size%PageSize != 0 {
		f.Close()
		return nil, fmt.Errorf("%w: size %d is not a multiple of the page size", ErrCorruptFile, size)
	}

	header := make([]byte, pageHeaderSize)
	if _, err := f.ReadAt(header, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading header page: %v", ErrFileIO, err)
	}
	if binary.LittleEndian.Uint32(header[0:4]) != MagicNumber {
		f.Close()
		return nil, fmt.Errorf("%w", ErrInvalidFileSig)
	}

	p := &Pager{
		file:      f,
		path:      path,
		pageCount: uint32(size / PageSize),
		freeHead:  binary.LittleEndian.Uint32(header[freeHeadOffset : freeHeadOffset+4]),
		log:       log,
	}
	p.log.Debugf("opened %s: %d pages, free head %d", path, p.pageCount, p.freeHead)
	return p, nil
}

func createDatabase(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create file %s: %w", path, err)
	}

	header := make([]byte, PageSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicNumber)

	if _, err := f.WriteAt(header, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header page to %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (pager *Pager) PageCount() uint32 {
	return pager.pageCount
}

func (pager *Pager) ReadPage(id uint32) (*Page, error) {
	if pager.file == nil {
		return nil, fmt.Errorf("%w: ReadPage(%d): %v", ErrInvalidInput, id, ErrClosed)
	}
	if id >= pager.pageCount {
		return nil, fmt.Errorf("%w: ReadPage(%d): page count is %d", ErrInvalidInput, id, pager.pageCount)
	}

	p := NewPage(id)
	if _, err := pager.file.ReadAt(p.Data, int64(id)*PageSize); err != nil {
		return nil, fmt.Errorf("%w: reading page %d: %v", ErrFileIO, id, err)
	}
	return p, nil
}

func (pager *Pager) WritePage(p *Page) error {
	if pager.file == nil {
		return fmt.Errorf("%w: WritePage: %v", ErrInvalidInput, ErrClosed)
	}
	if p == nil || len(p.Data) != PageSize {
		return fmt.Errorf("%w: WritePage: buffer must be exactly one page", ErrInvalidInput)
	}
	if p.ID >= pager.pageCount {
		return fmt.Errorf("%w: WritePage(%d): page count is %d", ErrInvalidInput, p.ID, pager.pageCount)
	}

	if _, err := pager.file.WriteAt(p.Data, int64(p.ID)*PageSize); err != nil {
		return fmt.Errorf("%w: writing page %d: %v", ErrFileIO, p.ID, err)
	}
	if err := pager.file.Sync(); err != nil {
		return fmt.Errorf("%w: syncing page %d: %v", ErrFileIO, p.ID, err)
	}
	return nil
}

// AllocatePage returns a zeroed page stamped with the given type,
// durably on disk before the call returns. Reclaimed pages are reused
// from the free list first; otherwise the file grows by one page.
func (pager *Pager) AllocatePage(t PageType) (*Page, error) {
	if pager.file == nil {
		return nil, fmt.Errorf("%w: AllocatePage: %v", ErrFileIO, ErrClosed)
	}

	if pager.freeHead != 0 {
		return pager.allocateFromFreeList(t)
	}

	p := NewPage(pager.pageCount)
	p.SetType(t)

	if _, err := pager.file.WriteAt(p.Data, int64(p.ID)*PageSize); err != nil {
		return nil, fmt.Errorf("%w: extending file for page %d: %v", ErrPageAllocation, p.ID, err)
	}
	if err := pager.file.Sync(); err != nil {
		return nil, fmt.Errorf("%w: syncing page %d: %v", ErrPageAllocation, p.ID, err)
	}

	pager.pageCount++
	return p, nil
}

func (pager *Pager) allocateFromFreeList(t PageType) (*Page, error) {
	head, err := pager.ReadPage(pager.freeHead)
	if err != nil {
		return nil, err
	}
	if head.Type() != PageTypeFree {
		return nil, fmt.Errorf("%w: page %d on the free list has type %d", ErrCorruptList, head.ID, head.Type())
	}

	next := head.NextPage()

	p := NewPage(head.ID)
	p.SetType(t)
	if err := pager.WritePage(p); err != nil {
		return nil, fmt.Errorf("%w: reusing page %d: %v", ErrPageAllocation, p.ID, err)
	}

	if err := pager.setFreeHead(next); err != nil {
		return nil, err
	}
	pager.log.Debugf("reused page %d from free list, head now %d", p.ID, next)
	return p, nil
}

// FreePage rewrites the page as a FREE page threaded onto the free
// list, making its number available to a later AllocatePage. Page 0 can
// never be freed.
func (pager *Pager) FreePage(id uint32) error {
	if pager.file == nil {
		return fmt.Errorf("%w: FreePage: %v", ErrFileIO, ErrClosed)
	}
	if id == 0 || id >= pager.pageCount {
		return fmt.Errorf("%w: FreePage(%d): page count is %d", ErrInvalidInput, id, pager.pageCount)
	}

	p := NewPage(id)
	p.SetType(PageTypeFree)
	p.SetNextPage(pager.freeHead)

	if err := pager.WritePage(p); err != nil {
		return err
	}
	return pager.setFreeHead(id)
}

func (pager *Pager) setFreeHead(id uint32) error {
	header, err := pager.ReadPage(0)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(header.Data[freeHeadOffset:freeHeadOffset+4], id)
	if err := pager.WritePage(header); err != nil {
		return err
	}
	pager.freeHead = id
	return nil
}

// Close is idempotent; reads and writes after Close fail.
func (pager *Pager) Close() error {
	if pager.file == nil {
		return nil
	}
	err := pager.file.Close()
	pager.file = nil
	if err != nil {
		return fmt.Errorf("%w: closing %s: %v", ErrFileIO, pager.path, err)
	}
	return nil
}
