package storage

import "encoding/binary"

const PageSize = 4096

// First four bytes of page 0, little-endian.
const MagicNumber uint32 = 0x12345678

const (
	MaxIdentifierLength = 64
	MaxColumns          = 32
)

type PageType uint32

const (
	PageTypeHeader PageType = iota // page 0 only
	PageTypeLeaf
	PageTypeInterior
	PageTypeCatalog
	PageTypeOverflow
	PageTypeFree
)

// Every non-zero page starts with the same 12 byte header:
// pageType uint32 | nextPage uint32 | entryCount uint32
const (
	pageTypeOffset   = 0
	nextPageOffset   = 4
	entryCountOffset = 8
	pageHeaderSize   = 12
)

// Node capacity derived from the page size. The 4 subtracted bytes are
// the n+1-th child pointer of an interior node, which makes the interior
// layout fill the page exactly: 12 + 510*4 + 511*4 = 4096.
const (
	MaxKeys = (PageSize - pageHeaderSize - 4) / 8
	MinKeys = MaxKeys / 2
)

type Page struct {
	ID   uint32
	Data []byte
}

func NewPage(id uint32) *Page {
	return &Page{
		ID:   id,
		Data: make([]byte, PageSize),
	}
}

func (p *Page) Type() PageType {
	return PageType(binary.LittleEndian.Uint32(p.Data[pageTypeOffset : pageTypeOffset+4]))
}

func (p *Page) SetType(t PageType) {
	binary.LittleEndian.PutUint32(p.Data[pageTypeOffset:pageTypeOffset+4], uint32(t))
}

func (p *Page) NextPage() uint32 {
	return binary.LittleEndian.Uint32(p.Data[nextPageOffset : nextPageOffset+4])
}

func (p *Page) SetNextPage(n uint32) {
	binary.LittleEndian.PutUint32(p.Data[nextPageOffset:nextPageOffset+4], n)
}

// EntryCount is the number of live slots on the page: keys on an
// interior page, records on a leaf, payload bytes on an overflow page,
// catalog entries on the catalog anchor.
func (p *Page) EntryCount() int {
	return int(binary.LittleEndian.Uint32(p.Data[entryCountOffset : entryCountOffset+4]))
}

func (p *Page) SetEntryCount(n int) {
	binary.LittleEndian.PutUint32(p.Data[entryCountOffset:entryCountOffset+4], uint32(n))
}
