package storage

import (
	"encoding/binary"
	"fmt"
)

type RecordFlag uint32

const (
	RecordLive RecordFlag = iota
	RecordDeleted
)

// RecordHeader precedes every record payload in a leaf:
// recordFlag uint32 | payloadSize uint32 | overflowPage uint32
// payloadSize is the total payload length; overflowPage is the first
// page of the continuation chain, 0 when the payload is fully inline.
const recordHeaderSize = 12

type RecordHeader struct {
	Flag         RecordFlag
	PayloadSize  uint32
	OverflowPage uint32
}

func readRecordHeader(data []byte, off int) RecordHeader {
	return RecordHeader{
		Flag:         RecordFlag(binary.LittleEndian.Uint32(data[off : off+4])),
		PayloadSize:  binary.LittleEndian.Uint32(data[off+4 : off+8]),
		OverflowPage: binary.LittleEndian.Uint32(data[off+8 : off+12]),
	}
}

func writeRecordHeader(data []byte, off int, h RecordHeader) {
	binary.LittleEndian.PutUint32(data[off:off+4], uint32(h.Flag))
	binary.LittleEndian.PutUint32(data[off+4:off+8], h.PayloadSize)
	binary.LittleEndian.PutUint32(data[off+8:off+12], h.OverflowPage)
}

// Each overflow page holds up to this many payload bytes after its
// header; entryCount records how many are live and nextPage links the
// chain.
const overflowCapacity = PageSize - pageHeaderSize

func writeOverflowChain(pager *Pager, payload []byte) (uint32, error) {
	pageCount := (len(payload) + overflowCapacity - 1) / overflowCapacity

	pages := make([]*Page, pageCount)
	for i := range pages {
		p, err := pager.AllocatePage(PageTypeOverflow)
		if err != nil {
			return 0, err
		}
		pages[i] = p
	}

	for i, p := range pages {
		chunk := payload[i*overflowCapacity:]
		if len(chunk) > overflowCapacity {
			chunk = chunk[:overflowCapacity]
		}
		if i+1 < len(pages) {
			p.SetNextPage(pages[i+1].ID)
		}
		p.SetEntryCount(len(chunk))
		copy(p.Data[pageHeaderSize:], chunk)
		if err := pager.WritePage(p); err != nil {
			return 0, err
		}
	}
	return pages[0].ID, nil
}

func readOverflowChain(pager *Pager, first uint32) ([]byte, error) {
	var out []byte
	for id := first; id != 0; {
		p, err := pager.ReadPage(id)
		if err != nil {
			return nil, err
		}
		if p.Type() != PageTypeOverflow {
			return nil, fmt.Errorf("%w: page %d in overflow chain has type %d", ErrCorruptTree, id, p.Type())
		}
		size := p.EntryCount()
		if size < 0 || size > overflowCapacity {
			return nil, fmt.Errorf("%w: overflow page %d claims %d bytes", ErrCorruptTree, id, size)
		}
		out = append(out, p.Data[pageHeaderSize:pageHeaderSize+size]...)
		id = p.NextPage()
	}
	return out, nil
}

func freeOverflowChain(pager *Pager, first uint32) error {
	for id := first; id != 0; {
		p, err := pager.ReadPage(id)
		if err != nil {
			return err
		}
		next := p.NextPage()
		if err := pager.FreePage(id); err != nil {
			return err
		}
		id = next
	}
	return nil
}

// writeLeafRecord places a record and its sorted slot on the leaf,
// spilling whatever payload does not fit inline onto a fresh overflow
// chain. The caller must have checked HasRoom(); the page is not
// written to disk here.
func writeLeafRecord(pager *Pager, leaf *LeafPage, key uint32, payload []byte) error {
	n := leaf.NumRecords()
	idx, found := leaf.FindSlot(key)
	if found {
		return fmt.Errorf("%w: key %d", ErrKeyExists, key)
	}

	freeEnd := leaf.FreeEnd()
	avail := freeEnd - (leafSlotStart + (n+1)*leafSlotSize) - recordHeaderSize
	if avail < 0 {
		return fmt.Errorf("%w: page %d", ErrPageFull, leaf.Page.ID)
	}

	inline := len(payload)
	var overflow uint32
	if inline > avail {
		inline = avail
		first, err := writeOverflowChain(pager, payload[inline:])
		if err != nil {
			return err
		}
		overflow = first
	}

	off := freeEnd - recordHeaderSize - inline
	writeRecordHeader(leaf.Page.Data, off, RecordHeader{
		Flag:         RecordLive,
		PayloadSize:  uint32(len(payload)),
		OverflowPage: overflow,
	})
	copy(leaf.Page.Data[off+recordHeaderSize:], payload[:inline])
	leaf.insertSlot(idx, key, uint32(off))
	return nil
}

// readLeafRecord returns the full payload at the given in-page offset,
// following the overflow chain when present. The inline length is
// payloadSize minus the bytes accounted for by the chain.
func readLeafRecord(pager *Pager, page *Page, off uint32) ([]byte, RecordFlag, error) {
	if int(off)+recordHeaderSize > PageSize {
		return nil, 0, fmt.Errorf("%w: record offset %d on page %d", ErrCorruptTree, off, page.ID)
	}
	h := readRecordHeader(page.Data, int(off))

	var chain []byte
	if h.OverflowPage != 0 {
		var err error
		chain, err = readOverflowChain(pager, h.OverflowPage)
		if err != nil {
			return nil, 0, err
		}
	}

	inline := int(h.PayloadSize) - len(chain)
	if inline < 0 || int(off)+recordHeaderSize+inline > PageSize {
		return nil, 0, fmt.Errorf("%w: record on page %d has inline size %d", ErrCorruptTree, page.ID, inline)
	}

	payload := make([]byte, 0, h.PayloadSize)
	payload = append(payload, page.Data[int(off)+recordHeaderSize:int(off)+recordHeaderSize+inline]...)
	payload = append(payload, chain...)
	return payload, h.Flag, nil
}

// updateLeafRecord overwrites a record in place. The replacement must
// be exactly the stored payload size, so the inline region and every
// chain chunk keep their offsets.
func updateLeafRecord(pager *Pager, page *Page, off uint32, payload []byte) error {
	h := readRecordHeader(page.Data, int(off))
	if uint32(len(payload)) != h.PayloadSize {
		return fmt.Errorf("%w: update size %d does not match stored size %d", ErrInvalidInput, len(payload), h.PayloadSize)
	}

	chainSize := 0
	if h.OverflowPage != 0 {
		chain, err := readOverflowChain(pager, h.OverflowPage)
		if err != nil {
			return err
		}
		chainSize = len(chain)
	}

	inline := int(h.PayloadSize) - chainSize
	copy(page.Data[int(off)+recordHeaderSize:], payload[:inline])
	if err := pager.WritePage(page); err != nil {
		return err
	}

	rest := payload[inline:]
	for id := h.OverflowPage; id != 0; {
		p, err := pager.ReadPage(id)
		if err != nil {
			return err
		}
		size := p.EntryCount()
		copy(p.Data[pageHeaderSize:pageHeaderSize+size], rest[:size])
		rest = rest[size:]
		if err := pager.WritePage(p); err != nil {
			return err
		}
		id = p.NextPage()
	}
	return nil
}
