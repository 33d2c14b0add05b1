package storage

import "encoding/binary"

// Leaf layout: the page header, then up to MaxKeys slots of
// (key uint32, record offset uint32) pairs growing up from the header,
// with record regions growing down from the end of the page. Slots are
// kept sorted by key; the header's entryCount is the live slot count.
const (
	leafSlotStart = pageHeaderSize
	leafSlotSize  = 8
)

type LeafPage struct {
	Page *Page
}

func WrapLeafPage(page *Page) *LeafPage {
	return &LeafPage{Page: page}
}

func (lp *LeafPage) NumRecords() int {
	return lp.Page.EntryCount()
}

func (lp *LeafPage) SlotKey(i int) uint32 {
	off := leafSlotStart + i*leafSlotSize
	return binary.LittleEndian.Uint32(lp.Page.Data[off : off+4])
}

func (lp *LeafPage) SlotOffset(i int) uint32 {
	off := leafSlotStart + i*leafSlotSize + 4
	return binary.LittleEndian.Uint32(lp.Page.Data[off : off+4])
}

func (lp *LeafPage) setSlot(i int, key, recordOff uint32) {
	off := leafSlotStart + i*leafSlotSize
	binary.LittleEndian.PutUint32(lp.Page.Data[off:off+4], key)
	binary.LittleEndian.PutUint32(lp.Page.Data[off+4:off+8], recordOff)
}

// FindSlot returns the position of key, or the position it would be
// inserted at when absent.
func (lp *LeafPage) FindSlot(key uint32) (int, bool) {
	low, high := 0, lp.NumRecords()
	for low < high {
		mid := (low + high) / 2
		if lp.SlotKey(mid) < key {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low, low < lp.NumRecords() && lp.SlotKey(low) == key
}

func (lp *LeafPage) insertSlot(idx int, key, recordOff uint32) {
	n := lp.NumRecords()
	start := leafSlotStart + idx*leafSlotSize
	end := leafSlotStart + n*leafSlotSize
	copy(lp.Page.Data[start+leafSlotSize:end+leafSlotSize], lp.Page.Data[start:end])
	lp.setSlot(idx, key, recordOff)
	lp.Page.SetEntryCount(n + 1)
}

func (lp *LeafPage) removeSlot(idx int) {
	n := lp.NumRecords()
	start := leafSlotStart + idx*leafSlotSize
	end := leafSlotStart + n*leafSlotSize
	copy(lp.Page.Data[start:end-leafSlotSize], lp.Page.Data[start+leafSlotSize:end])
	lp.Page.SetEntryCount(n - 1)
}

// FreeEnd is the lowest offset owned by a live record; everything
// between the slot array and FreeEnd is writable. Dead record bytes
// below the lowest live offset are reclaimed implicitly.
func (lp *LeafPage) FreeEnd() int {
	end := PageSize
	for i := 0; i < lp.NumRecords(); i++ {
		if off := int(lp.SlotOffset(i)); off < end {
			end = off
		}
	}
	return end
}

func (lp *LeafPage) FreeSpace() int {
	return lp.FreeEnd() - (leafSlotStart + lp.NumRecords()*leafSlotSize)
}

// HasRoom reports whether one more record can be placed here. The
// payload itself never blocks an insert: whatever does not fit inline
// moves to an overflow chain.
func (lp *LeafPage) HasRoom() bool {
	return lp.NumRecords() < MaxKeys && lp.FreeSpace() >= leafSlotSize+recordHeaderSize
}

// reset clears the slot array and record heap, keeping the page header
// type. Used when a split rewrites a page from collected records.
func (lp *LeafPage) reset() {
	for i := pageHeaderSize; i < PageSize; i++ {
		lp.Page.Data[i] = 0
	}
	lp.Page.SetEntryCount(0)
}
