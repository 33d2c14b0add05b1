package storage

import "encoding/binary"

// Interior layout: the page header, a key array of MaxKeys uint32
// slots, then a child array of MaxKeys+1 uint32 page numbers. The
// arrays fill the page exactly. Keys are strictly increasing; child i
// routes keys below keys[i] and the last child routes the rest. The
// header's entryCount is the key count.
const (
	interiorKeyStart   = pageHeaderSize
	interiorChildStart = pageHeaderSize + 4*MaxKeys
)

type InteriorPage struct {
	Page *Page
}

func WrapInteriorPage(page *Page) *InteriorPage {
	return &InteriorPage{Page: page}
}

func (ip *InteriorPage) KeyCount() int {
	return ip.Page.EntryCount()
}

func (ip *InteriorPage) Key(i int) uint32 {
	off := interiorKeyStart + i*4
	return binary.LittleEndian.Uint32(ip.Page.Data[off : off+4])
}

func (ip *InteriorPage) SetKey(i int, key uint32) {
	off := interiorKeyStart + i*4
	binary.LittleEndian.PutUint32(ip.Page.Data[off:off+4], key)
}

func (ip *InteriorPage) Child(i int) uint32 {
	off := interiorChildStart + i*4
	return binary.LittleEndian.Uint32(ip.Page.Data[off : off+4])
}

func (ip *InteriorPage) SetChild(i int, page uint32) {
	off := interiorChildStart + i*4
	binary.LittleEndian.PutUint32(ip.Page.Data[off:off+4], page)
}

// FindChildIndex returns the index of the child that bounds key: the
// first i with key < keys[i], or the key count when key is >= every
// separator.
func (ip *InteriorPage) FindChildIndex(key uint32) int {
	low, high := 0, ip.KeyCount()
	for low < high {
		mid := (low + high) / 2
		if key < ip.Key(mid) {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return low
}

// InsertSeparator places key with its new right-hand child. The caller
// must have checked KeyCount() < MaxKeys.
func (ip *InteriorPage) InsertSeparator(key uint32, rightChild uint32) {
	n := ip.KeyCount()
	idx := ip.FindChildIndex(key)

	kStart := interiorKeyStart + idx*4
	kEnd := interiorKeyStart + n*4
	copy(ip.Page.Data[kStart+4:kEnd+4], ip.Page.Data[kStart:kEnd])

	cStart := interiorChildStart + (idx+1)*4
	cEnd := interiorChildStart + (n+1)*4
	copy(ip.Page.Data[cStart+4:cEnd+4], ip.Page.Data[cStart:cEnd])

	ip.SetKey(idx, key)
	ip.SetChild(idx+1, rightChild)
	ip.Page.SetEntryCount(n + 1)
}

func (ip *InteriorPage) keys() []uint32 {
	n := ip.KeyCount()
	out := make([]uint32, n)
	for i := range out {
		out[i] = ip.Key(i)
	}
	return out
}

func (ip *InteriorPage) children() []uint32 {
	n := ip.KeyCount()
	out := make([]uint32, n+1)
	for i := range out {
		out[i] = ip.Child(i)
	}
	return out
}

// setAll rewrites the node from scratch; len(children) must be
// len(keys)+1.
func (ip *InteriorPage) setAll(keys, children []uint32) {
	for i := pageHeaderSize; i < PageSize; i++ {
		ip.Page.Data[i] = 0
	}
	for i, k := range keys {
		ip.SetKey(i, k)
	}
	for i, c := range children {
		ip.SetChild(i, c)
	}
	ip.Page.SetEntryCount(len(keys))
}
