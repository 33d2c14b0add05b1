package storage

import (
	"fmt"

	"go.tinydb/internal/logger"
)

// BTree is a stateless order-preserving index over uint32 keys. It owns
// no pages itself: every operation takes a root page number, so any
// number of trees (the catalog included) can share one pager.
type BTree struct {
	pager *Pager
	log   *logger.Logger
}

func NewBTree(pager *Pager, log *logger.Logger) *BTree {
	return &BTree{
		pager: pager,
		log:   log,
	}
}

// RecordLocation identifies a record by page and in-page offset.
type RecordLocation struct {
	PageNumber uint32
	Offset     uint32
	Found      bool
}

func (bt *BTree) Search(root, key uint32) (RecordLocation, error) {
	leaf, _, err := bt.descend(root, key)
	if err != nil {
		return RecordLocation{}, err
	}

	idx, found := leaf.FindSlot(key)
	if !found {
		return RecordLocation{}, nil
	}
	return RecordLocation{
		PageNumber: leaf.Page.ID,
		Offset:     leaf.SlotOffset(idx),
		Found:      true,
	}, nil
}

// ReadRecord returns the full payload at a location, following the
// overflow chain when the record spills past its leaf.
func (bt *BTree) ReadRecord(loc RecordLocation) ([]byte, error) {
	if !loc.Found {
		return nil, fmt.Errorf("%w", ErrKeyNotFound)
	}
	page, err := bt.pager.ReadPage(loc.PageNumber)
	if err != nil {
		return nil, err
	}
	payload, flag, err := readLeafRecord(bt.pager, page, loc.Offset)
	if err != nil {
		return nil, err
	}
	if flag == RecordDeleted {
		return nil, fmt.Errorf("%w: record at page %d offset %d is deleted", ErrKeyNotFound, loc.PageNumber, loc.Offset)
	}
	return payload, nil
}

// UpdateRecord rewrites a record in place. The replacement must match
// the stored payload size exactly.
func (bt *BTree) UpdateRecord(loc RecordLocation, payload []byte) error {
	if !loc.Found {
		return fmt.Errorf("%w", ErrKeyNotFound)
	}
	page, err := bt.pager.ReadPage(loc.PageNumber)
	if err != nil {
		return err
	}
	return updateLeafRecord(bt.pager, page, loc.Offset, payload)
}

// Scan visits every live record in key order. Re-invoking restarts
// from the beginning; no cursor state survives the call.
func (bt *BTree) Scan(root uint32, fn func(key uint32, payload []byte) error) error {
	page, err := bt.pager.ReadPage(root)
	if err != nil {
		return err
	}

	switch page.Type() {
	case PageTypeLeaf:
		leaf := WrapLeafPage(page)
		for i := 0; i < leaf.NumRecords(); i++ {
			payload, flag, err := readLeafRecord(bt.pager, page, leaf.SlotOffset(i))
			if err != nil {
				return err
			}
			if flag != RecordLive {
				continue
			}
			if err := fn(leaf.SlotKey(i), payload); err != nil {
				return err
			}
		}
		return nil

	case PageTypeInterior:
		interior := WrapInteriorPage(page)
		for i := 0; i <= interior.KeyCount(); i++ {
			if err := bt.Scan(interior.Child(i), fn); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: page %d has type %d", ErrCorruptTree, page.ID, page.Type())
	}
}

// MaxKey returns the largest key in the tree, 0 when it is empty.
func (bt *BTree) MaxKey(root uint32) (uint32, error) {
	curr := root
	for {
		page, err := bt.pager.ReadPage(curr)
		if err != nil {
			return 0, err
		}

		switch page.Type() {
		case PageTypeLeaf:
			leaf := WrapLeafPage(page)
			if n := leaf.NumRecords(); n > 0 {
				return leaf.SlotKey(n - 1), nil
			}
			// The rightmost leaf can be emptied by deletes; fall back
			// to a full scan.
			return bt.scanMax(root)

		case PageTypeInterior:
			interior := WrapInteriorPage(page)
			curr = interior.Child(interior.KeyCount())

		default:
			return 0, fmt.Errorf("%w: page %d has type %d", ErrCorruptTree, page.ID, page.Type())
		}
	}
}

func (bt *BTree) scanMax(root uint32) (uint32, error) {
	var max uint32
	err := bt.Scan(root, func(key uint32, _ []byte) error {
		if key > max {
			max = key
		}
		return nil
	})
	return max, err
}
