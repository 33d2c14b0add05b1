package storage

import "fmt"

// Delete removes a key: the slot goes away, the record is flagged
// deleted in place and its overflow chain returns to the free list.
// There is no merge or redistribution; an underfull leaf stays where it
// is and its dead bytes are reclaimed the next time the page splits.
func (bt *BTree) Delete(root, key uint32) error {
	leaf, _, err := bt.descend(root, key)
	if err != nil {
		return err
	}

	idx, found := leaf.FindSlot(key)
	if !found {
		return fmt.Errorf("%w: key %d", ErrKeyNotFound, key)
	}

	off := int(leaf.SlotOffset(idx))
	h := readRecordHeader(leaf.Page.Data, off)
	if h.OverflowPage != 0 {
		if err := freeOverflowChain(bt.pager, h.OverflowPage); err != nil {
			return err
		}
		h.OverflowPage = 0
	}
	h.Flag = RecordDeleted
	writeRecordHeader(leaf.Page.Data, off, h)

	leaf.removeSlot(idx)
	return bt.pager.WritePage(leaf.Page)
}
