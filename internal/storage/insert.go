package storage

import "fmt"

// Insert adds key with its payload, splitting pages as needed. The
// returned root differs from the argument only when the root itself
// split. A duplicate key is rejected before any page is touched.
func (bt *BTree) Insert(root, key uint32, payload []byte) (uint32, error) {
	leaf, stack, err := bt.descend(root, key)
	if err != nil {
		return root, err
	}

	if _, found := leaf.FindSlot(key); found {
		return root, fmt.Errorf("%w: key %d", ErrKeyExists, key)
	}

	if leaf.HasRoom() {
		if err := writeLeafRecord(bt.pager, leaf, key, payload); err != nil {
			return root, err
		}
		return root, bt.pager.WritePage(leaf.Page)
	}

	sepKey, rightID, err := bt.splitLeaf(leaf, key, payload)
	if err != nil {
		return root, err
	}

	return bt.propagateSplit(root, stack, sepKey, rightID)
}

// propagateSplit threads a new separator up the recorded parents,
// splitting full interiors until one absorbs it or a new root grows.
func (bt *BTree) propagateSplit(root uint32, stack *ParentStack, sepKey, rightID uint32) (uint32, error) {
	for {
		parent, ok := stack.Pop()
		if !ok {
			return bt.growRoot(sepKey, root, rightID)
		}

		page, err := bt.pager.ReadPage(parent.pageID)
		if err != nil {
			return root, err
		}
		interior := WrapInteriorPage(page)

		if interior.KeyCount() < MaxKeys {
			interior.InsertSeparator(sepKey, rightID)
			return root, bt.pager.WritePage(interior.Page)
		}

		sepKey, rightID, err = bt.splitInterior(interior, sepKey, rightID)
		if err != nil {
			return root, err
		}
	}
}
