package storage

type rec struct {
	key     uint32
	payload []byte
}

// splitLeaf redistributes the page's records plus the incoming one
// across the old page and a fresh right sibling. Records are collected
// in full (overflow chains read back and released) and rewritten
// compacted, which also reclaims dead payload bytes. Returns the
// separator key (smallest key of the right page) and the right page
// number.
func (bt *BTree) splitLeaf(left *LeafPage, newKey uint32, newPayload []byte) (uint32, uint32, error) {
	n := left.NumRecords()

	recs := make([]rec, 0, n+1)
	for i := 0; i < n; i++ {
		payload, _, err := readLeafRecord(bt.pager, left.Page, left.SlotOffset(i))
		if err != nil {
			return 0, 0, err
		}
		recs = append(recs, rec{key: left.SlotKey(i), payload: payload})
	}

	idx, _ := left.FindSlot(newKey)
	recs = append(recs, rec{})
	copy(recs[idx+1:], recs[idx:])
	recs[idx] = rec{key: newKey, payload: newPayload}

	// Old chains are rebuilt below; release them first so their pages
	// can be reused.
	for i := 0; i < n; i++ {
		h := readRecordHeader(left.Page.Data, int(left.SlotOffset(i)))
		if h.OverflowPage != 0 {
			if err := freeOverflowChain(bt.pager, h.OverflowPage); err != nil {
				return 0, 0, err
			}
		}
	}

	p, err := bt.pager.AllocatePage(PageTypeLeaf)
	if err != nil {
		return 0, 0, err
	}
	right := WrapLeafPage(p)

	mid := len(recs) / 2
	left.reset()
	for _, r := range recs[:mid] {
		if err := writeLeafRecord(bt.pager, left, r.key, r.payload); err != nil {
			return 0, 0, err
		}
	}
	for _, r := range recs[mid:] {
		if err := writeLeafRecord(bt.pager, right, r.key, r.payload); err != nil {
			return 0, 0, err
		}
	}

	if err := bt.pager.WritePage(left.Page); err != nil {
		return 0, 0, err
	}
	if err := bt.pager.WritePage(right.Page); err != nil {
		return 0, 0, err
	}

	bt.log.Debugf("split leaf %d: %d|%d records, right page %d", left.Page.ID, mid, len(recs)-mid, right.Page.ID)
	return recs[mid].key, right.Page.ID, nil
}

// splitInterior merges the incoming separator into the full node's key
// set, promotes the median and distributes the halves between the old
// page and a fresh right sibling.
func (bt *BTree) splitInterior(left *InteriorPage, newKey, newChild uint32) (uint32, uint32, error) {
	keys := left.keys()
	children := left.children()

	idx := left.FindChildIndex(newKey)
	keys = append(keys, 0)
	copy(keys[idx+1:], keys[idx:])
	keys[idx] = newKey
	children = append(children, 0)
	copy(children[idx+2:], children[idx+1:])
	children[idx+1] = newChild

	mid := len(keys) / 2
	promoted := keys[mid]

	p, err := bt.pager.AllocatePage(PageTypeInterior)
	if err != nil {
		return 0, 0, err
	}
	right := WrapInteriorPage(p)

	right.setAll(keys[mid+1:], children[mid+1:])
	left.setAll(keys[:mid], children[:mid+1])

	if err := bt.pager.WritePage(left.Page); err != nil {
		return 0, 0, err
	}
	if err := bt.pager.WritePage(right.Page); err != nil {
		return 0, 0, err
	}

	bt.log.Debugf("split interior %d: promoted key %d, right page %d", left.Page.ID, promoted, right.Page.ID)
	return promoted, right.Page.ID, nil
}

// growRoot allocates a fresh interior root over the two halves of a
// root split, increasing the tree height by one.
func (bt *BTree) growRoot(sepKey, leftID, rightID uint32) (uint32, error) {
	p, err := bt.pager.AllocatePage(PageTypeInterior)
	if err != nil {
		return leftID, err
	}

	root := WrapInteriorPage(p)
	root.setAll([]uint32{sepKey}, []uint32{leftID, rightID})

	if err := bt.pager.WritePage(root.Page); err != nil {
		return leftID, err
	}

	bt.log.Debugf("root %d split, new root %d", leftID, root.Page.ID)
	return root.Page.ID, nil
}
