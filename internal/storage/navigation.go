package storage

import "fmt"

type Parent struct {
	pageID uint32
}

// Stack of visited interior pages, pushed while descending so splits
// can propagate back up the tree.
type ParentStack struct {
	items []Parent
}

func (s *ParentStack) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *ParentStack) Push(p Parent) {
	s.items = append(s.items, p)
}

func (s *ParentStack) Pop() (Parent, bool) {
	if s.IsEmpty() {
		return Parent{}, false
	}
	parent := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return parent, true
}

// descend walks from root to the leaf bounding key, recording every
// interior page passed on the way.
func (bt *BTree) descend(root, key uint32) (*LeafPage, *ParentStack, error) {
	curr := root
	stack := &ParentStack{}

	for {
		page, err := bt.pager.ReadPage(curr)
		if err != nil {
			return nil, nil, err
		}

		switch page.Type() {
		case PageTypeLeaf:
			return WrapLeafPage(page), stack, nil

		case PageTypeInterior:
			interior := WrapInteriorPage(page)
			stack.Push(Parent{pageID: curr})
			curr = interior.Child(interior.FindChildIndex(key))

		default:
			return nil, nil, fmt.Errorf("%w: page %d has type %d", ErrCorruptTree, page.ID, page.Type())
		}
	}
}
