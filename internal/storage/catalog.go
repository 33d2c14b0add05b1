package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"go.tinydb/internal/logger"
)

// The catalog anchor is page 1 for the lifetime of the database. It is
// a CATALOG-typed page whose entryCount is the table count and whose
// body holds the current root page of the catalog B+Tree (the tree
// root can move on a root split; the anchor never does).
const (
	CatalogAnchorPage uint32 = 1
	anchorRootOffset         = pageHeaderSize
)

// CatalogEntry payload layout:
//
//	[0:64]   table name, NUL padded
//	[64:68]  root page of the table's tree
//	[68:72]  column count
//	then per column: name [64]byte | dataType uint32 | dataSize uint32
const (
	entryNameSize       = MaxIdentifierLength
	entryRootOffset     = entryNameSize
	entryColCountOffset = entryNameSize + 4
	entryHeaderSize     = entryNameSize + 8
	entryColumnSize     = MaxIdentifierLength + 8
)

type TableMetadata struct {
	Name     string
	RootPage uint32
	Columns  []ColumnDefinition
}

// Catalog resolves table names to their metadata. It is one privileged
// BTree instance over the shared pager, keyed by a hash of the table
// name.
type Catalog struct {
	pager *Pager
	tree  *BTree
	root  uint32
	log   *logger.Logger
}

func OpenCatalog(pager *Pager, log *logger.Logger) (*Catalog, error) {
	c := &Catalog{
		pager: pager,
		tree:  NewBTree(pager, log),
		log:   log,
	}

	if pager.PageCount() <= CatalogAnchorPage {
		if err := c.bootstrap(); err != nil {
			return nil, err
		}
		return c, nil
	}

	anchor, err := pager.ReadPage(CatalogAnchorPage)
	if err != nil {
		return nil, err
	}
	if anchor.Type() != PageTypeCatalog {
		return nil, fmt.Errorf("%w: page %d is not the catalog anchor", ErrCorruptFile, CatalogAnchorPage)
	}
	c.root = binary.LittleEndian.Uint32(anchor.Data[anchorRootOffset : anchorRootOffset+4])
	return c, nil
}

// bootstrap lays out a fresh database: the anchor on page 1 and an
// empty leaf as the catalog tree root right after it.
func (c *Catalog) bootstrap() error {
	anchor, err := c.pager.AllocatePage(PageTypeCatalog)
	if err != nil {
		return err
	}
	if anchor.ID != CatalogAnchorPage {
		return fmt.Errorf("%w: catalog anchor allocated as page %d", ErrCorruptFile, anchor.ID)
	}

	rootLeaf, err := c.pager.AllocatePage(PageTypeLeaf)
	if err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(anchor.Data[anchorRootOffset:anchorRootOffset+4], rootLeaf.ID)
	if err := c.pager.WritePage(anchor); err != nil {
		return err
	}

	c.root = rootLeaf.ID
	c.log.Infof("initialized catalog: anchor page %d, root page %d", anchor.ID, rootLeaf.ID)
	return nil
}

// nameKey derives the catalog key for a table name: FNV-1a 32-bit.
// Stable but not collision-free; CreateTable rejects a colliding name
// and lookups verify the stored name before trusting a hash hit.
func nameKey(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}

func validIdentifier(name string) bool {
	return len(name) > 0 && len(name) < MaxIdentifierLength
}

func validateColumns(cols []ColumnDefinition) error {
	if len(cols) == 0 {
		return fmt.Errorf("%w: a table needs at least one column", ErrInvalidInput)
	}
	if len(cols) > MaxColumns {
		return fmt.Errorf("%w: %d columns, maximum is %d", ErrTooManyCols, len(cols), MaxColumns)
	}
	for _, col := range cols {
		if !validIdentifier(col.Name) {
			return fmt.Errorf("%w: column name %q", ErrNameTooLong, col.Name)
		}
		if col.Type == DataTypeString && col.Size == 0 {
			return fmt.Errorf("%w: STRING column %s needs a size", ErrInvalidInput, col.Name)
		}
	}
	return nil
}

// CreateTable allocates a fresh leaf as the table's tree root and
// records the table in the catalog. Returns the root page number.
func (c *Catalog) CreateTable(name string, cols []ColumnDefinition) (uint32, error) {
	if !validIdentifier(name) {
		return 0, fmt.Errorf("%w: table name %q", ErrNameTooLong, name)
	}
	if err := validateColumns(cols); err != nil {
		return 0, err
	}

	key := nameKey(name)
	loc, err := c.tree.Search(c.root, key)
	if err != nil {
		return 0, err
	}
	if loc.Found {
		existing, err := c.entryAt(loc)
		if err != nil {
			return 0, err
		}
		if existing.Name == name {
			return 0, fmt.Errorf("%w: %s", ErrTableExists, name)
		}
		return 0, fmt.Errorf("%w: name %q collides with existing table %q", ErrInvalidInput, name, existing.Name)
	}

	rootLeaf, err := c.pager.AllocatePage(PageTypeLeaf)
	if err != nil {
		return 0, err
	}

	entry := encodeCatalogEntry(name, rootLeaf.ID, cols)
	newRoot, err := c.tree.Insert(c.root, key, entry)
	if err != nil {
		return 0, err
	}

	anchor, err := c.pager.ReadPage(CatalogAnchorPage)
	if err != nil {
		return 0, err
	}
	binary.LittleEndian.PutUint32(anchor.Data[anchorRootOffset:anchorRootOffset+4], newRoot)
	anchor.SetEntryCount(anchor.EntryCount() + 1)
	if err := c.pager.WritePage(anchor); err != nil {
		return 0, err
	}
	c.root = newRoot

	c.log.Infof("created table %s: root page %d, %d columns", name, rootLeaf.ID, len(cols))
	return rootLeaf.ID, nil
}

func (c *Catalog) LookupTable(name string) (*TableMetadata, error) {
	loc, err := c.tree.Search(c.root, nameKey(name))
	if err != nil {
		return nil, err
	}
	if !loc.Found {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	meta, err := c.entryAt(loc)
	if err != nil {
		return nil, err
	}
	if meta.Name != name {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return meta, nil
}

// UpdateTableRoot patches the entry's root page field in place after a
// table's tree grows a new root. Entries are fixed-width for a given
// column count, so the record never moves.
func (c *Catalog) UpdateTableRoot(name string, root uint32) error {
	loc, err := c.tree.Search(c.root, nameKey(name))
	if err != nil {
		return err
	}
	if !loc.Found {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	payload, err := c.tree.ReadRecord(loc)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(payload[entryRootOffset:entryRootOffset+4], root)
	return c.tree.UpdateRecord(loc, payload)
}

// TableCount reads the anchor's entry count.
func (c *Catalog) TableCount() (int, error) {
	anchor, err := c.pager.ReadPage(CatalogAnchorPage)
	if err != nil {
		return 0, err
	}
	return anchor.EntryCount(), nil
}

func (c *Catalog) entryAt(loc RecordLocation) (*TableMetadata, error) {
	payload, err := c.tree.ReadRecord(loc)
	if err != nil {
		return nil, err
	}
	return decodeCatalogEntry(payload)
}

func encodeCatalogEntry(name string, root uint32, cols []ColumnDefinition) []byte {
	buf := make([]byte, entryHeaderSize+len(cols)*entryColumnSize)
	copy(buf[:entryNameSize], name)
	binary.LittleEndian.PutUint32(buf[entryRootOffset:], root)
	binary.LittleEndian.PutUint32(buf[entryColCountOffset:], uint32(len(cols)))

	off := entryHeaderSize
	for _, col := range cols {
		copy(buf[off:off+MaxIdentifierLength], col.Name)
		binary.LittleEndian.PutUint32(buf[off+MaxIdentifierLength:], uint32(col.Type))
		binary.LittleEndian.PutUint32(buf[off+MaxIdentifierLength+4:], col.Size)
		off += entryColumnSize
	}
	return buf
}

func decodeCatalogEntry(payload []byte) (*TableMetadata, error) {
	if len(payload) < entryHeaderSize {
		return nil, fmt.Errorf("%w: catalog entry is %d bytes", ErrCorruptFile, len(payload))
	}

	count := int(binary.LittleEndian.Uint32(payload[entryColCountOffset:]))
	if count > MaxColumns || len(payload) != entryHeaderSize+count*entryColumnSize {
		return nil, fmt.Errorf("%w: catalog entry claims %d columns in %d bytes", ErrCorruptFile, count, len(payload))
	}

	meta := &TableMetadata{
		Name:     cString(payload[:entryNameSize]),
		RootPage: binary.LittleEndian.Uint32(payload[entryRootOffset:]),
		Columns:  make([]ColumnDefinition, count),
	}

	off := entryHeaderSize
	for i := range meta.Columns {
		meta.Columns[i] = ColumnDefinition{
			Name: cString(payload[off : off+MaxIdentifierLength]),
			Type: DataType(binary.LittleEndian.Uint32(payload[off+MaxIdentifierLength:])),
			Size: binary.LittleEndian.Uint32(payload[off+MaxIdentifierLength+4:]),
		}
		off += entryColumnSize
	}
	return meta, nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
