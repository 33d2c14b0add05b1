package engine

import (
	"fmt"

	"go.tinydb/internal/logger"
	"go.tinydb/internal/storage"
)

// Row is one decoded table row; Key is the engine-assigned row key.
type Row struct {
	Key    uint32
	Values []storage.Value
}

// Database bundles the pager, the catalog and the shared tree
// algorithm behind the createTable/insert/selectAll contract. Single
// exclusive user per open file; callers needing concurrency must
// serialize externally.
type Database struct {
	pager   *storage.Pager
	catalog *storage.Catalog
	tree    *storage.BTree
	log     *logger.Logger
	nextKey map[string]uint32
}

func Open(path string, log *logger.Logger) (*Database, error) {
	pager, err := storage.Open(path, log)
	if err != nil {
		return nil, err
	}

	catalog, err := storage.OpenCatalog(pager, log)
	if err != nil {
		pager.Close()
		return nil, err
	}

	return &Database{
		pager:   pager,
		catalog: catalog,
		tree:    storage.NewBTree(pager, log),
		log:     log,
		nextKey: make(map[string]uint32),
	}, nil
}

func (db *Database) Close() error {
	return db.pager.Close()
}

func (db *Database) PageCount() uint32 {
	return db.pager.PageCount()
}

func (db *Database) CreateTable(name string, cols []storage.ColumnDefinition) error {
	_, err := db.catalog.CreateTable(name, cols)
	return err
}

// Insert encodes one row and adds it under a fresh monotonically
// increasing key. If the table's tree grew a new root the catalog
// entry is patched afterwards; the two writes are not atomic across a
// crash.
func (db *Database) Insert(table string, values []storage.Value) error {
	meta, err := db.catalog.LookupTable(table)
	if err != nil {
		return err
	}

	payload, err := storage.EncodeRow(meta.Columns, values)
	if err != nil {
		return err
	}

	key, err := db.nextRowKey(table, meta.RootPage)
	if err != nil {
		return err
	}

	newRoot, err := db.tree.Insert(meta.RootPage, key, payload)
	if err != nil {
		return err
	}
	db.nextKey[table] = key + 1

	if newRoot != meta.RootPage {
		if err := db.catalog.UpdateTableRoot(table, newRoot); err != nil {
			return fmt.Errorf("recording new root %d for %s: %w", newRoot, table, err)
		}
	}
	return nil
}

func (db *Database) nextRowKey(table string, root uint32) (uint32, error) {
	if key, ok := db.nextKey[table]; ok {
		return key, nil
	}
	max, err := db.tree.MaxKey(root)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// SelectAll decodes every live row in key order. Each call restarts
// from the beginning; no cursor survives between calls.
func (db *Database) SelectAll(table string) ([]Row, error) {
	meta, err := db.catalog.LookupTable(table)
	if err != nil {
		return nil, err
	}

	var rows []Row
	err = db.tree.Scan(meta.RootPage, func(key uint32, payload []byte) error {
		values, err := storage.DecodeRow(meta.Columns, payload)
		if err != nil {
			return err
		}
		rows = append(rows, Row{Key: key, Values: values})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
