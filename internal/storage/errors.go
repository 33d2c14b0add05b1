package storage

import "errors"

var (
	// pager
	ErrFileIO         = errors.New("file I/O error")
	ErrPageAllocation = errors.New("page allocation failure")
	ErrCorruptFile    = errors.New("file is corrupt")
	ErrInvalidFileSig = errors.New("invalid file signature")
	ErrClosed         = errors.New("database file is closed")
	ErrCorruptList    = errors.New("free list is corrupt")
	// btree
	ErrInvalidInput = errors.New("invalid input")
	ErrKeyExists    = errors.New("key already exists")
	ErrKeyNotFound  = errors.New("key not found")
	ErrCorruptTree  = errors.New("btree is corrupt")
	ErrPageFull     = errors.New("not enough space to write record")
	// catalog
	ErrTableExists   = errors.New("table already exists")
	ErrTableNotFound = errors.New("table not found")
	ErrNameTooLong   = errors.New("identifier exceeds maximum length")
	ErrTooManyCols   = errors.New("too many columns")
)

// ErrorCode is the stable result taxonomy surfaced at the engine and
// CLI boundary. Internally everything travels as wrapped errors; CodeOf
// collapses them to a code at the edge.
type ErrorCode uint32

const (
	CodeSuccess ErrorCode = iota
	CodeFileIO
	CodePageAllocation
	CodeInvalidInput
	CodeOutOfMemory
)

func (c ErrorCode) String() string {
	switch c {
	case CodeSuccess:
		return "Success"
	case CodeFileIO:
		return "File I/O error"
	case CodePageAllocation:
		return "Page allocation failure"
	case CodeInvalidInput:
		return "Invalid input"
	case CodeOutOfMemory:
		return "Out of memory"
	default:
		return "Unknown error"
	}
}

func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, ErrPageAllocation):
		return CodePageAllocation
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrKeyExists),
		errors.Is(err, ErrKeyNotFound),
		errors.Is(err, ErrTableExists),
		errors.Is(err, ErrTableNotFound),
		errors.Is(err, ErrNameTooLong),
		errors.Is(err, ErrTooManyCols),
		errors.Is(err, ErrPageFull):
		return CodeInvalidInput
	default:
		// Corruption, bad signatures and raw I/O failures all surface
		// as file errors, matching the open-time corruption rule.
		return CodeFileIO
	}
}
