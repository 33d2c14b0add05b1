package storage

import (
	"encoding/binary"
	"fmt"
	"math"
)

type DataType uint32

const (
	DataTypeInteger DataType = iota
	DataTypeString
	DataTypeFloat
	DataTypeDouble
)

func (t DataType) String() string {
	switch t {
	case DataTypeInteger:
		return "INTEGER"
	case DataTypeString:
		return "STRING"
	case DataTypeFloat:
		return "FLOAT"
	case DataTypeDouble:
		return "DOUBLE"
	default:
		return fmt.Sprintf("DataType(%d)", uint32(t))
	}
}

// ColumnDefinition describes one fixed-width column. Size only matters
// for STRING columns; the numeric types carry their intrinsic width.
type ColumnDefinition struct {
	Name string
	Type DataType
	Size uint32
}

// Width is the number of payload bytes the column occupies.
func (c ColumnDefinition) Width() int {
	switch c.Type {
	case DataTypeInteger, DataTypeFloat:
		return 4
	case DataTypeDouble:
		return 8
	default:
		return int(c.Size)
	}
}

// Value is the closed set of things a column can hold.
type Value interface {
	DataType() DataType
}

type IntegerValue int32

func (IntegerValue) DataType() DataType { return DataTypeInteger }

type StringValue string

func (StringValue) DataType() DataType { return DataTypeString }

type FloatValue float32

func (FloatValue) DataType() DataType { return DataTypeFloat }

type DoubleValue float64

func (DoubleValue) DataType() DataType { return DataTypeDouble }

func RowSize(cols []ColumnDefinition) int {
	size := 0
	for _, c := range cols {
		size += c.Width()
	}
	return size
}

// EncodeRow packs typed values into a fixed-width payload: numerics
// little-endian at their intrinsic width, strings truncated or
// zero-padded to the column size.
func EncodeRow(cols []ColumnDefinition, vals []Value) ([]byte, error) {
	if len(vals) != len(cols) {
		return nil, fmt.Errorf("%w: %d values for %d columns", ErrInvalidInput, len(vals), len(cols))
	}

	payload := make([]byte, RowSize(cols))
	off := 0
	for i, c := range cols {
		if vals[i] == nil || vals[i].DataType() != c.Type {
			return nil, fmt.Errorf("%w: column %s expects %s", ErrInvalidInput, c.Name, c.Type)
		}

		switch v := vals[i].(type) {
		case IntegerValue:
			binary.LittleEndian.PutUint32(payload[off:], uint32(int32(v)))
		case FloatValue:
			binary.LittleEndian.PutUint32(payload[off:], math.Float32bits(float32(v)))
		case DoubleValue:
			binary.LittleEndian.PutUint64(payload[off:], math.Float64bits(float64(v)))
		case StringValue:
			// Fixed width: excess bytes drop, short values zero-pad.
			copy(payload[off:off+c.Width()], v)
		}
		off += c.Width()
	}
	return payload, nil
}

// DecodeRow is the exact inverse of EncodeRow for in-bounds values.
func DecodeRow(cols []ColumnDefinition, payload []byte) ([]Value, error) {
	if len(payload) != RowSize(cols) {
		return nil, fmt.Errorf("%w: payload is %d bytes, row needs %d", ErrInvalidInput, len(payload), RowSize(cols))
	}

	vals := make([]Value, len(cols))
	off := 0
	for i, c := range cols {
		switch c.Type {
		case DataTypeInteger:
			vals[i] = IntegerValue(int32(binary.LittleEndian.Uint32(payload[off:])))
		case DataTypeFloat:
			vals[i] = FloatValue(math.Float32frombits(binary.LittleEndian.Uint32(payload[off:])))
		case DataTypeDouble:
			vals[i] = DoubleValue(math.Float64frombits(binary.LittleEndian.Uint64(payload[off:])))
		case DataTypeString:
			raw := payload[off : off+c.Width()]
			end := len(raw)
			for end > 0 && raw[end-1] == 0 {
				end--
			}
			vals[i] = StringValue(raw[:end])
		default:
			return nil, fmt.Errorf("%w: column %s has unknown type %d", ErrInvalidInput, c.Name, uint32(c.Type))
		}
		off += c.Width()
	}
	return vals, nil
}
