// SPDX-License-Identifier: MIT
package oscillator

import "fmt"

// Table is one cycle of a periodic waveform. Tables from NewTable and
// TableBuilder.Build are immutable. The only table that ever changes is the
// one an Oscillator populates through SetWaveformValue, and it is edited
// only while no block is rendering.
type Table struct {
	values []float32
}

// NewTable copies values into a new immutable Table.
func NewTable(values []float32) (*Table, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTableSize, len(values))
	}
	v := make([]float32, len(values))
	copy(v, values)
	return &Table{values: v}, nil
}

// Len returns the number of samples in one cycle.
func (t *Table) Len() int {
	return len(t.values)
}

// At returns the sample at index i. The caller must keep i in [0, Len()).
func (t *Table) At(i int) float32 {
	return t.values[i]
}

// Values returns a copy of the table contents.
func (t *Table) Values() []float32 {
	v := make([]float32, len(t.values))
	copy(v, t.values)
	return v
}

// TableBuilder is the mutable staging area used to populate a table one
// sample at a time before it is published.
type TableBuilder struct {
	values []float32
}

// NewTableBuilder allocates a zeroed staging table of size samples.
func NewTableBuilder(size int) (*TableBuilder, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTableSize, size)
	}
	return &TableBuilder{values: make([]float32, size)}, nil
}

// Len returns the staging table length.
func (b *TableBuilder) Len() int {
	return len(b.values)
}

// Set writes value at index. Out-of-range writes are rejected and leave the
// staging table untouched.
func (b *TableBuilder) Set(index int, value float32) error {
	if index < 0 || index >= len(b.values) {
		return fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, index, len(b.values))
	}
	b.values[index] = value
	return nil
}

// SetRange writes values starting at index at. Nothing is written when the
// range does not fit.
func (b *TableBuilder) SetRange(at int, values []float32) error {
	if at < 0 || at+len(values) > len(b.values) {
		return fmt.Errorf("%w: %d values at index %d, size %d", ErrIndexOutOfRange, len(values), at, len(b.values))
	}
	copy(b.values[at:], values)
	return nil
}

// Load overwrites the staging table with values. The length must match.
func (b *TableBuilder) Load(values []float32) error {
	if len(values) != len(b.values) {
		return fmt.Errorf("%w: got %d values for size %d", ErrIndexOutOfRange, len(values), len(b.values))
	}
	copy(b.values, values)
	return nil
}

// Build returns an immutable snapshot of the staging table. The builder stays
// usable and later writes do not affect the returned Table.
func (b *TableBuilder) Build() *Table {
	t, _ := NewTable(b.values)
	return t
}

// share returns a Table aliasing the staging values. Only the oscillator
// uses it, and only while it controls every write to the builder.
func (b *TableBuilder) share() *Table {
	return &Table{values: b.values}
}

func (b *TableBuilder) clone() *TableBuilder {
	v := make([]float32, len(b.values))
	copy(v, b.values)
	return &TableBuilder{values: v}
}
