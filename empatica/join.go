// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package empatica

import (
	"math"
	"sort"
	"time"
)

// JoinedTable is a sparse table over the union of the timestamps of a set
// of fixed-rate signals. A cell is present only where the contributing
// signal had a sample at exactly that timestamp; missing cells are NaN.
// No interpolation or filling is ever applied.
type JoinedTable struct {
	Times   []time.Time // Sorted, de-duplicated union of signal timestamps
	Columns []string    // Column labels, e.g. ACC_X, BVP, EDA

	cells   [][]float64 // Row-major, NaN marks a missing cell
	columns map[string]int
}

// Join builds the sparse union join of the given signals. Nil signals are
// skipped; if no signal remains, Join returns nil. Inputs are not
// mutated.
func Join(series ...*SignalSeries) *JoinedTable {
	var present []*SignalSeries
	for _, s := range series {
		if s != nil {
			present = append(present, s)
		}
	}
	if len(present) == 0 {
		return nil
	}

	// Sorted union of every series' timestamps, keyed by epoch
	// nanoseconds so equality is exact.
	var union []int64
	seen := make(map[int64]struct{})
	for _, s := range present {
		for k := 0; k < s.Len(); k++ {
			ns := s.TimeAt(k).UnixNano()
			if _, ok := seen[ns]; !ok {
				seen[ns] = struct{}{}
				union = append(union, ns)
			}
		}
	}
	sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })

	rowIndex := make(map[int64]int, len(union))
	times := make([]time.Time, len(union))
	for i, ns := range union {
		rowIndex[ns] = i
		times[i] = time.Unix(0, ns).UTC()
	}

	t := &JoinedTable{
		Times:   times,
		columns: make(map[string]int),
	}
	for _, s := range present {
		for _, col := range s.Columns {
			label := col
			if len(s.Columns) > 1 {
				label = s.Name + "_" + col
			}
			t.columns[label] = len(t.Columns)
			t.Columns = append(t.Columns, label)
		}
	}

	t.cells = make([][]float64, len(times))
	for i := range t.cells {
		row := make([]float64, len(t.Columns))
		for j := range row {
			row[j] = math.NaN()
		}
		t.cells[i] = row
	}

	// Scatter each series' values into the rows addressed by its own
	// timestamps; every other cell stays missing.
	col := 0
	for _, s := range present {
		for k := 0; k < s.Len(); k++ {
			row := rowIndex[s.TimeAt(k).UnixNano()]
			copy(t.cells[row][col:col+len(s.Columns)], s.Values[k])
		}
		col += len(s.Columns)
	}

	return t
}

// Value returns the cell at row i for the named column, and whether it is
// present.
func (t *JoinedTable) Value(i int, column string) (float64, bool) {
	j, ok := t.columns[column]
	if !ok {
		return 0, false
	}
	v := t.cells[i][j]
	return v, !math.IsNaN(v)
}

// Len returns the number of rows in the table.
func (t *JoinedTable) Len() int { return len(t.Times) }

// shift translates the table index by d, leaving cell values untouched.
func (t *JoinedTable) shift(d time.Duration) {
	for i := range t.Times {
		t.Times[i] = t.Times[i].Add(d)
	}
}
