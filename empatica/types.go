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
	"time"
)

// SignalSeries holds one fixed-rate signal. Timestamps are fully
// determined by the start time and the sample rate; they are not stored
// per sample.
type SignalSeries struct {
	Name       string      // Signal name (e.g. BVP)
	StartTime  time.Time   // Timestamp of the first sample
	SampleRate float64     // Samples per second
	Columns    []string    // Column labels, one per value field (X, Y, Z for ACC)
	Values     [][]float64 // One row per sample, len(row) == len(Columns)
}

// Len returns the number of samples in the series.
func (s *SignalSeries) Len() int { return len(s.Values) }

// TimeAt returns the timestamp of sample k, StartTime + k/SampleRate seconds.
func (s *SignalSeries) TimeAt(k int) time.Time {
	offset := float64(k) / s.SampleRate * float64(time.Second)
	return s.StartTime.Add(time.Duration(math.Round(offset)))
}

// Timestamps returns the derived timestamp of every sample, strictly
// increasing and evenly spaced.
func (s *SignalSeries) Timestamps() []time.Time {
	ts := make([]time.Time, s.Len())
	for k := range ts {
		ts[k] = s.TimeAt(k)
	}
	return ts
}

// IntervalEntry is a single inter-beat interval: its offset from the
// series start and the beat-to-beat duration in seconds.
type IntervalEntry struct {
	Offset time.Duration
	Value  float64
}

// IntervalSeries holds irregularly-timed inter-beat interval data.
// Timestamps are explicit per-entry offsets from the start time, not
// derived from a sample rate.
type IntervalSeries struct {
	StartTime time.Time
	Entries   []IntervalEntry
}

// TimeAt returns the timestamp of entry i, StartTime + Offset.
func (s *IntervalSeries) TimeAt(i int) time.Time {
	return s.StartTime.Add(s.Entries[i].Offset)
}

// TagSeries is an ordered list of user-marked event instants.
type TagSeries []time.Time

// Session holds all data parsed from one E4 session directory. Absent
// signals are nil; the rest of the pipeline tolerates any subset.
type Session struct {
	ACC  *SignalSeries
	BVP  *SignalSeries
	EDA  *SignalSeries
	HR   *SignalSeries
	TEMP *SignalSeries
	IBI  *IntervalSeries
	Tags TagSeries

	// Data is the sparse union join of the fixed-rate signals, built at
	// read time. Nil when no signals were present.
	Data *JoinedTable
}

// Signals returns the fixed-rate signals present in the session, in the
// session's canonical order.
func (s *Session) Signals() []*SignalSeries {
	var out []*SignalSeries
	for _, sig := range []*SignalSeries{s.ACC, s.BVP, s.EDA, s.HR, s.TEMP} {
		if sig != nil {
			out = append(out, sig)
		}
	}
	return out
}
