// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spacelabs

import (
	"fmt"
	"time"
)

// WindowPolicy selects how a row's window is placed relative to its
// measurement timestamp.
type WindowPolicy string

const (
	// WindowCentered places half of the window before and half after the
	// measurement.
	WindowCentered WindowPolicy = "centered"
	// WindowTrailing places the whole window before the measurement.
	WindowTrailing WindowPolicy = "trailing"
	// WindowLeading places the whole window after the measurement.
	WindowLeading WindowPolicy = "leading"
)

// DropEB removes every row flagged with the EB error and re-keys the
// remaining rows by timestamp. Re-keying requires the surviving
// timestamps to be pairwise distinct; if they are not, DropEB returns
// ErrDuplicateTimestamps and leaves the session unkeyed.
func (s *Session) DropEB() error {
	filtered := make([]Measurement, 0, len(s.Data))
	seen := make(map[int64]struct{}, len(s.Data))

	for _, m := range s.Data {
		if m.Error == ErrorEB {
			continue
		}
		ns := m.Timestamp.UnixNano()
		if _, dup := seen[ns]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTimestamps, m.Timestamp)
		}
		seen[ns] = struct{}{}
		filtered = append(filtered, m)
	}

	s.Data = filtered
	s.keyed = true
	return nil
}

// SetWindow computes per-row (WindowStart, WindowEnd) bounds from the
// given duration and policy. An unknown policy is rejected before any row
// is touched; there is no default.
func (s *Session) SetWindow(duration time.Duration, policy WindowPolicy) error {
	switch policy {
	case WindowCentered, WindowTrailing, WindowLeading:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownWindowPolicy, policy)
	}

	for i := range s.Data {
		m := &s.Data[i]
		switch policy {
		case WindowCentered:
			m.WindowStart = m.Timestamp.Add(-duration / 2)
			m.WindowEnd = m.Timestamp.Add(duration / 2)
		case WindowTrailing:
			m.WindowStart = m.Timestamp.Add(-duration)
			m.WindowEnd = m.Timestamp
		case WindowLeading:
			m.WindowStart = m.Timestamp
			m.WindowEnd = m.Timestamp.Add(duration)
		}
	}

	s.windowed = true
	return nil
}
