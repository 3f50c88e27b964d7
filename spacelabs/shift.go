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
	"time"

	"github.com/OpenPSG/wearables/timeshift"
)

// Timeshift translates every temporal field of the session in place. The
// delta is rounded to whole minutes once, before it is applied, because
// the file format has no sub-minute resolution; rounding per row would
// drift. Timestamps, dates, times of day and any window bounds all move
// together, so pairwise time differences are preserved exactly.
func (s *Session) Timeshift(sh timeshift.Shift) {
	if len(s.Data) == 0 {
		return
	}

	earliest := s.Data[0].Timestamp
	for _, m := range s.Data[1:] {
		if m.Timestamp.Before(earliest) {
			earliest = m.Timestamp
		}
	}

	delta := sh.Delta(earliest).Round(time.Minute)

	for i := range s.Data {
		m := &s.Data[i]
		m.Timestamp = m.Timestamp.Add(delta)
		m.Date = midnightOf(m.Timestamp)
		m.TimeOfDay = m.Timestamp.Sub(m.Date)
		if s.windowed {
			m.WindowStart = m.WindowStart.Add(delta)
			m.WindowEnd = m.WindowEnd.Add(delta)
		}
	}
}

func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
