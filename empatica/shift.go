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
	"time"

	"github.com/OpenPSG/wearables/timeshift"
)

// Timeshift translates every temporal field of the session in place:
// signal start times, the IBI start time, tag instants and the joined
// table index all move by the same delta, so every pairwise time
// difference across the session is preserved exactly.
func (s *Session) Timeshift(sh timeshift.Shift) {
	earliest, ok := s.earliest()
	if !ok {
		return
	}
	delta := sh.Delta(earliest)

	for _, sig := range s.Signals() {
		sig.StartTime = sig.StartTime.Add(delta)
	}
	if s.IBI != nil {
		s.IBI.StartTime = s.IBI.StartTime.Add(delta)
	}
	for i := range s.Tags {
		s.Tags[i] = s.Tags[i].Add(delta)
	}
	if s.Data != nil {
		s.Data.shift(delta)
	}
}

// earliest returns the minimum timestamp across all structures owned by
// the session, used as the reference point for anchored shifts.
func (s *Session) earliest() (time.Time, bool) {
	var min time.Time
	found := false

	consider := func(t time.Time) {
		if !found || t.Before(min) {
			min = t
			found = true
		}
	}

	for _, sig := range s.Signals() {
		consider(sig.StartTime)
	}
	if s.IBI != nil {
		consider(s.IBI.StartTime)
	}
	for _, tag := range s.Tags {
		consider(tag)
	}

	return min, found
}
