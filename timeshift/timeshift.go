// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package timeshift defines the temporal translation operator shared by
// the device readers. A shift maps every timestamp in a record set by the
// same delta, so all pairwise time differences are preserved exactly.
package timeshift

import (
	"math/rand"
	"time"
)

// De-identification default: between one month and two years into the past.
const (
	DefaultRandomMin = -730 * 24 * time.Hour
	DefaultRandomMax = -30 * 24 * time.Hour
)

// Shift computes the delta to add to every timestamp of a record set.
// Implementations are immutable; applying the same Shift twice applies the
// same rule twice.
type Shift interface {
	// Delta returns the duration to add to every timestamp, given the
	// earliest timestamp across all structures in the record set.
	Delta(earliest time.Time) time.Duration
}

// Relative is a fixed-duration shift. Applying Relative(d1) followed by
// Relative(d2) is equivalent to applying Relative(d1+d2) once.
type Relative time.Duration

// Delta implements Shift. The earliest timestamp is ignored.
func (r Relative) Delta(time.Time) time.Duration { return time.Duration(r) }

// Anchor shifts a record set so that its earliest timestamp lands on the
// target instant. All other timestamps keep their distance to the first.
type Anchor time.Time

// Delta implements Shift.
func (a Anchor) Delta(earliest time.Time) time.Duration {
	return time.Time(a).Sub(earliest)
}

// Random draws a single uniform duration in [min, max] from the given
// source and returns it as a Relative shift. The draw happens here, once,
// so the resulting shift is deterministic and composable afterwards.
func Random(rng *rand.Rand, min, max time.Duration) Shift {
	return Relative(min + time.Duration(rng.Int63n(int64(max-min)+1)))
}

// DefaultRandom draws a de-identification shift from the default range,
// one month to two years into the past.
func DefaultRandom(rng *rand.Rand) Shift {
	return Random(rng, DefaultRandomMin, DefaultRandomMax)
}
