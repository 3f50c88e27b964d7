// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package spacelabs reads, timeshifts, de-identifies and writes
// ambulatory blood pressure data recorded by the Spacelabs 90217 monitor.
package spacelabs

import (
	"errors"
	"time"
)

// ErrDuplicateTimestamps is returned by DropEB when the surviving rows do
// not have pairwise distinct timestamps and therefore cannot be keyed by
// time.
var ErrDuplicateTimestamps = errors.New("duplicate timestamps after dropping EB rows")

// ErrUnknownWindowPolicy is returned by SetWindow for a policy it does
// not recognize.
var ErrUnknownWindowPolicy = errors.New("unknown window policy")

// ErrorCode is the measurement error flag recorded by the device.
type ErrorCode string

const (
	ErrorNone ErrorCode = ""
	ErrorEB   ErrorCode = "EB" // Early beat / measurement aborted
	ErrorAB   ErrorCode = "AB" // Arm movement artifact
)

// NullInt is an integer cell that may be absent. The device encodes
// absent cells as an empty quoted string.
type NullInt struct {
	Int   int
	Valid bool
}

// Int returns a present NullInt.
func Int(v int) NullInt { return NullInt{Int: v, Valid: true} }

// Measurement is one reconstructed row of the recording. The timestamp is
// always combine(Date, TimeOfDay); dates are inferred from the base date
// and the midnight-rollover rule at read time.
type Measurement struct {
	Timestamp time.Time
	Date      time.Time     // Midnight of the measurement day, UTC
	TimeOfDay time.Duration // Offset from midnight, whole minutes

	Systolic  NullInt
	Diastolic NullInt
	X         NullInt
	Y         NullInt
	Z         NullInt
	Error     ErrorCode

	// Window bounds, populated by SetWindow. Zero until then.
	WindowStart time.Time
	WindowEnd   time.Time
}

// Session holds the contents of one abp recording file.
type Session struct {
	Subject           string
	ValidMeasurements string
	Data              []Measurement
	Metadata          *Metadata

	// keyed reports whether Data has been re-keyed by timestamp (set by
	// DropEB after the uniqueness check).
	keyed bool

	windowed bool
}

// Keyed reports whether the rows have been re-keyed by timestamp.
func (s *Session) Keyed() bool { return s.keyed }
