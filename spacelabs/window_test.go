// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spacelabs_test

import (
	"testing"
	"time"

	"github.com/OpenPSG/wearables/spacelabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropEB(t *testing.T) {
	s, err := spacelabs.ReadFile("testdata/recording.abp")
	require.NoError(t, err)
	require.Len(t, s.Data, 5)
	assert.False(t, s.Keyed())

	require.NoError(t, s.DropEB())

	require.Len(t, s.Data, 4)
	assert.True(t, s.Keyed())

	seen := make(map[time.Time]bool)
	for _, m := range s.Data {
		assert.NotEqual(t, spacelabs.ErrorEB, m.Error)
		assert.False(t, seen[m.Timestamp], "timestamps must be pairwise distinct after re-keying")
		seen[m.Timestamp] = true
	}
}

func TestDropEBDuplicateTimestamps(t *testing.T) {
	s, err := spacelabs.ReadFile("testdata/recording.abp")
	require.NoError(t, err)

	// Force two surviving rows onto the same timestamp.
	s.Data[1].Timestamp = s.Data[0].Timestamp

	err = s.DropEB()
	require.ErrorIs(t, err, spacelabs.ErrDuplicateTimestamps)
	assert.False(t, s.Keyed())
}

func TestSetWindowCentered(t *testing.T) {
	s, err := spacelabs.ReadFile("testdata/recording.abp")
	require.NoError(t, err)

	d := 30 * time.Minute
	require.NoError(t, s.SetWindow(d, spacelabs.WindowCentered))

	for i, m := range s.Data {
		assert.Equal(t, d, m.WindowEnd.Sub(m.WindowStart), "row %d", i)
		assert.Equal(t, m.Timestamp, m.WindowStart.Add(m.WindowEnd.Sub(m.WindowStart)/2), "row %d", i)
	}
}

func TestSetWindowTrailingAndLeading(t *testing.T) {
	s, err := spacelabs.ReadFile("testdata/recording.abp")
	require.NoError(t, err)

	d := 10 * time.Minute

	require.NoError(t, s.SetWindow(d, spacelabs.WindowTrailing))
	for _, m := range s.Data {
		assert.Equal(t, m.Timestamp.Add(-d), m.WindowStart)
		assert.Equal(t, m.Timestamp, m.WindowEnd)
	}

	require.NoError(t, s.SetWindow(d, spacelabs.WindowLeading))
	for _, m := range s.Data {
		assert.Equal(t, m.Timestamp, m.WindowStart)
		assert.Equal(t, m.Timestamp.Add(d), m.WindowEnd)
	}
}

func TestSetWindowUnknownPolicy(t *testing.T) {
	s, err := spacelabs.ReadFile("testdata/recording.abp")
	require.NoError(t, err)

	err = s.SetWindow(time.Minute, spacelabs.WindowPolicy("bffill"))
	require.ErrorIs(t, err, spacelabs.ErrUnknownWindowPolicy)

	// Rejected before any row was touched.
	for _, m := range s.Data {
		assert.True(t, m.WindowStart.IsZero())
		assert.True(t, m.WindowEnd.IsZero())
	}
}
