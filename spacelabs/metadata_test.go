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

	"github.com/OpenPSG/wearables/spacelabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadataLine = `<XML><PATIENTINFO><DOB>1990-01-01</DOB><RACE>Caucasian</RACE></PATIENTINFO>` +
	`<REPORTINFO><PHYSICIAN>Dr. Hanford</PHYSICIAN><NURSETECH>admin</NURSETECH>` +
	`<STATUS>NOTCONFIRMED</STATUS><CALIPERSUMMARY><COUNT>0</COUNT></CALIPERSUMMARY></REPORTINFO></XML>`

func TestParseMetadata(t *testing.T) {
	md, err := spacelabs.ParseMetadata(metadataLine)
	require.NoError(t, err)

	race, ok := md.Lookup("PATIENTINFO", "RACE")
	require.True(t, ok)
	assert.Equal(t, "Caucasian", race)

	physician, ok := md.Lookup("REPORTINFO", "PHYSICIAN")
	require.True(t, ok)
	assert.Equal(t, "Dr. Hanford", physician)

	_, ok = md.Lookup("REPORTINFO", "NO_SUCH_KEY")
	assert.False(t, ok)

	// Inner elements carry children, not values.
	_, ok = md.Lookup("PATIENTINFO")
	assert.False(t, ok)
}

func TestMetadataEncodeRoundTrip(t *testing.T) {
	md, err := spacelabs.ParseMetadata(metadataLine)
	require.NoError(t, err)
	assert.Equal(t, metadataLine, md.Encode())
}

func TestMetadataClearLeaves(t *testing.T) {
	md, err := spacelabs.ParseMetadata(metadataLine)
	require.NoError(t, err)

	md.ClearLeaves()

	// Every key is still present in the encoded form, every value gone.
	encoded := md.Encode()
	for _, key := range []string{"DOB", "RACE", "PHYSICIAN", "NURSETECH", "STATUS", "COUNT"} {
		assert.Contains(t, encoded, "<"+key+"></"+key+">")
	}

	_, ok := md.Lookup("PATIENTINFO", "DOB")
	assert.False(t, ok)
}

func TestParseMetadataMalformed(t *testing.T) {
	_, err := spacelabs.ParseMetadata("")
	require.Error(t, err)

	_, err = spacelabs.ParseMetadata("<XML><OPEN></XML>")
	require.Error(t, err)
}
