// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package spacelabs

import "github.com/google/uuid"

// placeholderSubject replaces the subject id when the caller does not
// supply one.
const placeholderSubject = "xxxxxx"

// Deidentify replaces the subject id and clears every leaf value of the
// metadata block while keeping all of its keys. An empty subjectID
// selects the fixed placeholder. This is one-way: the original values are
// not retained anywhere. Temporal structure is untouched; combine with
// Timeshift to de-identify timestamps.
func (s *Session) Deidentify(subjectID string) {
	if subjectID == "" {
		subjectID = placeholderSubject
	}
	s.Subject = subjectID

	if s.Metadata != nil {
		s.Metadata.ClearLeaves()
	}
}

// NewPseudonym returns a random subject id that cannot be linked back to
// the original, for de-identification workflows that need distinct ids
// per recording.
func NewPseudonym() string {
	return uuid.NewString()
}
