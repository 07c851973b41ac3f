// Copyright (C) 2025 The Podkeep Authors.
//
// This file is part of Podkeep.
//
// Podkeep is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Podkeep is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Podkeep.  If not, see <https://www.gnu.org/licenses/>.

package progress

import (
	"time"

	"github.com/podkeep/podkeep/lib/gorm"
)

// Offset is one user's playback position in one episode, keyed by the
// directory episode id so positions survive a catalog re-import.
type Offset struct {
	gorm.Model
	User     string `gorm:"index:idx_offset_user;uniqueIndex:idx_offset_eid;not null" json:"-"`
	EID      string `gorm:"uniqueIndex:idx_offset_eid;not null"`
	Offset   int    `gorm:"default:0"`
	Duration int    `gorm:"default:0"`
	Date     time.Time
}

func (o Offset) Valid() bool {
	if len(o.User) == 0 || len(o.EID) == 0 || o.Offset < 0 || o.Date.IsZero() {
		return false
	}
	// duration can be unknown
	if o.Duration > 0 && o.Offset > o.Duration {
		return false
	}
	return true
}

// Save is an episode a user bookmarked for later.
type Save struct {
	gorm.Model
	User  string `gorm:"index:idx_save_user;uniqueIndex:idx_save_eid;not null" json:"-"`
	EID   string `gorm:"uniqueIndex:idx_save_eid;not null"`
	Date  time.Time
	Notes string
}
