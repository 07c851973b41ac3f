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

package catalog

import (
	"time"

	"github.com/podkeep/podkeep/lib/gorm"
)

// Show is the long-lived container whose episodes are periodically
// reconciled with the upstream directory. SID is the directory's id; rows
// without one cannot be refreshed. LatestEpisodeID, when set, references an
// episode row of this show. LatestRefreshedAt records the last successful
// reconciliation; the column may be absent in schemas that predate it.
type Show struct {
	gorm.Model
	SID               string `gorm:"uniqueIndex:idx_show"`
	Title             string
	Publisher         string
	Description       string
	Image             string
	RSS               string
	Featured          bool
	LatestEpisodeID   *uint
	LatestRefreshedAt *time.Time
}

func (Show) TableName() string {
	return "shows"
}

// Episode is the refreshable unit. EID is the directory's id and the upsert
// conflict key; the persisted store enforces its uniqueness.
type Episode struct {
	gorm.Model
	ShowID      uint   `gorm:"index:idx_episode_show"`
	EID         string `gorm:"uniqueIndex:idx_episode"`
	Title       string
	Description string
	AudioURL    string
	ImageURL    string
	Duration    int // seconds
	Explicit    bool
	PublishedAt *time.Time
}

// RecencyTime orders episodes newest first, falling back to row creation
// time when the directory had no publish date.
func (e Episode) RecencyTime() time.Time {
	if e.PublishedAt != nil {
		return *e.PublishedAt
	}
	return e.CreatedAt
}

const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 1000
)
