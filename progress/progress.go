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

// Package progress stores per-user records that hang off catalog episodes:
// playback positions and saved-for-later bookmarks. Records reference
// episodes by directory id; the catalog's retention sweep deletes them
// here before the episodes themselves go.
package progress

import (
	"errors"
	"time"

	"github.com/podkeep/podkeep/config"
	"gorm.io/gorm"
)

var (
	ErrOffsetTooOld  = errors.New("offset is old")
	ErrInvalidOffset = errors.New("offset is invalid")
)

type Progress struct {
	config *config.Config
	db     *gorm.DB
}

func NewProgress(config *config.Config) *Progress {
	return &Progress{
		config: config,
	}
}

func (p *Progress) Open() (err error) {
	err = p.openDB()
	return
}

func (p *Progress) Close() {
	p.closeDB()
}

func (p *Progress) UserOffsets(user string) []Offset {
	return p.userOffsets(user)
}

func (p *Progress) UserOffset(user, eid string) *Offset {
	return p.lookupUserOffset(user, eid)
}

// Update applies a new playback position, keeping at most one offset per
// user and episode. Positions older than the stored one are rejected so
// reports from a lagging device cannot rewind progress.
func (p *Progress) Update(user string, newOffset Offset) error {
	newOffset.User = user
	if !newOffset.Valid() {
		return ErrInvalidOffset
	}
	offset := p.lookupUserOffset(user, newOffset.EID)
	if offset != nil {
		if newOffset.Date.Before(offset.Date) {
			return ErrOffsetTooOld
		}
		offset.Offset = newOffset.Offset
		offset.Date = newOffset.Date
		if newOffset.Duration > 0 {
			offset.Duration = newOffset.Duration
		}
		return p.updateOffset(offset)
	}
	return p.createOffset(&newOffset)
}

func (p *Progress) Delete(user, eid string) error {
	offset := p.lookupUserOffset(user, eid)
	if offset == nil {
		return nil
	}
	return p.deleteOffset(offset)
}

func (p *Progress) UserSaves(user string) []Save {
	return p.userSaves(user)
}

// SaveEpisode bookmarks an episode for a user. Saving again refreshes the
// date and notes.
func (p *Progress) SaveEpisode(user, eid, notes string) error {
	save := p.lookupUserSave(user, eid)
	if save != nil {
		save.Date = time.Now()
		save.Notes = notes
		return p.db.Save(save).Error
	}
	return p.createSave(&Save{
		User:  user,
		EID:   eid,
		Date:  time.Now(),
		Notes: notes,
	})
}

func (p *Progress) Unsave(user, eid string) error {
	save := p.lookupUserSave(user, eid)
	if save == nil {
		return nil
	}
	return p.deleteSave(save)
}

// DeleteEpisodes removes every user's offsets and saves for the given
// directory episode ids. Used by the catalog retention sweep ahead of
// episode deletion; both stores are cleared or the call fails.
func (p *Progress) DeleteEpisodes(eids []string) error {
	if len(eids) == 0 {
		return nil
	}
	err := p.deleteOffsetEpisodes(eids)
	if err != nil {
		return err
	}
	return p.deleteSaveEpisodes(eids)
}
