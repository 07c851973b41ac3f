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
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func (p *Progress) openDB() (err error) {
	var glog logger.Interface
	if p.config.Progress.DB.LogMode == false {
		glog = logger.Discard
	} else {
		glog = logger.Default
	}
	cfg := &gorm.Config{
		Logger: glog,
	}

	switch p.config.Progress.DB.Driver {
	case "sqlite3":
		p.db, err = gorm.Open(sqlite.Open(p.config.Progress.DB.Source), cfg)
	case "postgres":
		p.db, err = gorm.Open(postgres.Open(p.config.Progress.DB.Source), cfg)
	default:
		err = errors.New("driver not supported")
	}

	if err != nil {
		return
	}

	p.db.AutoMigrate(&Offset{}, &Save{})
	return
}

func (p *Progress) closeDB() {
	conn, err := p.db.DB()
	if err != nil {
		return
	}
	conn.Close()
}

func (p *Progress) userOffsets(user string) []Offset {
	var offsets []Offset
	p.db.Where("user = ?", user).
		Order("date desc").Find(&offsets)
	return offsets
}

func (p *Progress) lookupUserOffset(user, eid string) *Offset {
	var list []Offset
	p.db.Where("user = ? and e_id = ?", user, eid).
		Order("date desc").Find(&list)
	if len(list) > 0 {
		return &list[0]
	}
	return nil
}

func (p *Progress) createOffset(o *Offset) error {
	return p.db.Create(o).Error
}

func (p *Progress) updateOffset(o *Offset) error {
	return p.db.Save(o).Error
}

func (p *Progress) deleteOffset(o *Offset) error {
	return p.db.Unscoped().Delete(o).Error
}

func (p *Progress) userSaves(user string) []Save {
	var saves []Save
	p.db.Where("user = ?", user).
		Order("date desc").Find(&saves)
	return saves
}

func (p *Progress) lookupUserSave(user, eid string) *Save {
	var list []Save
	p.db.Where("user = ? and e_id = ?", user, eid).Find(&list)
	if len(list) > 0 {
		return &list[0]
	}
	return nil
}

func (p *Progress) createSave(s *Save) error {
	return p.db.Create(s).Error
}

func (p *Progress) deleteSave(s *Save) error {
	return p.db.Unscoped().Delete(s).Error
}

func (p *Progress) deleteOffsetEpisodes(eids []string) error {
	return p.db.Unscoped().Where("e_id in (?)", eids).
		Delete(&Offset{}).Error
}

func (p *Progress) deleteSaveEpisodes(eids []string) error {
	return p.db.Unscoped().Where("e_id in (?)", eids).
		Delete(&Save{}).Error
}
