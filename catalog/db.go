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
	"errors"
	"sort"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/podkeep/podkeep/lib/log"
)

const columnLatestRefreshedAt = "latest_refreshed_at"

func (c *Catalog) openDB() (err error) {
	var glog logger.Interface
	if c.config.Catalog.DB.LogMode == false {
		glog = logger.Discard
	} else {
		glog = logger.Default
	}
	cfg := &gorm.Config{
		Logger: glog,
	}

	switch c.config.Catalog.DB.Driver {
	case "sqlite3":
		c.db, err = gorm.Open(sqlite.Open(c.config.Catalog.DB.Source), cfg)
	case "postgres":
		c.db, err = gorm.Open(postgres.Open(c.config.Catalog.DB.Source), cfg)
	default:
		err = errors.New("driver not supported")
	}

	if err != nil {
		return
	}

	// the store may be managed externally; a failed migrate is not fatal,
	// the probe below decides what the schema can do
	err = c.db.AutoMigrate(&Show{}, &Episode{})
	if err != nil {
		log.Printf("automigrate: %s\n", err)
		err = nil
	}
	c.probeSchema()
	return
}

// probeSchema determines once, at startup, whether the shows table carries
// the freshness timestamp column. Older schemas predate it; all reads and
// writes of that column are gated on this flag rather than sniffing
// per-call errors.
func (c *Catalog) probeSchema() {
	c.hasRefreshedAt = c.db.Migrator().HasColumn(&Show{}, columnLatestRefreshedAt)
	if !c.hasRefreshedAt {
		log.Printf("catalog: no %s column, freshness degraded\n", columnLatestRefreshedAt)
	}
}

func (c *Catalog) closeDB() {
	conn, err := c.db.DB()
	if err != nil {
		return
	}
	conn.Close()
}

func (c *Catalog) Shows() []Show {
	var shows []Show
	c.db.Order("title").Find(&shows)
	return shows
}

func (c *Catalog) FeaturedShows() []Show {
	var shows []Show
	c.db.Where("featured = ?", true).Order("title").Find(&shows)
	return shows
}

// staleShows returns up to limit shows whose freshness timestamp is older
// than cutoff. Only meaningful when the timestamp column exists.
func (c *Catalog) staleShows(cutoff time.Time, limit int) []Show {
	var shows []Show
	if !c.hasRefreshedAt {
		return shows
	}
	c.db.Where("s_id <> '' and latest_refreshed_at is not null and latest_refreshed_at < ?", cutoff).
		Order("latest_refreshed_at").
		Limit(limit).
		Find(&shows)
	return shows
}

func (c *Catalog) LookupShow(id uint) (Show, error) {
	var show Show
	err := c.db.First(&show, id).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Show{}, ErrShowNotFound
	}
	return show, err
}

func (c *Catalog) LookupSID(sid string) (Show, error) {
	var show Show
	err := c.db.First(&show, "s_id = ?", sid).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Show{}, ErrShowNotFound
	}
	return show, err
}

func (c *Catalog) findShow(sid string) *Show {
	var list []Show
	c.db.Where("s_id = ?", sid).Find(&list)
	if len(list) > 0 {
		return &list[0]
	}
	return nil
}

func (c *Catalog) createShow(s *Show) error {
	if !c.hasRefreshedAt {
		return c.db.Omit("LatestRefreshedAt").Create(s).Error
	}
	return c.db.Create(s).Error
}

func (c *Catalog) ShowCount() int64 {
	var count int64
	c.db.Model(&Show{}).Count(&count)
	return count
}

func (c *Catalog) LookupEpisode(id uint) (Episode, error) {
	var episode Episode
	err := c.db.First(&episode, id).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Episode{}, ErrEpisodeNotFound
	}
	return episode, err
}

func (c *Catalog) LookupEID(eid string) (Episode, error) {
	var episode Episode
	err := c.db.First(&episode, "e_id = ?", eid).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return Episode{}, ErrEpisodeNotFound
	}
	return episode, err
}

func (c *Catalog) findEpisode(eid string) *Episode {
	var list []Episode
	c.db.Where("e_id = ?", eid).Find(&list)
	if len(list) > 0 {
		return &list[0]
	}
	return nil
}

func (c *Catalog) createEpisode(e *Episode) error {
	return c.db.Create(e).Error
}

func (c *Catalog) saveEpisode(e *Episode) error {
	return c.db.Save(e).Error
}

func (c *Catalog) EpisodeCount(showID uint) int64 {
	var count int64
	c.db.Model(&Episode{}).Where("show_id = ?", showID).Count(&count)
	return count
}

func (c *Catalog) hasEpisodes(showID uint) bool {
	return c.EpisodeCount(showID) > 0
}

// episodeWindow is one page of a show's episodes, newest first.
func (c *Catalog) episodeWindow(showID uint, limit, offset int) []Episode {
	var episodes []Episode
	c.db.Where("show_id = ?", showID).
		Order("published_at desc, created_at desc").
		Limit(limit).Offset(offset).
		Find(&episodes)
	return episodes
}

// episodesByRecency is all of a show's episodes ordered newest first,
// using row creation time when the publish date is absent.
func (c *Catalog) episodesByRecency(showID uint) []Episode {
	var episodes []Episode
	c.db.Where("show_id = ?", showID).Find(&episodes)
	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].RecencyTime().After(episodes[j].RecencyTime())
	})
	return episodes
}

func (c *Catalog) deleteEpisodes(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return c.db.Unscoped().Delete(Episode{}, "id in (?)", ids).Error
}

// updateLatest points show at episodeID and stamps the reconciliation
// time in one update. When the schema lacks the timestamp column the same
// update is written without it; degraded mode is never a caller error.
func (c *Catalog) updateLatest(show *Show, episodeID uint) error {
	now := time.Now().UTC()
	var fields map[string]interface{}
	if c.hasRefreshedAt {
		fields = map[string]interface{}{
			"latest_episode_id":     episodeID,
			columnLatestRefreshedAt: now,
		}
	} else {
		fields = map[string]interface{}{
			"latest_episode_id": episodeID,
		}
	}
	err := c.db.Model(&Show{}).Where("id = ?", show.ID).Updates(fields).Error
	if err != nil {
		return err
	}
	show.LatestEpisodeID = &episodeID
	if c.hasRefreshedAt {
		show.LatestRefreshedAt = &now
	}
	return nil
}
