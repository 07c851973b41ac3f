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
	"github.com/podkeep/podkeep/lib/log"
	"github.com/podkeep/podkeep/lib/str"
)

// ImportShow creates a show from the directory on first lookup, seeding
// its episode window. Idempotent; an already imported sid returns the
// existing row.
func (c *Catalog) ImportShow(sid string) (Show, error) {
	if existing := c.findShow(sid); existing != nil {
		return *existing, nil
	}

	pod, err := c.provider.PodcastByID(sid)
	if err != nil {
		return Show{}, err
	}

	show := &Show{
		SID:         pod.ID,
		Title:       str.Truncate(pod.Title, MaxTitleLength),
		Publisher:   pod.Publisher,
		Description: str.Truncate(pod.Description, MaxDescriptionLength),
		Image:       pod.Image,
		RSS:         pod.RSS,
	}
	err = c.createShow(show)
	if err != nil {
		return Show{}, err
	}
	log.Printf("imported %s %s\n", show.SID, show.Title)

	// best-effort seed; the read path refreshes on demand anyway
	_, err = c.refreshWindow(show, c.config.Catalog.WindowSize)
	if err != nil {
		log.Printf("seed %s: %s\n", show.SID, err)
	}
	return *show, nil
}

// SetFeatured marks a show for proactive scheduled refresh.
func (c *Catalog) SetFeatured(showID uint, featured bool) error {
	show, err := c.LookupShow(showID)
	if err != nil {
		return err
	}
	return c.db.Model(&show).Update("featured", featured).Error
}
