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

	"github.com/podkeep/podkeep/lib/log"
	"github.com/podkeep/podkeep/lib/str"
	"github.com/podkeep/podkeep/podindex"
)

// RefreshReport summarizes one pass of a scheduled refresh job.
type RefreshReport struct {
	Processed int `json:"processed"`
	Refreshed int `json:"refreshed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// refreshLatest reconciles a show's latest episode with the directory.
// The newest directory episode is upserted by its directory id so repeated
// refreshes never duplicate rows, the show's pointer and freshness
// timestamp are updated, and the result is written through to the volatile
// cache. Any directory failure falls back to the previously persisted
// episode; an error is returned only when neither exists.
func (c *Catalog) refreshLatest(show *Show) (Episode, error) {
	if show.SID == "" {
		return c.fallback(show, ErrUpstreamIDMissing)
	}

	page, err := c.provider.EpisodesPage(show.SID, 0)
	if err != nil {
		log.Printf("refresh %s: %s\n", show.SID, err)
		return c.fallback(show, err)
	}
	if len(page.Items) == 0 {
		return c.fallback(show, ErrNoData)
	}

	episode, err := c.upsertEpisode(show.ID, page.Items[0])
	if err != nil {
		log.Printf("refresh %s: %s\n", show.SID, err)
		return c.fallback(show, ErrWriteFailed)
	}

	err = c.updateLatest(show, episode.ID)
	if err != nil {
		log.Printf("refresh %s: %s\n", show.SID, err)
		return c.fallback(show, ErrWriteFailed)
	}

	c.cache.Set(latestEpisodeKey(show.ID), episode)
	return episode, nil
}

// fallback serves the previously persisted latest episode when a refresh
// cannot complete. Degraded upstream connectivity surfaces to readers only
// as staleness.
func (c *Catalog) fallback(show *Show, cause error) (Episode, error) {
	if show.LatestEpisodeID != nil {
		episode, err := c.LookupEpisode(*show.LatestEpisodeID)
		if err == nil {
			c.cache.Set(latestEpisodeKey(show.ID), episode)
			return episode, nil
		}
	}
	return Episode{}, cause
}

// upsertEpisode inserts a directory episode or updates the existing row
// with the same directory id, keeping the internal id stable across
// repeated refreshes.
func (c *Catalog) upsertEpisode(showID uint, item podindex.Episode) (Episode, error) {
	episode := c.findEpisode(item.ID)
	if episode == nil {
		episode = &Episode{
			ShowID: showID,
			EID:    item.ID,
		}
		c.applyEpisode(episode, item)
		err := c.createEpisode(episode)
		if err != nil {
			return Episode{}, err
		}
	} else {
		c.applyEpisode(episode, item)
		err := c.saveEpisode(episode)
		if err != nil {
			return Episode{}, err
		}
	}
	return *episode, nil
}

// applyEpisode maps directory fields to the internal schema, bounding the
// text fields and converting the directory's units.
func (c *Catalog) applyEpisode(episode *Episode, item podindex.Episode) {
	episode.Title = str.Truncate(item.Title, MaxTitleLength)
	episode.Description = str.Truncate(item.Description, MaxDescriptionLength)
	episode.AudioURL = item.Audio
	episode.ImageURL = item.Image
	episode.Duration = item.AudioLengthSec
	episode.Explicit = item.Explicit
	if t := item.PublishTime(); !t.IsZero() {
		episode.PublishedAt = &t
	}
}

// refreshWindow page-fetches the directory until windowSize episodes are
// collected or the directory signals no further pages, then upserts them
// all. The loop terminates on a zero continuation cursor; the directory
// repeats the final cursor otherwise.
func (c *Catalog) refreshWindow(show *Show, windowSize int) ([]Episode, error) {
	if show.SID == "" {
		return nil, ErrUpstreamIDMissing
	}

	var items []podindex.Episode
	var cursor int64
	for len(items) < windowSize {
		page, err := c.provider.EpisodesPage(show.SID, cursor)
		if err != nil {
			if len(items) == 0 {
				return nil, err
			}
			// keep what was already fetched
			break
		}
		if len(page.Items) == 0 {
			break
		}
		items = append(items, page.Items...)
		cursor = page.NextCursor
		if cursor == 0 {
			// last page
			break
		}
	}
	if len(items) > windowSize {
		items = items[:windowSize]
	}
	if len(items) == 0 {
		return nil, ErrNoData
	}

	episodes := make([]Episode, 0, len(items))
	newestStored := false
	for i, item := range items {
		episode, err := c.upsertEpisode(show.ID, item)
		if err != nil {
			log.Printf("refresh window %s: %s\n", show.SID, err)
			continue
		}
		if i == 0 {
			newestStored = true
		}
		episodes = append(episodes, episode)
	}
	if len(episodes) == 0 {
		return nil, ErrWriteFailed
	}

	err := c.updateLatest(show, episodes[0].ID)
	if err != nil {
		log.Printf("refresh window %s: %s\n", show.SID, err)
	}
	// the cached latest must be the newest directory episode; when that
	// one failed to persist, leave the key cold so readers re-resolve
	if newestStored {
		c.cache.Set(latestEpisodeKey(show.ID), episodes[0])
	}
	return episodes, nil
}

// RefreshLatest reconciles one show now, regardless of freshness.
func (c *Catalog) RefreshLatest(showID uint) (Episode, error) {
	show, err := c.LookupShow(showID)
	if err != nil {
		return Episode{}, err
	}
	v, err, _ := c.flight.Do(latestEpisodeKey(showID), func() (interface{}, error) {
		return c.refreshLatest(&show)
	})
	if err != nil {
		return Episode{}, err
	}
	return v.(Episode), nil
}

// RefreshWindow imports up to windowSize of a show's newest episodes now.
func (c *Catalog) RefreshWindow(showID uint, windowSize int) ([]Episode, error) {
	show, err := c.LookupShow(showID)
	if err != nil {
		return nil, err
	}
	if windowSize <= 0 {
		windowSize = c.config.Catalog.WindowSize
	}
	return c.refreshWindow(&show, windowSize)
}

// RefreshFeatured reconciles featured shows whose persisted data has aged
// past the TTL. Shows with a latest episode but no freshness timestamp are
// skipped; the volatile-tier soft refresh covers those without hammering
// the directory.
func (c *Catalog) RefreshFeatured() RefreshReport {
	var report RefreshReport
	shows := c.FeaturedShows()
	for i := range shows {
		show := &shows[i]
		report.Processed++
		switch c.freshness(show) {
		case Fresh:
			report.Skipped++
			continue
		case Unknown:
			report.Skipped++
			continue
		}
		if show.SID == "" {
			report.Failed++
			continue
		}
		_, err := c.refreshLatest(show)
		if err != nil {
			report.Failed++
			log.Printf("featured refresh %s: %s\n", show.Title, err)
			continue
		}
		report.Refreshed++
	}
	log.Printf("featured refresh: %d refreshed, %d skipped, %d failed\n",
		report.Refreshed, report.Skipped, report.Failed)
	return report
}

// RefreshStale reconciles a bounded batch of any shows whose freshness
// timestamp is older than the stale threshold. This catches shows readers
// rarely touch. A no-op when the schema carries no timestamp.
func (c *Catalog) RefreshStale() RefreshReport {
	var report RefreshReport
	if !c.hasRefreshedAt {
		return report
	}
	cutoff := time.Now().UTC().Add(-c.config.Catalog.StaleThreshold)
	shows := c.staleShows(cutoff, c.config.Catalog.StaleBatchSize)
	for i := range shows {
		show := &shows[i]
		report.Processed++
		_, err := c.refreshLatest(show)
		if err != nil {
			report.Failed++
			log.Printf("stale refresh %s: %s\n", show.Title, err)
			continue
		}
		report.Refreshed++
	}
	log.Printf("stale refresh: %d refreshed, %d failed\n",
		report.Refreshed, report.Failed)
	return report
}
