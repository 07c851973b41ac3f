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
	"fmt"

	"github.com/podkeep/podkeep/lib/log"
)

// SweepFailure records one show whose cleanup failed during a
// catalog-wide sweep.
type SweepFailure struct {
	ShowID uint   `json:"showId"`
	Title  string `json:"title"`
	Err    string `json:"error"`
}

// SweepResult summarizes a catalog-wide retention sweep. Failures are
// isolated and reported, never raised.
type SweepResult struct {
	ShowsProcessed int            `json:"showsProcessed"`
	TotalDeleted   int            `json:"totalDeleted"`
	Failures       []SweepFailure `json:"failures,omitempty"`
}

// SweepStats counts what a sweep would remove without removing anything.
type SweepStats struct {
	TotalShows        int   `json:"totalShows"`
	ShowsNeedingSweep int   `json:"showsNeedingSweep"`
	TotalEpisodes     int64 `json:"totalEpisodes"`
	EpisodesToDelete  int64 `json:"episodesToDelete"`
}

// Sweep bounds a show's persisted episodes to the keep newest, ordered by
// recency. Dependent per-user records are deleted first so they never
// outlive their episode; the stores enforce no such relationship
// themselves. Returns the number of episodes deleted.
func (c *Catalog) Sweep(showID uint, keep int) (int, error) {
	show, err := c.LookupShow(showID)
	if err != nil {
		return 0, err
	}
	return c.sweep(&show, keep)
}

func (c *Catalog) sweep(show *Show, keep int) (int, error) {
	episodes := c.episodesByRecency(show.ID)
	if len(episodes) <= keep {
		return 0, nil
	}

	purge := episodes[keep:]
	ids := make([]uint, 0, len(purge))
	eids := make([]string, 0, len(purge))
	for _, e := range purge {
		ids = append(ids, e.ID)
		eids = append(eids, e.EID)
	}

	// phase 1: dependent records first
	if c.userdata != nil {
		err := c.userdata.DeleteEpisodes(eids)
		if err != nil {
			return 0, fmt.Errorf("user data cleanup: %w", err)
		}
	}

	// the latest pointer must keep referencing an existing row
	if show.LatestEpisodeID != nil {
		for _, id := range ids {
			if id == *show.LatestEpisodeID {
				err := c.updateLatest(show, episodes[0].ID)
				if err != nil {
					return 0, err
				}
				break
			}
		}
	}

	// phase 2: the episode rows
	err := c.deleteEpisodes(ids)
	if err != nil {
		return 0, err
	}

	c.InvalidateShow(show.ID)
	return len(ids), nil
}

// SweepAll sweeps every show. One show's failure never aborts the rest;
// failures are accumulated in the result.
func (c *Catalog) SweepAll(keep int) SweepResult {
	var result SweepResult
	shows := c.Shows()
	for i := range shows {
		show := &shows[i]
		result.ShowsProcessed++
		deleted, err := c.sweep(show, keep)
		if err != nil {
			log.Printf("sweep %s: %s\n", show.Title, err)
			result.Failures = append(result.Failures, SweepFailure{
				ShowID: show.ID,
				Title:  show.Title,
				Err:    err.Error(),
			})
			continue
		}
		if deleted > 0 {
			log.Printf("sweep %s: deleted %d\n", show.Title, deleted)
			result.TotalDeleted += deleted
		}
	}
	log.Printf("sweep: %d shows, %d deleted, %d failures\n",
		result.ShowsProcessed, result.TotalDeleted, len(result.Failures))
	return result
}

// SweepAllStats reports what SweepAll would delete with the given keep
// count.
func (c *Catalog) SweepAllStats(keep int) SweepStats {
	var stats SweepStats
	shows := c.Shows()
	stats.TotalShows = len(shows)
	for i := range shows {
		count := c.EpisodeCount(shows[i].ID)
		stats.TotalEpisodes += count
		if count > int64(keep) {
			stats.ShowsNeedingSweep++
			stats.EpisodesToDelete += count - int64(keep)
		}
	}
	return stats
}
