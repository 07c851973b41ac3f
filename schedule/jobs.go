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

package schedule

import (
	"github.com/podkeep/podkeep/catalog"
	"github.com/podkeep/podkeep/config"
	"github.com/podkeep/podkeep/lib/log"
)

const (
	JobFeaturedRefresh = "featured-refresh"
	JobStaleRefresh    = "stale-refresh"
	JobSweep           = "sweep"
	JobCacheCleanup    = "cache-cleanup"

	domainCatalog = "catalog"
	domainCache   = "cache"
)

// RegisterJobs sets up the standing maintenance jobs against a long-lived
// catalog. Refresh and sweep jobs share the catalog domain so they never
// write over each other.
func RegisterJobs(cfg *config.Config, c *Coordinator, cat *catalog.Catalog) error {
	err := c.RegisterEvery(JobFeaturedRefresh, domainCatalog,
		cfg.Catalog.FeaturedRefreshInterval, func() error {
			cat.RefreshFeatured()
			return nil
		})
	if err != nil {
		return err
	}

	err = c.RegisterEvery(JobStaleRefresh, domainCatalog,
		cfg.Catalog.StaleRefreshInterval, func() error {
			cat.RefreshStale()
			return nil
		})
	if err != nil {
		return err
	}

	err = c.RegisterCron(JobSweep, domainCatalog,
		cfg.Catalog.SweepSchedule, func() error {
			result := cat.SweepAll(cfg.Catalog.RetainCount)
			log.Printf("sweep: %d shows, %d episodes deleted, %d failures\n",
				result.ShowsProcessed, result.TotalDeleted, len(result.Failures))
			for _, f := range result.Failures {
				log.Printf("sweep %d %s: %s\n", f.ShowID, f.Title, f.Err)
			}
			return nil
		})
	if err != nil {
		return err
	}

	return c.RegisterEvery(JobCacheCleanup, domainCache,
		cfg.Catalog.CacheCleanupInterval, func() error {
			n := cat.CleanupCache()
			if n > 0 {
				log.Printf("cache cleanup: %d expired\n", n)
			}
			return nil
		})
}
