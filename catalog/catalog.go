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

// Package catalog keeps a bounded, periodically reconciled local copy of
// each show's episodes. Reads go volatile cache first, then the persisted
// store gated by a freshness classification, then the upstream directory.
// Read paths prefer serving stale persisted data over failing.
package catalog

import (
	"errors"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/podkeep/podkeep/config"
	"github.com/podkeep/podkeep/podindex"
)

var (
	ErrShowNotFound      = errors.New("show not found")
	ErrEpisodeNotFound   = errors.New("episode not found")
	ErrUpstreamIDMissing = errors.New("show not linked to directory")
	ErrNoData            = errors.New("directory has no episodes")
	ErrWriteFailed       = errors.New("persisted write failed")
)

// Provider is the upstream directory surface the catalog consumes. The
// production implementation is podindex.Podindex.
type Provider interface {
	EpisodesPage(id string, cursor int64) (*podindex.Page, error)
	PodcastByID(id string) (*podindex.Podcast, error)
}

// UserData is the per-user dependent record store. Episode deletion
// cascades through it so progress and saves never reference a deleted
// episode; the stores are logically separate and enforce nothing
// themselves.
type UserData interface {
	DeleteEpisodes(eids []string) error
}

type Catalog struct {
	config   *config.Config
	db       *gorm.DB
	provider Provider
	cache    *Cache
	userdata UserData
	flight   singleflight.Group

	// set once by probeSchema at open
	hasRefreshedAt bool
}

func NewCatalog(cfg *config.Config) *Catalog {
	return &Catalog{
		config:   cfg,
		provider: podindex.NewPodindex(cfg),
		cache: NewCache(cfg.Catalog.CacheEnabled,
			cfg.Catalog.CacheMaxEntries, cfg.Catalog.EpisodeTTL),
	}
}

// SetUserData attaches the dependent record store used for retention
// cascades.
func (c *Catalog) SetUserData(u UserData) {
	c.userdata = u
}

func (c *Catalog) Open() (err error) {
	err = c.openDB()
	return
}

func (c *Catalog) Close() {
	c.closeDB()
}

func (c *Catalog) HasShows() bool {
	return c.ShowCount() > 0
}

// episodeList is the volatile-tier value for one window of a show's
// episodes.
type episodeList struct {
	Episodes []Episode
	Total    int64
}

// LatestEpisode returns the freshest known episode of a show. Volatile
// cache first; otherwise the persisted pointer is served as is when fresh,
// and reconciled with the directory when stale or of unknown age.
// Concurrent misses for the same show collapse into one refresh.
func (c *Catalog) LatestEpisode(showID uint) (Episode, error) {
	key := latestEpisodeKey(showID)
	if v, ok := c.cache.Get(key); ok {
		return v.(Episode), nil
	}

	show, err := c.LookupShow(showID)
	if err != nil {
		return Episode{}, err
	}

	if c.freshness(&show) == Fresh && show.LatestEpisodeID != nil {
		episode, err := c.LookupEpisode(*show.LatestEpisodeID)
		if err == nil {
			c.cache.Set(key, episode)
			return episode, nil
		}
		// pointer no longer resolves, reconcile below
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		return c.refreshLatest(&show)
	})
	if err != nil {
		return Episode{}, err
	}
	episode := v.(Episode)
	return episode, nil
}

// freshness classifies a show using the persisted timestamp when the
// schema carries one.
func (c *Catalog) freshness(show *Show) Freshness {
	var lastRefreshed = show.LatestRefreshedAt
	if !c.hasRefreshedAt {
		lastRefreshed = nil
	}
	return Classify(lastRefreshed, c.config.Catalog.EpisodeTTL,
		show.LatestEpisodeID != nil)
}

// EpisodesWindow returns one page of a show's episodes, newest first, with
// the show's total episode count. A stale or empty window triggers a
// best-effort batch reconciliation first; persisted data is served
// regardless of whether that succeeds.
func (c *Catalog) EpisodesWindow(showID uint, limit, offset int) ([]Episode, int64, error) {
	if limit <= 0 {
		limit = c.config.Catalog.WindowSize
	}
	key := episodeListKey(showID, limit, offset)
	if v, ok := c.cache.Get(key); ok {
		list := v.(episodeList)
		return list.Episodes, list.Total, nil
	}

	show, err := c.LookupShow(showID)
	if err != nil {
		return nil, 0, err
	}

	var lastRefreshed = show.LatestRefreshedAt
	if !c.hasRefreshedAt {
		lastRefreshed = nil
	}
	if Classify(lastRefreshed, c.config.Catalog.EpisodeTTL,
		c.hasEpisodes(show.ID)) != Fresh {
		c.flight.Do(key, func() (interface{}, error) {
			c.refreshWindow(&show, c.config.Catalog.WindowSize)
			return nil, nil
		})
	}

	episodes := c.episodeWindow(show.ID, limit, offset)
	total := c.EpisodeCount(show.ID)
	c.cache.Set(key, episodeList{Episodes: episodes, Total: total})
	return episodes, total, nil
}

// InvalidateShow drops every volatile-tier entry for a show and returns
// the number removed.
func (c *Catalog) InvalidateShow(showID uint) int {
	n := 0
	for _, prefix := range showKeyPrefixes(showID) {
		n += c.cache.Invalidate(prefix)
	}
	return n
}

func (c *Catalog) CacheStats() CacheStats {
	return c.cache.Stats()
}

// CleanupCache drops expired volatile-tier entries.
func (c *Catalog) CleanupCache() int {
	return c.cache.CleanupExpired()
}
