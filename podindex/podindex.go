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

// Package podindex is a client for the upstream podcast directory API. The
// directory holds the authoritative, unbounded episode history; podkeep only
// ever asks it for pages of recent episodes. The directory is rate limited
// and occasionally erroring so every call here is best-effort.
package podindex

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/podkeep/podkeep/config"
	"github.com/podkeep/podkeep/lib/client"
)

var (
	ErrNotFound    = errors.New("podindex: not found")
	ErrUnavailable = errors.New("podindex: service unavailable")
	ErrKeyMissing  = errors.New("podindex: api key not configured")
)

const headerAPIKey = "X-ListenAPI-Key"

type Episode struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Image          string `json:"image"`
	Audio          string `json:"audio"`
	AudioLengthSec int    `json:"audio_length_sec"`
	Explicit       bool   `json:"explicit_content"`
	PubDateMs      int64  `json:"pub_date_ms"`
}

// PublishTime maps the directory's millisecond timestamp to a time. Zero
// when the directory has no publish date for the episode.
func (e Episode) PublishTime() time.Time {
	if e.PubDateMs == 0 {
		return time.Time{}
	}
	return time.Unix(0, e.PubDateMs*int64(time.Millisecond)).UTC()
}

type Podcast struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Publisher          string    `json:"publisher"`
	Description        string    `json:"description"`
	Image              string    `json:"image"`
	RSS                string    `json:"rss"`
	Website            string    `json:"website"`
	TotalEpisodes      int       `json:"total_episodes"`
	Episodes           []Episode `json:"episodes"`
	NextEpisodePubDate int64     `json:"next_episode_pub_date"`
}

// Page is one page of a podcast's episodes, newest first. NextCursor is
// zero on the last page.
type Page struct {
	Items      []Episode
	NextCursor int64
}

type Podindex struct {
	config *config.Config
	client *client.Client
}

func NewPodindex(cfg *config.Config) *Podindex {
	return &Podindex{
		config: cfg,
		client: client.NewClient(mergeClientConfig(cfg)),
	}
}

func mergeClientConfig(cfg *config.Config) *config.ClientConfig {
	var merged config.ClientConfig
	merged = cfg.Client
	merged.Merge(cfg.Podindex.Client)
	return &merged
}

func (p *Podindex) headers() map[string]string {
	return map[string]string{headerAPIKey: p.config.Podindex.Key}
}

func (p *Podindex) getJson(u string, result interface{}) error {
	if p.config.Podindex.Key == "" {
		return ErrKeyMissing
	}
	err := p.client.GetJsonWith(p.headers(), u, result)
	if err != nil {
		var serr *client.StatusError
		if errors.As(err, &serr) && serr.Code == 404 {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// PodcastByID fetches podcast metadata from the directory.
func (p *Podindex) PodcastByID(id string) (*Podcast, error) {
	u := fmt.Sprintf("%s/podcasts/%s", p.config.Podindex.Endpoint, url.PathEscape(id))
	var result Podcast
	err := p.getJson(u, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EpisodesPage fetches one page of a podcast's episodes sorted newest
// first. A non-zero cursor resumes from a previous page's NextCursor.
func (p *Podindex) EpisodesPage(id string, cursor int64) (*Page, error) {
	v := url.Values{}
	v.Set("sort", "recent_first")
	if cursor != 0 {
		v.Set("next_episode_pub_date", fmt.Sprintf("%d", cursor))
	}
	u := fmt.Sprintf("%s/podcasts/%s?%s",
		p.config.Podindex.Endpoint, url.PathEscape(id), v.Encode())
	var result Podcast
	err := p.getJson(u, &result)
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:      result.Episodes,
		NextCursor: result.NextEpisodePubDate,
	}, nil
}
