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
)

// Freshness classifies a show's persisted episode data relative to the
// configured TTL.
type Freshness int

const (
	// Fresh data was reconciled within the TTL and is served as is.
	Fresh Freshness = iota
	// Stale data must be reconciled with the directory before serving.
	Stale
	// Unknown means a latest episode exists but the schema carries no
	// refresh timestamp. Callers attempt one refresh per volatile-cache
	// miss and rely on the volatile tier to bound directory calls to
	// roughly one per cache TTL window.
	Unknown
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Unknown:
		return "unknown"
	}
	return "invalid"
}

// ClassifyAt decides whether persisted data can be served or a refresh is
// needed. lastRefreshed is nil when the show has never been reconciled or
// the schema lacks the timestamp column; hasLatest reports whether a latest
// episode pointer exists. Pure; no store or clock access.
func ClassifyAt(now time.Time, lastRefreshed *time.Time, ttl time.Duration, hasLatest bool) Freshness {
	if lastRefreshed != nil {
		if now.Sub(*lastRefreshed) < ttl {
			return Fresh
		}
		return Stale
	}
	if hasLatest {
		return Unknown
	}
	return Stale
}

// Classify is ClassifyAt against the current time.
func Classify(lastRefreshed *time.Time, ttl time.Duration, hasLatest bool) Freshness {
	return ClassifyAt(time.Now(), lastRefreshed, ttl, hasLatest)
}
