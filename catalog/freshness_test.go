package catalog

import (
	"testing"
	"time"
)

func TestClassifyFresh(t *testing.T) {
	now := time.Now()
	refreshed := now.Add(-time.Hour)
	f := ClassifyAt(now, &refreshed, 6*time.Hour, true)
	if f != Fresh {
		t.Errorf("got %s\n", f)
	}
}

func TestClassifyStale(t *testing.T) {
	now := time.Now()
	refreshed := now.Add(-7 * time.Hour)
	f := ClassifyAt(now, &refreshed, 6*time.Hour, true)
	if f != Stale {
		t.Errorf("got %s\n", f)
	}
}

func TestClassifyExactTTL(t *testing.T) {
	// age equal to the TTL is already stale
	now := time.Now()
	refreshed := now.Add(-6 * time.Hour)
	f := ClassifyAt(now, &refreshed, 6*time.Hour, true)
	if f != Stale {
		t.Errorf("got %s\n", f)
	}
}

func TestClassifyUnknown(t *testing.T) {
	// no timestamp but a latest episode exists
	f := ClassifyAt(time.Now(), nil, 6*time.Hour, true)
	if f != Unknown {
		t.Errorf("got %s\n", f)
	}
}

func TestClassifyNeverRefreshed(t *testing.T) {
	f := ClassifyAt(time.Now(), nil, 6*time.Hour, false)
	if f != Stale {
		t.Errorf("got %s\n", f)
	}
}

func TestFreshnessString(t *testing.T) {
	if Fresh.String() != "fresh" || Stale.String() != "stale" ||
		Unknown.String() != "unknown" {
		t.Error("bad strings")
	}
}
