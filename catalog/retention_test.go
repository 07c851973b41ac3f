package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeUserData struct {
	deleted [][]string
	failFor string
}

func (f *fakeUserData) DeleteEpisodes(eids []string) error {
	for _, eid := range eids {
		if f.failFor != "" && strings.HasPrefix(eid, f.failFor) {
			return errors.New("user store down")
		}
	}
	f.deleted = append(f.deleted, eids)
	return nil
}

func seedEpisodes(t *testing.T, c *Catalog, show *Show, prefix string, n int) {
	for i := 1; i <= n; i++ {
		at := time.Now().Add(-time.Duration(i) * 24 * time.Hour)
		episode := &Episode{
			ShowID:      show.ID,
			EID:         prefix + string(rune('0'+i)),
			Title:       "episode",
			PublishedAt: &at,
		}
		err := c.createEpisode(episode)
		if err != nil {
			t.Fatalf("createEpisode %s\n", err)
		}
	}
}

func TestSweepKeepsNewest(t *testing.T) {
	c, _ := testCatalog(t, "sweepnewest")
	ud := &fakeUserData{}
	c.SetUserData(ud)
	show := testShow(t, c, "abc")
	seedEpisodes(t, c, show, "a", 5)

	deleted, err := c.Sweep(show.ID, 3)
	if err != nil {
		t.Fatalf("Sweep %s\n", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d\n", deleted)
	}
	if c.EpisodeCount(show.ID) != 3 {
		t.Errorf("got %d rows\n", c.EpisodeCount(show.ID))
	}
	// the two oldest went, per-user records first
	if len(ud.deleted) != 1 {
		t.Fatalf("user data calls %d\n", len(ud.deleted))
	}
	eids := ud.deleted[0]
	if len(eids) != 2 || eids[0] != "a4" || eids[1] != "a5" {
		t.Errorf("got %v\n", eids)
	}
	remaining := c.episodesByRecency(show.ID)
	if remaining[0].EID != "a1" {
		t.Errorf("newest is %s\n", remaining[0].EID)
	}
}

func TestSweepUnderLimit(t *testing.T) {
	c, _ := testCatalog(t, "sweepunder")
	ud := &fakeUserData{}
	c.SetUserData(ud)
	show := testShow(t, c, "abc")
	seedEpisodes(t, c, show, "a", 2)

	deleted, err := c.Sweep(show.ID, 3)
	if err != nil {
		t.Fatalf("Sweep %s\n", err)
	}
	if deleted != 0 {
		t.Errorf("deleted %d\n", deleted)
	}
	if len(ud.deleted) != 0 {
		t.Error("user data should be untouched")
	}
}

func TestSweepUserDataFailureAborts(t *testing.T) {
	c, _ := testCatalog(t, "sweepabort")
	ud := &fakeUserData{failFor: "a"}
	c.SetUserData(ud)
	show := testShow(t, c, "abc")
	seedEpisodes(t, c, show, "a", 5)

	_, err := c.Sweep(show.ID, 3)
	if err == nil {
		t.Fatal("should fail")
	}
	// no episode rows were deleted; dependent records never outlive them
	if c.EpisodeCount(show.ID) != 5 {
		t.Errorf("got %d rows\n", c.EpisodeCount(show.ID))
	}
}

func TestSweepRepointsLatest(t *testing.T) {
	c, _ := testCatalog(t, "sweeprepoint")
	c.SetUserData(&fakeUserData{})
	show := testShow(t, c, "abc")
	seedEpisodes(t, c, show, "a", 5)

	// point the show at an episode that is about to be swept
	oldest, err := c.LookupEID("a5")
	if err != nil {
		t.Fatalf("LookupEID %s\n", err)
	}
	err = c.updateLatest(show, oldest.ID)
	if err != nil {
		t.Fatalf("updateLatest %s\n", err)
	}

	_, err = c.Sweep(show.ID, 3)
	if err != nil {
		t.Fatalf("Sweep %s\n", err)
	}
	show2, _ := c.LookupShow(show.ID)
	if show2.LatestEpisodeID == nil {
		t.Fatal("pointer cleared")
	}
	latest, err := c.LookupEpisode(*show2.LatestEpisodeID)
	if err != nil {
		t.Fatalf("pointer dangles: %s\n", err)
	}
	if latest.EID != "a1" {
		t.Errorf("latest %s\n", latest.EID)
	}
}

func TestSweepAllIsolatesFailures(t *testing.T) {
	c, _ := testCatalog(t, "sweepall")
	ud := &fakeUserData{failFor: "b"}
	c.SetUserData(ud)
	showA := testShow(t, c, "aaa")
	showB := testShow(t, c, "bbb")
	showC := testShow(t, c, "ccc")
	seedEpisodes(t, c, showA, "a", 5)
	seedEpisodes(t, c, showB, "b", 5)
	seedEpisodes(t, c, showC, "c", 2) // under the limit, untouched

	result := c.SweepAll(3)
	if result.ShowsProcessed != 3 {
		t.Errorf("processed %d\n", result.ShowsProcessed)
	}
	if result.TotalDeleted != 2 {
		t.Errorf("deleted %d\n", result.TotalDeleted)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("failures %d\n", len(result.Failures))
	}
	if result.Failures[0].ShowID != showB.ID {
		t.Errorf("failed show %d\n", result.Failures[0].ShowID)
	}
	// the healthy show was swept, the failing one untouched
	if c.EpisodeCount(showA.ID) != 3 {
		t.Errorf("show a rows %d\n", c.EpisodeCount(showA.ID))
	}
	if c.EpisodeCount(showB.ID) != 5 {
		t.Errorf("show b rows %d\n", c.EpisodeCount(showB.ID))
	}
	if c.EpisodeCount(showC.ID) != 2 {
		t.Errorf("show c rows %d\n", c.EpisodeCount(showC.ID))
	}
}

func TestSweepAllStats(t *testing.T) {
	c, _ := testCatalog(t, "sweepstats")
	c.SetUserData(&fakeUserData{})
	showA := testShow(t, c, "aaa")
	showB := testShow(t, c, "bbb")
	seedEpisodes(t, c, showA, "a", 5)
	seedEpisodes(t, c, showB, "b", 2)

	stats := c.SweepAllStats(3)
	if stats.TotalShows != 2 {
		t.Errorf("shows %d\n", stats.TotalShows)
	}
	if stats.ShowsNeedingSweep != 1 {
		t.Errorf("needing sweep %d\n", stats.ShowsNeedingSweep)
	}
	if stats.TotalEpisodes != 7 {
		t.Errorf("episodes %d\n", stats.TotalEpisodes)
	}
	if stats.EpisodesToDelete != 2 {
		t.Errorf("to delete %d\n", stats.EpisodesToDelete)
	}
	// stats never delete
	if c.EpisodeCount(showA.ID) != 5 {
		t.Error("stats should not delete")
	}
}
