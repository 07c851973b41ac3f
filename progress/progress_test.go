package progress

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/podkeep/podkeep/config"
)

func testProgress(t *testing.T, name string) *Progress {
	var cfg config.Config
	cfg.Progress.DB.Driver = "sqlite3"
	cfg.Progress.DB.Source = fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	p := NewProgress(&cfg)
	err := p.Open()
	if err != nil {
		t.Fatalf("Open %s\n", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestUpdateCreates(t *testing.T) {
	p := testProgress(t, "creates")
	err := p.Update("alice", Offset{
		EID:    "e1",
		Offset: 120,
		Date:   time.Now(),
	})
	if err != nil {
		t.Fatalf("Update %s\n", err)
	}
	offset := p.UserOffset("alice", "e1")
	if offset == nil {
		t.Fatal("offset not stored")
	}
	if offset.Offset != 120 {
		t.Errorf("got %d\n", offset.Offset)
	}
}

func TestUpdateAdvances(t *testing.T) {
	p := testProgress(t, "advances")
	now := time.Now()
	err := p.Update("alice", Offset{EID: "e1", Offset: 120, Date: now})
	if err != nil {
		t.Fatalf("Update %s\n", err)
	}
	err = p.Update("alice", Offset{EID: "e1", Offset: 300, Duration: 1800,
		Date: now.Add(time.Minute)})
	if err != nil {
		t.Fatalf("Update %s\n", err)
	}
	offsets := p.UserOffsets("alice")
	if len(offsets) != 1 {
		t.Fatalf("got %d offsets\n", len(offsets))
	}
	if offsets[0].Offset != 300 || offsets[0].Duration != 1800 {
		t.Errorf("got %+v\n", offsets[0])
	}
}

func TestUpdateRejectsOld(t *testing.T) {
	p := testProgress(t, "rejectsold")
	now := time.Now()
	err := p.Update("alice", Offset{EID: "e1", Offset: 300, Date: now})
	if err != nil {
		t.Fatalf("Update %s\n", err)
	}
	// a lagging device reports an older position
	err = p.Update("alice", Offset{EID: "e1", Offset: 100,
		Date: now.Add(-time.Hour)})
	if !errors.Is(err, ErrOffsetTooOld) {
		t.Errorf("got %s\n", err)
	}
	offset := p.UserOffset("alice", "e1")
	if offset.Offset != 300 {
		t.Errorf("position rewound to %d\n", offset.Offset)
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	p := testProgress(t, "rejectsinvalid")
	err := p.Update("alice", Offset{EID: "e1", Offset: 2000, Duration: 1800,
		Date: time.Now()})
	if !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("got %s\n", err)
	}
	err = p.Update("alice", Offset{EID: "", Offset: 10, Date: time.Now()})
	if !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("got %s\n", err)
	}
}

func TestUsersIsolated(t *testing.T) {
	p := testProgress(t, "isolated")
	now := time.Now()
	p.Update("alice", Offset{EID: "e1", Offset: 100, Date: now})
	p.Update("bob", Offset{EID: "e1", Offset: 200, Date: now})

	if got := p.UserOffset("alice", "e1").Offset; got != 100 {
		t.Errorf("alice got %d\n", got)
	}
	if got := p.UserOffset("bob", "e1").Offset; got != 200 {
		t.Errorf("bob got %d\n", got)
	}
}

func TestSaves(t *testing.T) {
	p := testProgress(t, "saves")
	err := p.SaveEpisode("alice", "e1", "listen later")
	if err != nil {
		t.Fatalf("SaveEpisode %s\n", err)
	}
	err = p.SaveEpisode("alice", "e2", "")
	if err != nil {
		t.Fatalf("SaveEpisode %s\n", err)
	}
	saves := p.UserSaves("alice")
	if len(saves) != 2 {
		t.Fatalf("got %d saves\n", len(saves))
	}

	// saving again refreshes, never duplicates
	err = p.SaveEpisode("alice", "e1", "updated")
	if err != nil {
		t.Fatalf("SaveEpisode %s\n", err)
	}
	saves = p.UserSaves("alice")
	if len(saves) != 2 {
		t.Fatalf("got %d saves\n", len(saves))
	}

	err = p.Unsave("alice", "e1")
	if err != nil {
		t.Fatalf("Unsave %s\n", err)
	}
	if len(p.UserSaves("alice")) != 1 {
		t.Error("unsave failed")
	}
}

func TestDeleteEpisodes(t *testing.T) {
	p := testProgress(t, "deleteepisodes")
	now := time.Now()
	p.Update("alice", Offset{EID: "e1", Offset: 100, Date: now})
	p.Update("alice", Offset{EID: "e2", Offset: 100, Date: now})
	p.Update("bob", Offset{EID: "e1", Offset: 50, Date: now})
	p.SaveEpisode("alice", "e1", "")
	p.SaveEpisode("bob", "e2", "")

	err := p.DeleteEpisodes([]string{"e1"})
	if err != nil {
		t.Fatalf("DeleteEpisodes %s\n", err)
	}
	// every user's records for e1 are gone, e2 untouched
	if p.UserOffset("alice", "e1") != nil {
		t.Error("alice offset survived")
	}
	if p.UserOffset("bob", "e1") != nil {
		t.Error("bob offset survived")
	}
	if p.UserOffset("alice", "e2") == nil {
		t.Error("e2 offset deleted")
	}
	if len(p.UserSaves("alice")) != 0 {
		t.Error("alice save survived")
	}
	if len(p.UserSaves("bob")) != 1 {
		t.Error("bob e2 save deleted")
	}
}

func TestDeleteEpisodesEmpty(t *testing.T) {
	p := testProgress(t, "deleteempty")
	err := p.DeleteEpisodes(nil)
	if err != nil {
		t.Errorf("DeleteEpisodes %s\n", err)
	}
}
