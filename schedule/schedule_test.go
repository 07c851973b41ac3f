package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/podkeep/podkeep/config"
)

func testCoordinator() *Coordinator {
	var cfg config.Config
	cfg.Catalog.MisfireGrace = 20 * time.Millisecond
	return NewCoordinator(&cfg)
}

func TestRegisterDuplicate(t *testing.T) {
	c := testCoordinator()
	err := c.RegisterEvery("job", "d", time.Hour, func() error { return nil })
	if err != nil {
		t.Fatalf("RegisterEvery %s\n", err)
	}
	err = c.RegisterEvery("job", "d", time.Hour, func() error { return nil })
	if err == nil {
		t.Error("duplicate id should fail")
	}
}

func TestRunNow(t *testing.T) {
	c := testCoordinator()
	ran := 0
	err := c.RegisterEvery("job", "d", time.Hour, func() error { ran++; return nil })
	if err != nil {
		t.Fatalf("RegisterEvery %s\n", err)
	}
	err = c.RunNow("job")
	if err != nil {
		t.Fatalf("RunNow %s\n", err)
	}
	if ran != 1 {
		t.Errorf("ran %d\n", ran)
	}
}

func TestRunNowUnknown(t *testing.T) {
	c := testCoordinator()
	err := c.RunNow("nope")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("got %s\n", err)
	}
}

func TestStatusOrder(t *testing.T) {
	c := testCoordinator()
	c.RegisterEvery("first", "d", time.Hour, func() error { return nil })
	c.RegisterCron("second", "d", "0 3 * * *", func() error { return nil })
	list := c.Status()
	if len(list) != 2 {
		t.Fatalf("got %d jobs\n", len(list))
	}
	if list[0].ID != "first" || list[1].ID != "second" {
		t.Errorf("got %s %s\n", list[0].ID, list[1].ID)
	}
}

func TestWrapRunsAndRecords(t *testing.T) {
	c := testCoordinator()
	j, err := c.addJob("job", "d")
	if err != nil {
		t.Fatalf("addJob %s\n", err)
	}
	ran := 0
	fn := c.wrap(j, func() error { ran++; return nil })
	fn()
	fn()
	if ran != 2 {
		t.Errorf("ran %d\n", ran)
	}
	if j.runs != 2 || j.skipped != 0 || j.lastErr != nil {
		t.Errorf("got %+v\n", j)
	}
}

func TestWrapSkipsWhenDomainBusy(t *testing.T) {
	c := testCoordinator()
	j, err := c.addJob("job", "d")
	if err != nil {
		t.Fatalf("addJob %s\n", err)
	}
	ran := 0
	fn := c.wrap(j, func() error { ran++; return nil })

	// hold the domain past the misfire grace
	sem := c.domains["d"]
	<-sem
	fn()
	if ran != 0 {
		t.Error("should have skipped")
	}
	if j.skipped != 1 {
		t.Errorf("skipped %d\n", j.skipped)
	}
	sem <- struct{}{}

	// domain free again, the next fire covers
	fn()
	if ran != 1 || j.runs != 1 {
		t.Errorf("ran %d runs %d\n", ran, j.runs)
	}
}

func TestWrapRecordsError(t *testing.T) {
	c := testCoordinator()
	j, _ := c.addJob("job", "d")
	boom := errors.New("boom")
	fn := c.wrap(j, func() error { return boom })
	fn()
	if j.lastErr != boom {
		t.Errorf("got %s\n", j.lastErr)
	}
	status := c.Status()
	if status[0].LastErr != "boom" {
		t.Errorf("got %s\n", status[0].LastErr)
	}
}

func TestSharedDomainSerializes(t *testing.T) {
	c := testCoordinator()
	a, _ := c.addJob("a", "d")
	b, _ := c.addJob("b", "d")

	running := make(chan struct{})
	release := make(chan struct{})
	fnA := c.wrap(a, func() error {
		close(running)
		<-release
		return nil
	})
	fnB := c.wrap(b, func() error { return nil })

	go fnA()
	<-running
	// a holds the domain, b misses its grace window
	fnB()
	if b.runs != 0 || b.skipped != 1 {
		t.Errorf("runs %d skipped %d\n", b.runs, b.skipped)
	}
	close(release)
}
