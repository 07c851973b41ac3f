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

// Package schedule runs the standing maintenance jobs. Each job has at
// most one run in flight, jobs that share a backing store take turns, and
// a fire that cannot start within the misfire grace is dropped so queued
// fires coalesce into the next one.
package schedule

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/podkeep/podkeep/config"
	"github.com/podkeep/podkeep/lib/log"
)

var ErrJobNotFound = errors.New("job not found")

// Task is one unit of scheduled work.
type Task func() error

type job struct {
	id     string
	domain string
	fire   func()

	mu      sync.Mutex
	running bool
	runs    int
	skipped int
	lastRun time.Time
	lastErr error
}

// JobStatus is a point-in-time view of one registered job.
type JobStatus struct {
	ID      string
	Domain  string
	Running bool
	Runs    int
	Skipped int
	LastRun time.Time
	NextRun time.Time
	LastErr string
}

type Coordinator struct {
	config    *config.Config
	scheduler *gocron.Scheduler

	mu      sync.Mutex
	jobs    map[string]*job
	order   []string
	domains map[string]chan struct{}
}

func NewCoordinator(cfg *config.Config) *Coordinator {
	return &Coordinator{
		config:    cfg,
		scheduler: gocron.NewScheduler(time.UTC),
		jobs:      make(map[string]*job),
		domains:   make(map[string]chan struct{}),
	}
}

// RegisterEvery schedules task at a fixed interval. Jobs registered with
// the same domain never run concurrently with each other.
func (c *Coordinator) RegisterEvery(id, domain string, interval time.Duration, task Task) error {
	j, err := c.addJob(id, domain)
	if err != nil {
		return err
	}
	j.fire = c.wrap(j, task)
	_, err = c.scheduler.Every(interval).WaitForSchedule().
		Tag(id).SingletonMode().Do(j.fire)
	return err
}

// RegisterCron schedules task on a cron expression.
func (c *Coordinator) RegisterCron(id, domain, expr string, task Task) error {
	j, err := c.addJob(id, domain)
	if err != nil {
		return err
	}
	j.fire = c.wrap(j, task)
	_, err = c.scheduler.Cron(expr).
		Tag(id).SingletonMode().Do(j.fire)
	return err
}

func (c *Coordinator) addJob(id, domain string) (*job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.jobs[id]; ok {
		return nil, fmt.Errorf("job %s already registered", id)
	}
	j := &job{id: id, domain: domain}
	c.jobs[id] = j
	c.order = append(c.order, id)
	if _, ok := c.domains[domain]; !ok {
		sem := make(chan struct{}, 1)
		sem <- struct{}{}
		c.domains[domain] = sem
	}
	return j, nil
}

// wrap serializes the job within its domain and records run state. A fire
// that cannot take the domain within the misfire grace is skipped; the
// schedule stays aligned and the next fire covers for it.
func (c *Coordinator) wrap(j *job, task Task) func() {
	c.mu.Lock()
	sem := c.domains[j.domain]
	grace := c.config.Catalog.MisfireGrace
	c.mu.Unlock()

	return func() {
		select {
		case <-sem:
		case <-time.After(grace):
			j.mu.Lock()
			j.skipped++
			j.mu.Unlock()
			log.Printf("job %s skipped, %s busy\n", j.id, j.domain)
			return
		}
		defer func() {
			sem <- struct{}{}
		}()

		j.mu.Lock()
		j.running = true
		j.lastRun = time.Now()
		j.runs++
		j.mu.Unlock()

		err := task()

		j.mu.Lock()
		j.running = false
		j.lastErr = err
		j.mu.Unlock()
		if err != nil {
			log.Printf("job %s: %s\n", j.id, err)
		}
	}
}

func (c *Coordinator) Start() {
	c.scheduler.StartAsync()
}

func (c *Coordinator) Stop() {
	c.scheduler.Stop()
}

// RunNow fires a registered job out of schedule, synchronously. The usual
// domain rules still apply.
func (c *Coordinator) RunNow(id string) error {
	c.mu.Lock()
	j, ok := c.jobs[id]
	c.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	j.fire()
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastErr
}

// Status reports each registered job in registration order.
func (c *Coordinator) Status() []JobStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	nextRuns := make(map[string]time.Time)
	for _, sj := range c.scheduler.Jobs() {
		for _, tag := range sj.Tags() {
			nextRuns[tag] = sj.NextRun()
		}
	}

	var list []JobStatus
	for _, id := range c.order {
		j := c.jobs[id]
		j.mu.Lock()
		status := JobStatus{
			ID:      j.id,
			Domain:  j.domain,
			Running: j.running,
			Runs:    j.runs,
			Skipped: j.skipped,
			LastRun: j.lastRun,
			NextRun: nextRuns[j.id],
		}
		if j.lastErr != nil {
			status.LastErr = j.lastErr.Error()
		}
		j.mu.Unlock()
		list = append(list, status)
	}
	return list
}
