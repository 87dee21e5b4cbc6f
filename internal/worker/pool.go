// Package worker provides background processing for taste-profile updates.
package worker

import (
	"log"
	"sync"
)

// Job represents a pending centroid update: a track description and
// whether the listener signal was positive (like) or negative (skip
// during learning experiments).
type Job struct {
	Description string
	Positive    bool
}

// Handler processes one taste update. It is called from worker
// goroutines and must be safe for concurrent use.
type Handler func(description string, positive bool)

// Pool manages background workers so embedding calls never block the
// playback path.
type Pool struct {
	handler Handler
	jobs    chan Job
	wg      sync.WaitGroup
}

// NewPool creates a worker pool with the given queue size.
func NewPool(handler Handler, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{handler: handler, jobs: make(chan Job, queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.handler(job.Description, job.Positive)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job without blocking. A full queue drops the update;
// the centroid is a running average, so a lost sample is tolerable.
func (p *Pool) Submit(job Job) {
	select {
	case p.jobs <- job:
	default:
		log.Printf("WARN worker: dropping taste update for %q", job.Description)
	}
}
