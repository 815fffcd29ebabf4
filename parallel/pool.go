// Package parallel runs independent jobs, such as one image file each, on a
// fixed number of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

type (
	// WorkerFunc schedules a job.
	WorkerFunc func(func())
	// WaitFunc blocks until every scheduled job has finished.
	WaitFunc func()
)

type Pool struct {
	wg      sync.WaitGroup
	work    chan func()
	workers int
	stop    func()
}

// Start launches numWorkers goroutines, GOMAXPROCS when numWorkers < 1. A
// single worker runs every job inline on the calling goroutine.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		workers: numWorkers,
		stop:    func() {},
	}
	if numWorkers == 1 {
		return pool
	}

	pool.work = make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for f := range pool.work {
				f()
			}
		})
	}
	pool.stop = sync.OnceFunc(func() { close(pool.work) })
	return pool
}

// Workers is the number of jobs that may run at once.
func (p *Pool) Workers() int {
	return p.workers
}

// Do schedules f, blocking while every worker is busy and the queue is full.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Wait stops accepting jobs and returns once all scheduled ones are done.
func (p *Pool) Wait() {
	p.stop()
	p.wg.Wait()
}
