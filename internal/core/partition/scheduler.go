package partition

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one unit of work executed on a partition's goroutine.
type Job func()

// Partition is a scheduling unit (one map). All jobs posted to a partition
// run on a single goroutine in post order, so map state owned by the
// partition needs no locks.
type Partition struct {
	MapID   int16
	mailbox chan Job
	stopped chan struct{}
	log     *zap.Logger
}

// Post queues job. It blocks while the mailbox is full and returns false
// once the partition has stopped.
func (p *Partition) Post(job Job) bool {
	select {
	case <-p.stopped:
		return false
	default:
	}
	select {
	case p.mailbox <- job:
		return true
	case <-p.stopped:
		return false
	}
}

// Call posts fn and waits for it to finish. Returns false if the partition
// is stopped and fn did not run.
func (p *Partition) Call(fn func()) bool {
	done := make(chan struct{})
	if !p.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-p.stopped:
		// drained on shutdown; fn may or may not have run
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

func (p *Partition) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(p.stopped)
			p.drain()
			p.log.Debug("partition stopped")
			return nil
		case job := <-p.mailbox:
			job()
		}
	}
}

// drain runs whatever was queued before shutdown so waiting callers return.
func (p *Partition) drain() {
	for {
		select {
		case job := <-p.mailbox:
			job()
		default:
			return
		}
	}
}

// Scheduler owns one Partition per map and their goroutines.
type Scheduler struct {
	mailboxSize int
	parts       map[int16]*Partition
	order       []int16
	log         *zap.Logger
}

func NewScheduler(mailboxSize int, log *zap.Logger) *Scheduler {
	if mailboxSize < 1 {
		mailboxSize = 1
	}
	return &Scheduler{
		mailboxSize: mailboxSize,
		parts:       make(map[int16]*Partition),
		log:         log,
	}
}

// Add creates the partition for mapID. Must be called before Run.
func (s *Scheduler) Add(mapID int16) *Partition {
	if p, ok := s.parts[mapID]; ok {
		return p
	}
	p := &Partition{
		MapID:   mapID,
		mailbox: make(chan Job, s.mailboxSize),
		stopped: make(chan struct{}),
		log:     s.log.With(zap.Int16("map", mapID)),
	}
	s.parts[mapID] = p
	s.order = append(s.order, mapID)
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
	return p
}

// Get returns the partition for mapID, or nil.
func (s *Scheduler) Get(mapID int16) *Partition {
	return s.parts[mapID]
}

// MapIDs returns partition ids in ascending order.
func (s *Scheduler) MapIDs() []int16 {
	return s.order
}

// Len returns the number of partitions.
func (s *Scheduler) Len() int {
	return len(s.parts)
}

// Run starts every partition goroutine and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range s.order {
		p := s.parts[id]
		g.Go(func() error { return p.loop(ctx) })
	}
	return g.Wait()
}

// Barrier waits until every partition has finished all jobs posted before
// the call.
func (s *Scheduler) Barrier() {
	var wg sync.WaitGroup
	for _, id := range s.order {
		wg.Add(1)
		if !s.parts[id].Post(wg.Done) {
			wg.Done()
		}
	}
	wg.Wait()
}
