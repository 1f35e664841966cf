package views

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is the fixed progress polling period
const DefaultPollInterval = 2 * time.Second

// Poller runs a fixed-interval tick over the most recently armed task ids.
// Ticks do not wait for one another, so slow responses may overlap.
type Poller struct {
	interval time.Duration
	tick     func(ctx context.Context, ids []int)

	mu       sync.Mutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	stopLoop chan struct{}
	wg       *sync.WaitGroup
}

// NewPoller creates a stopped poller
func NewPoller(interval time.Duration, tick func(ctx context.Context, ids []int)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, tick: tick}
}

// Start enables arming. Requests made by ticks use a context cancelled by Stop.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.wg = &sync.WaitGroup{}
}

// Arm replaces the current loop with one over ids. It is a no-op while stopped.
func (p *Poller) Arm(ids []int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	if p.stopLoop != nil {
		close(p.stopLoop)
		p.stopLoop = nil
	}
	if len(ids) == 0 {
		return
	}

	stop := make(chan struct{})
	p.stopLoop = stop
	ids = append([]int(nil), ids...)
	wg := p.wg
	wg.Add(1)
	go p.loop(p.ctx, stop, wg, ids)
}

func (p *Poller) loop(ctx context.Context, stop <-chan struct{}, wg *sync.WaitGroup, ids []int) {
	defer wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.tick(ctx, ids)
			}()
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the loop and in-flight ticks and waits for them to return
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	if p.stopLoop != nil {
		close(p.stopLoop)
		p.stopLoop = nil
	}
	wg := p.wg
	p.mu.Unlock()

	wg.Wait()
}

// Armed reports whether a loop is currently scheduled
func (p *Poller) Armed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && p.stopLoop != nil
}
