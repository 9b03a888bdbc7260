package action

import (
	"sync"

	"zxd/zxgraph"
)

// ProbeResult reports which actions match a probed selection.
type ProbeResult struct {
	Generation uint64
	Enabled    map[string]bool
}

type probeRequest struct {
	gen     uint64
	graph   *zxgraph.Graph
	sel     Selection
	actions []*RewriteAction
}

// Prober scans action applicability off the control thread. Each Submit
// snapshots the graph and bumps a generation counter; the single worker
// evaluates requests in order and delivers only results that are still
// current, so a probe overtaken by a newer selection is discarded silently.
type Prober struct {
	mu       sync.Mutex
	gen      uint64
	closed   bool
	requests chan probeRequest
	deliver  func(ProbeResult)
	done     chan struct{}
}

// NewProber starts the worker. deliver is called from the worker goroutine
// for every non-stale result.
func NewProber(deliver func(ProbeResult)) *Prober {
	p := &Prober{
		requests: make(chan probeRequest, 1),
		deliver:  deliver,
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Submit queues a probe of the given actions against the selection,
// replacing any probe not yet started. Returns the request's generation.
func (p *Prober) Submit(g *zxgraph.Graph, sel Selection, actions []*RewriteAction) uint64 {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0
	}
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	req := probeRequest{gen: gen, graph: g.Copy(), sel: sel, actions: actions}
	for {
		select {
		case p.requests <- req:
			return gen
		default:
			// Drop the queued older request.
			select {
			case <-p.requests:
			default:
			}
		}
	}
}

// Close stops the worker after the in-flight probe finishes.
func (p *Prober) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.requests)
	<-p.done
}

func (p *Prober) run() {
	defer close(p.done)
	for req := range p.requests {
		enabled := make(map[string]bool, len(req.actions))
		for _, a := range req.actions {
			enabled[a.ID] = a.UpdateActive(req.graph, req.sel)
		}
		p.mu.Lock()
		stale := req.gen != p.gen
		p.mu.Unlock()
		if !stale {
			p.deliver(ProbeResult{Generation: req.gen, Enabled: enabled})
		}
	}
}
