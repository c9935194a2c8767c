package store

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/lineweave/pkg/model"
)

// DefaultPersistDelay is how long after the last change the graph document is
// written. Every further change restarts the timer, so a burst of edits
// coalesces into one write.
const DefaultPersistDelay = time.Second

// GraphSaver writes a graph document keyed by repository path.
type GraphSaver interface {
	SaveGraphData(repoPath string, doc model.GraphDoc) error
}

// Persister is the single deferred-write task for one repository. Schedule
// replaces any pending write; Flush forces the pending write out now; Close
// flushes and stops the timer.
type Persister struct {
	saver    GraphSaver
	repoPath string
	delay    time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *model.GraphDoc
	closed  bool
}

// NewPersister creates a persister for one repository. A nil logger discards
// output.
func NewPersister(saver GraphSaver, repoPath string, delay time.Duration, logger *log.Logger) *Persister {
	if delay <= 0 {
		delay = DefaultPersistDelay
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Persister{
		saver:    saver,
		repoPath: repoPath,
		delay:    delay,
		logger:   logger.With("repo", repoPath),
	}
}

// Schedule records doc as the document to persist and (re)starts the delay
// timer. The most recent document always wins.
func (p *Persister) Schedule(doc model.GraphDoc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = &doc
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.flushPending)
}

// Flush writes any pending document immediately and cancels the timer.
func (p *Persister) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.flushPending()
}

// Close flushes and permanently stops the persister.
func (p *Persister) Close() {
	p.Flush()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *Persister) flushPending() {
	p.mu.Lock()
	doc := p.pending
	p.pending = nil
	p.mu.Unlock()

	if doc == nil {
		return
	}
	if err := p.saver.SaveGraphData(p.repoPath, *doc); err != nil {
		// Keep the document so the next Schedule/Flush retries it.
		p.mu.Lock()
		if p.pending == nil && !p.closed {
			p.pending = doc
		}
		p.mu.Unlock()
		p.logger.Error("graph save failed", "err", err)
		return
	}
	p.logger.Debug("graph saved", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
}
