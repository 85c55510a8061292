package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/nodestore/internal/domain"
)

var testNameCounter atomic.Int64

// Node options
type NodeOption func(*domain.Node)

func WithType(t string) NodeOption {
	return func(n *domain.Node) {
		n.Type = t
	}
}

func WithDescription(d string) NodeOption {
	return func(n *domain.Node) {
		n.Description = &d
	}
}

func WithProperties(p string) NodeOption {
	return func(n *domain.Node) {
		n.Properties = &p
	}
}

// NewTestNode returns an unsaved node. An empty name is replaced with a
// unique one.
func NewTestNode(name string, opts ...NodeOption) *domain.Node {
	if name == "" {
		name = fmt.Sprintf("node-%03d", testNameCounter.Add(1))
	}
	n := &domain.Node{
		Name: name,
		Type: "database",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Clock is a manual clock for audit timestamps. Each call to Now advances it
// by Step, so consecutive writes get strictly increasing times.
type Clock struct {
	mu   sync.Mutex
	t    time.Time
	Step time.Duration
}

// NewClock starts a clock at start, ticking one millisecond per read.
func NewClock(start time.Time) *Clock {
	return &Clock{t: start.UTC(), Step: time.Millisecond}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.Step)
	return now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
