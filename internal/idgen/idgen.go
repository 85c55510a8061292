// Package idgen assigns store-side identifiers.
package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Generator produces unique, time-ordered 64-bit identifiers.
// Implementations must be safe for concurrent use.
type Generator interface {
	NextID() int64
}

// MaxWorkerID is the largest worker id a snowflake generator accepts.
const MaxWorkerID = 1023 // 10 worker bits

// Snowflake generates ids from a millisecond timestamp, a worker id and a
// per-millisecond sequence. Two generators with different worker ids never
// collide.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake returns a generator for the given worker id (0..MaxWorkerID).
func NewSnowflake(workerID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(workerID)
	if err != nil {
		return nil, fmt.Errorf("creating snowflake node %d: %w", workerID, err)
	}
	return &Snowflake{node: node}, nil
}

func (s *Snowflake) NextID() int64 {
	return s.node.Generate().Int64()
}

// Func adapts a plain function to Generator.
type Func func() int64

func (f Func) NextID() int64 { return f() }

// Sequence returns a generator counting up from start. Not time-ordered
// across restarts; intended for tests.
func Sequence(start int64) Generator {
	var mu sync.Mutex
	next := start
	return Func(func() int64 {
		mu.Lock()
		defer mu.Unlock()
		id := next
		next++
		return id
	})
}
