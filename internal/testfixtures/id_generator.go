package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator yields predictable appointment ids such as "appt-1".
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator uses prefix, or "appt" when prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "appt"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next id.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc returns Next for injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued reports how many ids have been handed out.
func (g *IDGenerator) Issued() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}
