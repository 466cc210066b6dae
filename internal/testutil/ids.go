// Package testutil provides deterministic helpers shared by package tests:
// id generation and embedded document stores seeded with fixtures.
package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates the _id values "doc-1", "doc-2", ... so that
// documents inserted without an _id have predictable ids in golden output.
//
// Implements docstore.IDGenerator.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialIDs creates a generator whose ids start with prefix.
// If prefix is empty, "doc" is used. The first id ends in 1.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "doc"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Reset restarts the sequence. After Reset the next id ends in 1 again.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
