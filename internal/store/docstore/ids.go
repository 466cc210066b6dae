package docstore

import "github.com/google/uuid"

// IDGenerator produces _id values for documents inserted without one.
// Implemented by UUIDv7Generator (production) and testutil.SequentialIDs
// (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids, so generated ids
// follow insertion order.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUIDv7 id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}
