package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/colonyops/violations/pkg/randid"
)

// IDGenerator produces record identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() (string, error)

func (f IDGeneratorFunc) NewID() (string, error) {
	return f()
}

// UUIDGenerator returns time-ordered UUIDv7 strings.
func UUIDGenerator() IDGenerator {
	return IDGeneratorFunc(func() (string, error) {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generate uuid: %w", err)
		}
		return id.String(), nil
	})
}

// ShortIDGenerator returns random [a-z0-9] ids of length n.
func ShortIDGenerator(n int) IDGenerator {
	return IDGeneratorFunc(func() (string, error) {
		return randid.Generate(n), nil
	})
}

// SequenceGenerator yields prefix1, prefix2, ... It is deterministic and
// meant for tests and fixtures.
func SequenceGenerator(prefix string) IDGenerator {
	n := 0
	return IDGeneratorFunc(func() (string, error) {
		n++
		return fmt.Sprintf("%s%d", prefix, n), nil
	})
}
