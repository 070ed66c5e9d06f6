package sanction

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"math/big"

	"sanction-bot/model"
)

// DefaultIDAttempts is the number of candidates drawn before giving up.
const DefaultIDAttempts = 5

var (
	idFloor = big.NewInt(100_000_000_000_000_000) // 10^17
	idSpan  = big.NewInt(900_000_000_000_000_000) // 10^18 - 10^17
)

// IDGenerator draws 18 digit numeric action IDs and probes the store for collisions.
// The probe is check-then-use; the store's primary key is what finally rejects a
// duplicate that slips through.
type IDGenerator struct {
	store       Store
	maxAttempts int
	random      io.Reader
}

// NewIDGenerator creates a generator. maxAttempts <= 0 uses DefaultIDAttempts.
func NewIDGenerator(store Store, maxAttempts int) *IDGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultIDAttempts
	}
	return &IDGenerator{store: store, maxAttempts: maxAttempts, random: rand.Reader}
}

// Generate returns an action ID no existing record uses.
func (g *IDGenerator) Generate(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		candidate, err := g.draw()
		if err != nil {
			return "", fmt.Errorf("failed to draw action id: %w", err)
		}

		existing, err := g.store.FindOne(ctx, model.SanctionFilter{ActionID: candidate})
		if err != nil {
			log.Printf("[Sanction] ID probe for %s failed (attempt %d/%d): %v", candidate, attempt+1, g.maxAttempts, err)
			lastErr = err
			continue
		}
		if existing != nil {
			log.Printf("[Sanction] ID collision on %s (attempt %d/%d)", candidate, attempt+1, g.maxAttempts)
			lastErr = nil
			continue
		}
		return candidate, nil
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: id probe: %w", ErrStoreUnavailable, lastErr)
	}
	return "", fmt.Errorf("%w after %d attempts", ErrGenerationExhausted, g.maxAttempts)
}

func (g *IDGenerator) draw() (string, error) {
	n, err := rand.Int(g.random, idSpan)
	if err != nil {
		return "", err
	}
	return n.Add(n, idFloor).String(), nil
}
