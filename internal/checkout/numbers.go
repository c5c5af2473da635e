package checkout

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// TrackingAlphabet excludes the ambiguous glyphs 0, 1, I and O.
const TrackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const trackingLength = 6

// NumberGenerator produces order and tracking numbers.
type NumberGenerator struct {
	now  func() time.Time
	intN func(n int) int
}

// NewNumberGenerator uses the wall clock and the runtime's random source.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{now: time.Now, intN: rand.IntN}
}

// OrderNumber returns ORD-<unix_ms>-<0..999>.
func (g *NumberGenerator) OrderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", g.now().UnixMilli(), g.intN(1000))
}

// TrackingNumber returns SLI- followed by six symbols from TrackingAlphabet.
func (g *NumberGenerator) TrackingNumber() string {
	var b strings.Builder
	b.Grow(4 + trackingLength)
	b.WriteString("SLI-")
	for i := 0; i < trackingLength; i++ {
		b.WriteByte(TrackingAlphabet[g.intN(len(TrackingAlphabet))])
	}
	return b.String()
}
