package dealerdocs

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

// Serial bounds.
const (
	// SerialDigits is the fixed width of every serial.
	SerialDigits = 6

	// SerialModulus is the first value that no longer fits in SerialDigits.
	SerialModulus = 1_000_000

	// jitterRange bounds the random offset added to timestamp serials (0..99).
	jitterRange = 100

	// DefaultIssueAttempts caps re-issuance in IssueUnique when attempts <= 0.
	DefaultIssueAttempts = 5
)

// Kind discriminates the two document families that carry identifiers.
type Kind string

// Document kinds.
const (
	KindQuote   Kind = "quote"
	KindInvoice Kind = "invoice"
)

// Prefix returns the single-letter tag used in formatted identifiers.
// Returns "" for unknown kinds.
func (k Kind) Prefix() string {
	switch k {
	case KindQuote:
		return "Q"
	case KindInvoice:
		return "I"
	}
	return ""
}

// Validate checks that k is a known kind.
func (k Kind) Validate() error {
	if k.Prefix() == "" {
		return fmt.Errorf("%w: %q (must be quote or invoice)", ErrInvalidKind, string(k))
	}
	return nil
}

// ParseKind accepts "quote", "invoice" or their single-letter tags, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quote", "q":
		return KindQuote, nil
	case "invoice", "i":
		return KindInvoice, nil
	}
	return "", fmt.Errorf("%w: %q (must be quote or invoice)", ErrInvalidKind, s)
}

// kindForPrefix maps a formatted identifier tag back to its kind.
func kindForPrefix(tag byte) Kind {
	switch tag {
	case 'Q':
		return KindQuote
	case 'I':
		return KindInvoice
	}
	return ""
}

// Identifier is an issued document number. It is immutable once issued.
type Identifier struct {
	Kind   Kind
	Serial string // exactly SerialDigits ASCII digits
}

// String returns the formatted identifier ("Q-000123", "I-004567").
func (id Identifier) String() string {
	if id.IsZero() {
		return ""
	}
	return id.Kind.Prefix() + "-" + id.Serial
}

// IsZero reports whether id was never issued.
func (id Identifier) IsZero() bool {
	return id.Kind == "" && id.Serial == ""
}

var (
	serialPattern     = regexp.MustCompile(`^[0-9]{6}$`)
	identifierPattern = regexp.MustCompile(`^[QI]-([0-9]{6})$`)
)

// Format zero-pads n to SerialDigits digits.
// Returns ErrFormat if n is negative or needs more than SerialDigits digits;
// callers expecting overflow must reduce modulo SerialModulus first.
func Format(n int) (string, error) {
	if n < 0 || n >= SerialModulus {
		return "", fmt.Errorf("%w: %d (must be between 0 and %d)", ErrFormat, n, SerialModulus-1)
	}
	return formatSerial(n), nil
}

// formatSerial pads a value already known to be in range.
func formatSerial(n int) string {
	return fmt.Sprintf("%0*d", SerialDigits, n)
}

// IsValidFormat reports whether s is exactly six ASCII digits.
func IsValidFormat(s string) bool {
	return serialPattern.MatchString(s)
}

// Parse extracts the serial from a formatted identifier.
// Malformed input is an expected outcome: it returns ("", false), never an error.
func Parse(formatted string) (string, bool) {
	m := identifierPattern.FindStringSubmatch(formatted)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseIdentifier is Parse that also recovers the kind.
func ParseIdentifier(formatted string) (Identifier, bool) {
	serial, ok := Parse(formatted)
	if !ok {
		return Identifier{}, false
	}
	return Identifier{Kind: kindForPrefix(formatted[0]), Serial: serial}, true
}

// IssueSequential returns Format(currentCount+1) for callers that keep an
// authoritative counter. It is collision-free only if the caller reads and
// increments currentCount under mutual exclusion. Past 999999 it fails with
// ErrFormat; there is no wraparound.
func IssueSequential(currentCount int) (string, error) {
	if currentCount < 0 {
		return "", fmt.Errorf("%w: negative count %d", ErrFormat, currentCount)
	}
	return Format(currentCount + 1)
}

// Reserver records issued identifiers and rejects duplicates.
// Implementations return an error wrapping ErrIdentifierTaken on collision.
type Reserver interface {
	Reserve(ctx context.Context, id Identifier) error
}

// Sequencer issues identifiers from a persistent per-kind counter.
// Implementations own the mutual exclusion around the counter.
type Sequencer interface {
	Next(ctx context.Context, kind Kind) (Identifier, error)
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock replaces the wall clock used for timestamp serials.
func WithClock(now func() time.Time) GeneratorOption {
	if now == nil {
		panic("dealerdocs: WithClock requires a non-nil clock")
	}
	return func(g *Generator) {
		g.now = now
	}
}

// WithRandom replaces the random source. intn(n) must return a value in [0, n).
func WithRandom(intn func(n int) int) GeneratorOption {
	if intn == nil {
		panic("dealerdocs: WithRandom requires a non-nil source")
	}
	return func(g *Generator) {
		g.intn = intn
	}
}

// Generator issues timestamp-based identifiers.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	now  func() time.Time
	intn func(n int) int
}

// NewGenerator creates a Generator backed by the wall clock and math/rand/v2.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		now:  time.Now,
		intn: rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// defaultGenerator backs the package-level issue functions.
var defaultGenerator = NewGenerator()

// serial computes (unixMillis mod 1e6 + rand[0,99]) mod 1e6.
// The random term only thins out same-millisecond collisions.
func (g *Generator) serial() string {
	base := g.now().UnixMilli() % SerialModulus
	n := (base + int64(g.intn(jitterRange))) % SerialModulus
	if n < 0 {
		// Pre-epoch clocks or a misbehaving random source.
		n += SerialModulus
	}
	return formatSerial(int(n))
}

// Issue returns a new timestamp-based identifier of the given kind.
func (g *Generator) Issue(kind Kind) (Identifier, error) {
	if err := kind.Validate(); err != nil {
		return Identifier{}, err
	}
	return Identifier{Kind: kind, Serial: g.serial()}, nil
}

// IssueQuoteNumber returns a "Q-######" identifier.
func (g *Generator) IssueQuoteNumber() string {
	return Identifier{Kind: KindQuote, Serial: g.serial()}.String()
}

// IssueInvoiceNumber returns an "I-######" identifier.
func (g *Generator) IssueInvoiceNumber() string {
	return Identifier{Kind: KindInvoice, Serial: g.serial()}.String()
}

// IssueUnique issues identifiers until r accepts one or attempts run out.
// Only ErrIdentifierTaken triggers a retry; any other reservation error is returned.
func (g *Generator) IssueUnique(ctx context.Context, kind Kind, r Reserver, attempts int) (Identifier, error) {
	if attempts <= 0 {
		attempts = DefaultIssueAttempts
	}

	for range attempts {
		if err := ctx.Err(); err != nil {
			return Identifier{}, err
		}

		id, err := g.Issue(kind)
		if err != nil {
			return Identifier{}, err
		}

		err = r.Reserve(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrIdentifierTaken) {
			return Identifier{}, fmt.Errorf("reserving %s: %w", id, err)
		}
	}

	return Identifier{}, fmt.Errorf("%w: %s after %d attempts", ErrIssueExhausted, kind, attempts)
}

// IssueQuoteNumber returns a "Q-######" identifier from the wall clock.
func IssueQuoteNumber() string {
	return defaultGenerator.IssueQuoteNumber()
}

// IssueInvoiceNumber returns an "I-######" identifier from the wall clock.
func IssueInvoiceNumber() string {
	return defaultGenerator.IssueInvoiceNumber()
}
