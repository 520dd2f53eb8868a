package selection

import (
	"strconv"
	"strings"

	"github.com/rickgao/cryptopicks/internal/model"
)

// Side is the direction half of a predicate.
type Side string

const (
	Over  Side = "Over"
	Under Side = "Under"
)

// Predicate is a parsed pick predicate such as "Over 4x".
type Predicate struct {
	Side       Side    // Empty when the side is not recognised
	Multiplier float64 // 1 unless the predicate is in the closed vocabulary
	Valid      bool    // True only for the closed vocabulary
}

var multipliers = map[string]float64{
	"2x":  2,
	"4x":  4,
	"10x": 10,
}

// targetMoves is the fractional price move each multiplier needs.
var targetMoves = map[float64]float64{
	2:  0.02,
	4:  0.05,
	10: 0.06,
}

// Predicates returns the closed predicate vocabulary.
func Predicates() []string {
	return []string{
		"Over 2x", "Over 4x", "Over 10x",
		"Under 2x", "Under 4x", "Under 10x",
	}
}

// ParsePredicate parses s leniently. Anything outside the closed vocabulary,
// including a bare "Over" or "Under", yields multiplier 1 and Valid false.
func ParsePredicate(s string) Predicate {
	p := Predicate{Multiplier: 1}

	fields := strings.Fields(s)
	if len(fields) == 0 {
		return p
	}

	switch {
	case strings.EqualFold(fields[0], string(Over)):
		p.Side = Over
	case strings.EqualFold(fields[0], string(Under)):
		p.Side = Under
	default:
		return p
	}

	if len(fields) != 2 {
		return p
	}
	if m, ok := multipliers[strings.ToLower(fields[1])]; ok {
		p.Multiplier = m
		p.Valid = true
	}
	return p
}

// Multiplier returns the payout multiplier for a predicate string.
func Multiplier(s string) float64 {
	return ParsePredicate(s).Multiplier
}

// String returns the canonical spelling, e.g. "Over 4x". Invalid predicates
// have no canonical form and return "".
func (p Predicate) String() string {
	if !p.Valid {
		return ""
	}
	return string(p.Side) + " " + strconv.FormatFloat(p.Multiplier, 'f', -1, 64) + "x"
}

// Canonical normalises a predicate string. Strings outside the vocabulary are
// returned trimmed but otherwise untouched.
func Canonical(s string) string {
	if c := ParsePredicate(s).String(); c != "" {
		return c
	}
	return strings.TrimSpace(s)
}

// Target returns the price a predicate needs the asset to reach from its
// current price: up by the multiplier's move for Over, down for Under.
func Target(a model.Asset, predicate string) (float64, bool) {
	p := ParsePredicate(predicate)
	if !p.Valid {
		return 0, false
	}
	move := targetMoves[p.Multiplier]
	if p.Side == Under {
		move = -move
	}
	return a.BasePrice * (1 + move), true
}
