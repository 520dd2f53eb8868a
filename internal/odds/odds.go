package odds

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rickgao/cryptopicks/internal/model"
)

// Errors
var (
	ErrNoSolution         = errors.New("implied volatility not bracketed")
	ErrInvalidProbability = errors.New("probability must be in (0, 1)")
)

// Implied volatility search bracket and limits.
const (
	minVol   = 1e-6
	maxVol   = 5.0
	maxIter  = 200
	volTol   = 1e-10
	minYears = 1e-8
)

// Year is the length of a year used for time-to-expiry fractions.
const Year = 365 * 24 * time.Hour

// OptionType selects the call or put side of a pricing formula.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Inputs are the market parameters for a single European option.
type Inputs struct {
	Spot   float64    // Underlying price
	Strike float64    // Strike, or the pick line
	Years  float64    // Time to expiry in years
	Rate   float64    // Risk-free rate, continuously compounded
	Yield  float64    // Dividend or funding yield
	Type   OptionType // Call or Put
}

// YearFrac returns the time between now and expiry in years, floored at a
// tiny positive value so expired inputs stay computable.
func YearFrac(now, expiry time.Time) float64 {
	return math.Max(float64(expiry.Sub(now))/float64(Year), minYears)
}

// Price returns the Black-Scholes price of the option at volatility sigma.
func Price(in Inputs, sigma float64) float64 {
	discQ := math.Exp(-in.Yield * in.Years)
	discR := math.Exp(-in.Rate * in.Years)

	if sigma <= 0 || in.Years <= 0 {
		fwd := in.Spot*discQ - in.Strike*discR
		if in.Type == Put {
			fwd = -fwd
		}
		return math.Max(fwd, 0)
	}

	d1, d2 := d(in, sigma)
	if in.Type == Put {
		return in.Strike*discR*cdf(-d2) - in.Spot*discQ*cdf(-d1)
	}
	return in.Spot*discQ*cdf(d1) - in.Strike*discR*cdf(d2)
}

// ImpliedVol finds the volatility at which Price matches price by bisection
// over [1e-6, 5]. Prices outside that range return ErrNoSolution.
func ImpliedVol(price float64, in Inputs) (float64, error) {
	f := func(sigma float64) float64 { return Price(in, sigma) - price }

	lo, hi := minVol, maxVol
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if (flo > 0) == (fhi > 0) {
		return 0, fmt.Errorf("%w: %s price %v", ErrNoSolution, in.Type, price)
	}

	for i := 0; i < maxIter && hi-lo > volTol; i++ {
		mid := (lo + hi) / 2
		fmid := f(mid)
		if fmid == 0 {
			return mid, nil
		}
		if (fmid > 0) == (flo > 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}

// ProbFinishITM is the risk-neutral probability the option expires in the money.
func ProbFinishITM(in Inputs, sigma float64) float64 {
	if sigma <= 0 || in.Years <= 0 {
		itm := in.Spot > in.Strike
		if in.Type == Put {
			itm = in.Spot < in.Strike
		}
		if itm {
			return 1
		}
		return 0
	}

	_, d2 := d(in, sigma)
	if in.Type == Put {
		return cdf(-d2)
	}
	return cdf(d2)
}

// ProbTouch is the probability the underlying reaches the strike before
// expiry, from the reflection principle. A strike already crossed returns 1.
func ProbTouch(in Inputs, sigma float64) float64 {
	if (in.Type == Call && in.Strike <= in.Spot) || (in.Type == Put && in.Strike >= in.Spot) {
		return 1
	}
	if sigma <= 0 || in.Years <= 0 {
		return 0
	}

	d1, d2 := d(in, sigma)
	exp := 2 * (in.Rate - in.Yield) / (sigma * sigma)

	var p float64
	if in.Type == Put {
		p = math.Pow(in.Strike/in.Spot, exp)*cdf(-d1) + cdf(-d2)
	} else {
		p = math.Pow(in.Spot/in.Strike, exp)*cdf(d1) + cdf(d2)
	}
	return math.Min(p, 1)
}

// ProbFinishAbove is the probability spot ends above line after years.
func ProbFinishAbove(spot, line, sigma, years float64) float64 {
	return ProbFinishITM(Inputs{Spot: spot, Strike: line, Years: years, Type: Call}, sigma)
}

// ProbFinishBelow is the probability spot ends below line after years.
func ProbFinishBelow(spot, line, sigma, years float64) float64 {
	return ProbFinishITM(Inputs{Spot: spot, Strike: line, Years: years, Type: Put}, sigma)
}

// AmericanLine converts a win probability to an American odds string such as
// "+150" or "-400".
func AmericanLine(prob float64) (string, error) {
	if !(prob > 0 && prob < 1) {
		return "", fmt.Errorf("%w: got %v", ErrInvalidProbability, prob)
	}

	dec := 1 / prob
	if dec >= 2 {
		return "+" + strconv.Itoa(int(math.Round((dec-1)*100))), nil
	}
	return strconv.Itoa(int(math.Round(-100 / (dec - 1)))), nil
}

// Quote holds Over/Under odds for one asset's line.
type Quote struct {
	AssetID   int     `json:"asset_id"`
	Spot      float64 `json:"spot"`
	Line      float64 `json:"line"`
	Sigma     float64 `json:"sigma"`
	Years     float64 `json:"years"`
	Over      float64 `json:"over"`
	Under     float64 `json:"under"`
	Touch     float64 `json:"touch"`
	OverLine  string  `json:"over_line,omitempty"`
	UnderLine string  `json:"under_line,omitempty"`
}

// ForAsset quotes an asset's line over horizon, treating iv as annualised
// volatility in percent. Lines are left empty when a side is certain.
func ForAsset(a model.Asset, horizon time.Duration) Quote {
	return ForLine(a, a.Line, horizon)
}

// ForLine is ForAsset against an arbitrary line, such as a pick's target.
func ForLine(a model.Asset, line float64, horizon time.Duration) Quote {
	sigma := a.IV / 100
	years := math.Max(float64(horizon)/float64(Year), minYears)

	side := Call
	if line < a.BasePrice {
		side = Put
	}

	q := Quote{
		AssetID: a.ID,
		Spot:    a.BasePrice,
		Line:    line,
		Sigma:   sigma,
		Years:   years,
		Over:    ProbFinishAbove(a.BasePrice, line, sigma, years),
		Under:   ProbFinishBelow(a.BasePrice, line, sigma, years),
		Touch:   ProbTouch(Inputs{Spot: a.BasePrice, Strike: line, Years: years, Type: side}, sigma),
	}
	q.OverLine, _ = AmericanLine(q.Over)
	q.UnderLine, _ = AmericanLine(q.Under)
	return q
}

func d(in Inputs, sigma float64) (d1, d2 float64) {
	sqrtT := math.Sqrt(in.Years)
	d1 = (math.Log(in.Spot/in.Strike) + (in.Rate-in.Yield+0.5*sigma*sigma)*in.Years) / (sigma * sqrtT)
	d2 = d1 - sigma*sqrtT
	return d1, d2
}

// cdf is the standard normal cumulative distribution function.
func cdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
