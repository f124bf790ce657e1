package credits

import "math"

// MicroUnits is the parts-per-million base: one whole credit is 1_000_000
// micro-units of on-chain rate.
const MicroUnits = 1_000_000

// DefaultTokensPerCredit is the current exchange ratio between carbon credits
// and tradable tokens. Kept configurable because the ratio is expected to
// change once the token gets its own market.
const DefaultTokensPerCredit = 1

// Converter maps on-chain ppm rates to whole credit and token amounts.
type Converter struct {
	TokensPerCredit int64
}

// NewConverter creates a converter with the given credit/token exchange ratio.
// A ratio of zero or less falls back to the default 1:1.
func NewConverter(tokensPerCredit int64) *Converter {
	if tokensPerCredit <= 0 {
		tokensPerCredit = DefaultTokensPerCredit
	}
	return &Converter{TokensPerCredit: tokensPerCredit}
}

// CreditsFromRatePPM converts a parts-per-million rate into whole credits.
// Non-finite input means "no rate set" and maps to 0 rather than an error.
func (c *Converter) CreditsFromRatePPM(ratePPM float64) int64 {
	if math.IsNaN(ratePPM) || math.IsInf(ratePPM, 0) {
		return 0
	}
	credits := int64(math.Round(ratePPM / MicroUnits))
	if credits < 0 {
		return 0
	}
	return credits
}

// TokensFromRatePPM converts a parts-per-million rate into tradable tokens.
func (c *Converter) TokensFromRatePPM(ratePPM float64) int64 {
	return c.CreditsFromRatePPM(ratePPM) * c.TokensPerCredit
}

// MicroToTokens converts a raw micro-unit amount into whole tokens.
func (c *Converter) MicroToTokens(micro float64) int64 {
	if math.IsNaN(micro) || math.IsInf(micro, 0) {
		return 0
	}
	tokens := int64(math.Round(micro / MicroUnits))
	if tokens < 0 {
		return 0
	}
	return tokens
}

// TokensToMicro converts a whole-token amount back into micro-units, for
// building marketplace amounts.
func (c *Converter) TokensToMicro(tokens int64) int64 {
	if tokens < 0 {
		return 0
	}
	return tokens * MicroUnits
}
