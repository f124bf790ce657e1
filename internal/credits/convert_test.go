package credits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditsFromRatePPM(t *testing.T) {
	conv := NewConverter(1)

	assert.Equal(t, int64(0), conv.CreditsFromRatePPM(0))
	assert.Equal(t, int64(1), conv.CreditsFromRatePPM(1_000_000))
	assert.Equal(t, int64(3), conv.CreditsFromRatePPM(2_500_000))
	assert.Equal(t, int64(2), conv.CreditsFromRatePPM(2_499_999))
	assert.Equal(t, int64(0), conv.CreditsFromRatePPM(499_999))
	assert.Equal(t, int64(1), conv.CreditsFromRatePPM(500_000))
}

func TestCreditsFromRatePPMNonFinite(t *testing.T) {
	conv := NewConverter(1)

	assert.Equal(t, int64(0), conv.CreditsFromRatePPM(math.NaN()))
	assert.Equal(t, int64(0), conv.CreditsFromRatePPM(math.Inf(1)))
	assert.Equal(t, int64(0), conv.CreditsFromRatePPM(math.Inf(-1)))
}

func TestCreditsFromRatePPMNegativeClamped(t *testing.T) {
	conv := NewConverter(1)

	assert.Equal(t, int64(0), conv.CreditsFromRatePPM(-2_500_000))
}

func TestTokensFollowExchangeRatio(t *testing.T) {
	conv := NewConverter(1)
	for _, rate := range []float64{0, 1, 499_999, 500_000, 2_500_000, 10_000_000} {
		assert.Equal(t, conv.CreditsFromRatePPM(rate)*conv.TokensPerCredit, conv.TokensFromRatePPM(rate))
	}

	conv5 := NewConverter(5)
	assert.Equal(t, int64(15), conv5.TokensFromRatePPM(2_500_000))
}

func TestMicroTokenRoundTrip(t *testing.T) {
	conv := NewConverter(1)

	assert.Equal(t, int64(7), conv.MicroToTokens(7_000_000))
	assert.Equal(t, int64(7_000_000), conv.TokensToMicro(7))
	assert.Equal(t, int64(0), conv.TokensToMicro(-1))
	assert.Equal(t, int64(0), conv.MicroToTokens(math.NaN()))
}

func TestNewConverterDefaultsRatio(t *testing.T) {
	assert.Equal(t, int64(DefaultTokensPerCredit), NewConverter(0).TokensPerCredit)
	assert.Equal(t, int64(DefaultTokensPerCredit), NewConverter(-3).TokensPerCredit)
}
