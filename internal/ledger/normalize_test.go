package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"miko/ledger-portal/ledger-portal-backend/internal/credits"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(credits.NewConverter(1))
}

func TestNormalizeTreeFromStringEncodedFields(t *testing.T) {
	raw := map[string]interface{}{
		"id":                 "3",
		"owner":              "0xabc",
		"rate_ppm":           "2500000",
		"status":             "1",
		"metadata_uri":       "0x68656c6c6f",
		"cumulative_claimed": "0",
	}

	tree := newTestNormalizer().Tree(raw)

	assert.Equal(t, TreeRecord{
		ID:             3,
		Owner:          "0xabc",
		RatePPM:        2_500_000,
		Status:         1,
		MetadataURI:    "hello",
		GrantedCredits: 3,
		GrantedTokens:  3,
	}, tree)
}

func TestNormalizeTreeMissingFieldsDefault(t *testing.T) {
	tree := newTestNormalizer().Tree(map[string]interface{}{})

	assert.Equal(t, int64(0), tree.ID)
	assert.Equal(t, "", tree.Owner)
	assert.Equal(t, "", tree.MetadataURI)
	assert.Equal(t, int64(0), tree.RatePPM)
	assert.Equal(t, int64(0), tree.GrantedCredits)
}

func TestNormalizeTreeIgnoresUpstreamDerivedFields(t *testing.T) {
	raw := map[string]interface{}{
		"rate_ppm":        "1000000",
		"granted_credits": "999",
		"granted_tokens":  "999",
	}

	tree := newTestNormalizer().Tree(raw)

	// Derived amounts come from rate_ppm only, never from the payload.
	assert.Equal(t, int64(1), tree.GrantedCredits)
	assert.Equal(t, int64(1), tree.GrantedTokens)
}

func TestNormalizeTreeUnparseableNumbersDefault(t *testing.T) {
	raw := map[string]interface{}{
		"id":       "not-a-number",
		"rate_ppm": map[string]interface{}{"nested": true},
	}

	tree := newTestNormalizer().Tree(raw)

	assert.Equal(t, int64(0), tree.ID)
	assert.Equal(t, int64(0), tree.RatePPM)
}

func TestNormalizeRequest(t *testing.T) {
	raw := map[string]interface{}{
		"id":           float64(7),
		"requester":    "0xdef",
		"metadata_uri": byteArray("ipfs://meta"),
		"submitted_at": "1700000000",
		"status":       float64(2),
		"rate_ppm":     "500000",
	}

	req := newTestNormalizer().Request(raw)

	assert.Equal(t, RequestRecord{
		ID:             7,
		Requester:      "0xdef",
		MetadataURI:    "ipfs://meta",
		SubmittedAt:    1_700_000_000,
		Status:         RequestStatusApproved,
		RatePPM:        500_000,
		GrantedCredits: 1,
		GrantedTokens:  1,
	}, req)
}

func TestNormalizeRequestPendingHasNoGrant(t *testing.T) {
	req := newTestNormalizer().Request(map[string]interface{}{
		"id":     "4",
		"status": "1",
	})

	assert.Equal(t, RequestStatusPending, req.Status)
	assert.Equal(t, int64(0), req.RatePPM)
	assert.Equal(t, int64(0), req.GrantedCredits)
}

func TestNormalizeListingFieldAliases(t *testing.T) {
	n := newTestNormalizer()

	current := n.Listing(map[string]interface{}{
		"id":         "1",
		"seller":     "0xaaa",
		"remaining":  "3000000",
		"unit_price": "25",
		"created_at": "1700000000",
	})
	legacy := n.Listing(map[string]interface{}{
		"id":              "1",
		"seller":          "0xaaa",
		"remaining_micro": "3000000",
		"price":           "25",
		"listed_at":       "1700000000",
	})

	assert.Equal(t, current, legacy)
	assert.Equal(t, int64(3_000_000), current.RemainingMicro)
	assert.Equal(t, int64(3), current.RemainingTokens)
	assert.Equal(t, int64(25), current.UnitPrice)
}
