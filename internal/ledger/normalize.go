package ledger

import (
	"log"
	"strconv"

	"miko/ledger-portal/ledger-portal-backend/internal/credits"
)

// Normalizer converts raw ledger records into canonical application records.
// Raw payloads are contract-defined and untrusted: u64s may arrive as JSON
// strings or numbers, fields may be missing entirely, and byte fields carry
// whatever encoding the contract layer produced. Every numeric field defaults
// to 0 and every string field to "" so one malformed record can never abort a
// whole collection.
type Normalizer struct {
	conv *credits.Converter
}

// NewNormalizer creates a normalizer using the given rate converter.
func NewNormalizer(conv *credits.Converter) *Normalizer {
	if conv == nil {
		conv = credits.NewConverter(credits.DefaultTokensPerCredit)
	}
	return &Normalizer{conv: conv}
}

// Tree normalizes a raw tree_nft record.
func (n *Normalizer) Tree(raw map[string]interface{}) TreeRecord {
	rate := toInt64(raw["rate_ppm"])
	claimed := toInt64(raw["cumulative_claimed"])
	if claimed > rate {
		// Claims exceeding the total grant mean ledger/application drift.
		// Surface it, don't correct it: the ledger is the source of truth.
		log.Printf("[ledger] tree %d cumulative_claimed %d exceeds granted %d",
			toInt64(raw["id"]), claimed, rate)
	}
	return TreeRecord{
		ID:                toInt64(raw["id"]),
		Owner:             toString(raw["owner"]),
		RatePPM:           rate,
		Status:            int(toInt64(raw["status"])),
		MetadataURI:       DecodeBytes(raw["metadata_uri"]),
		CumulativeClaimed: claimed,
		CreatedAt:         toInt64(raw["created_at"]),
		LastClaim:         toInt64(raw["last_claim"]),
		GrantedCredits:    n.conv.CreditsFromRatePPM(float64(rate)),
		GrantedTokens:     n.conv.TokensFromRatePPM(float64(rate)),
	}
}

// Request normalizes a raw tree_requests record.
func (n *Normalizer) Request(raw map[string]interface{}) RequestRecord {
	rate := toInt64(raw["rate_ppm"])
	return RequestRecord{
		ID:             toInt64(raw["id"]),
		Requester:      toString(raw["requester"]),
		MetadataURI:    DecodeBytes(raw["metadata_uri"]),
		SubmittedAt:    toInt64(raw["submitted_at"]),
		Status:         int(toInt64(raw["status"])),
		RatePPM:        rate,
		GrantedCredits: n.conv.CreditsFromRatePPM(float64(rate)),
		GrantedTokens:  n.conv.TokensFromRatePPM(float64(rate)),
	}
}

// Listing normalizes a raw marketplace registry entry. Older contract builds
// used different field names for the remaining amount, price and timestamp, so
// each has an alias fallback.
func (n *Normalizer) Listing(raw map[string]interface{}) Listing {
	remaining := toInt64(firstPresent(raw, "remaining", "remaining_micro"))
	return Listing{
		ID:              toInt64(raw["id"]),
		Seller:          toString(raw["seller"]),
		RemainingMicro:  remaining,
		RemainingTokens: n.conv.MicroToTokens(float64(remaining)),
		UnitPrice:       toInt64(firstPresent(raw, "unit_price", "price")),
		CreatedAt:       toInt64(firstPresent(raw, "created_at", "listed_at")),
	}
}

func firstPresent(raw map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func toString(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
