package ledger

// Request status codes as stored by the tree_requests contract.
const (
	RequestStatusPending  = 1
	RequestStatusApproved = 2
	RequestStatusRejected = 3
)

// Tree status codes as stored by the tree_nft contract.
const (
	TreeStatusActive  = 1
	TreeStatusRetired = 2
)

// TreeRecord is the canonical application view of an on-chain verified tree.
// GrantedCredits and GrantedTokens are always derived from RatePPM at
// normalization time; upstream-provided derived values are ignored so they can
// never drift from the authoritative rate.
type TreeRecord struct {
	ID                int64  `json:"id"`
	Owner             string `json:"owner"`
	RatePPM           int64  `json:"rate_ppm"`
	Status            int    `json:"status"`
	MetadataURI       string `json:"metadata_uri"`
	CumulativeClaimed int64  `json:"cumulative_claimed"`
	CreatedAt         int64  `json:"created_at"`
	LastClaim         int64  `json:"last_claim"`
	GrantedCredits    int64  `json:"granted_credits"`
	GrantedTokens     int64  `json:"granted_tokens"`
}

// RequestRecord is the canonical view of a tree verification request.
// RatePPM stays 0 until a validator sets it at approval time, so the granted
// amounts are only meaningful once Status is approved.
type RequestRecord struct {
	ID             int64  `json:"id"`
	Requester      string `json:"requester"`
	MetadataURI    string `json:"metadata_uri"`
	SubmittedAt    int64  `json:"submitted_at"`
	Status         int    `json:"status"`
	RatePPM        int64  `json:"rate_ppm"`
	GrantedCredits int64  `json:"granted_credits"`
	GrantedTokens  int64  `json:"granted_tokens"`
}

// Listing is the canonical view of an open marketplace listing.
type Listing struct {
	ID              int64  `json:"id"`
	Seller          string `json:"seller"`
	RemainingMicro  int64  `json:"remaining_micro"`
	RemainingTokens int64  `json:"remaining_tokens"`
	UnitPrice       int64  `json:"unit_price"`
	CreatedAt       int64  `json:"created_at"`
}
