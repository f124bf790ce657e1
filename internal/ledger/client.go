package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Contract module names published under the configured account.
const (
	treeModuleName     = "tree_nft"
	requestsModuleName = "tree_requests"
	marketModuleName   = "marketplace"
	creditsModuleName  = "cct"
)

// Config contains fullnode connection settings.
type Config struct {
	BaseURL       string        `json:"base_url"`
	ModuleAddress string        `json:"module_address"`
	FetchTimeout  time.Duration `json:"fetch_timeout"`
	// ScanMaxIDs caps the sequential id probe; ScanMissThreshold is how many
	// consecutive missing ids end the scan. The ledger exposes no enumeration
	// primitive, so ids are assumed densely assigned by its monotonic counter.
	ScanMaxIDs        int `json:"scan_max_ids"`
	ScanMissThreshold int `json:"scan_miss_threshold"`
}

// Client handles read interactions with the ledger fullnode REST API.
type Client struct {
	config     Config
	httpClient *http.Client
	normalizer *Normalizer

	mu               sync.Mutex
	modulesChecked   bool
	modulesAvailable bool
	lastModuleErr    error
}

// NewClient creates a fullnode client. The fetch timeout bounds every upstream
// call so a slow ledger can never stall readers indefinitely.
func NewClient(config Config, normalizer *Normalizer) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("ledger base URL is required")
	}
	if config.ModuleAddress == "" {
		return nil, fmt.Errorf("ledger module address is required")
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 10 * time.Second
	}
	if config.ScanMaxIDs <= 0 {
		config.ScanMaxIDs = 200
	}
	if config.ScanMissThreshold <= 0 {
		config.ScanMissThreshold = 1
	}
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.FetchTimeout},
		normalizer: normalizer,
	}, nil
}

// fq returns the fully-qualified name of a published contract function or type.
func (c *Client) fq(module, name string) string {
	return fmt.Sprintf("%s::%s::%s", c.config.ModuleAddress, module, name)
}

// View invokes a read-only contract view function and returns its results.
func (c *Client) View(ctx context.Context, function string, args []interface{}) ([]interface{}, error) {
	if args == nil {
		args = []interface{}{}
	}
	body, err := json.Marshal(map[string]interface{}{
		"function":       function,
		"type_arguments": []string{},
		"arguments":      args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal view payload: %w", err)
	}

	endpoint := c.config.BaseURL + "/v1/view"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build view request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result []interface{}
	if err := c.do(req, "view "+function, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AccountResource reads a raw account resource and returns its data object.
func (c *Client) AccountResource(ctx context.Context, resourceType string) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/resource/%s",
		c.config.BaseURL, c.config.ModuleAddress, url.PathEscape(resourceType))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource request: %w", err)
	}

	var result struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := c.do(req, "resource "+resourceType, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// do executes a bounded request and decodes a 2xx JSON body into out.
// 404 maps to ErrResourceNotFound; other failures are UpstreamErrors.
func (c *Client) do(req *http.Request, op string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrResourceNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &UpstreamError{Op: op, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// unwrapOption unpacks a Move Option<T> view result. The fullnode serializes
// Option as {"vec": [value]} with an empty vec for None.
func unwrapOption(v interface{}) (map[string]interface{}, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	vec, ok := obj["vec"].([]interface{})
	if !ok {
		// Already a bare record (some fullnode versions flatten Option).
		return obj, true
	}
	if len(vec) == 0 {
		return nil, false
	}
	inner, ok := vec[0].(map[string]interface{})
	return inner, ok
}

// FetchTrees enumerates verified trees by probing ids sequentially. The scan
// stops after ScanMissThreshold consecutive missing ids or at ScanMaxIDs.
// If the id counter ever becomes non-contiguous the scan under-reports; that
// is a known limitation of the contract's lack of an enumerable view.
func (c *Client) FetchTrees(ctx context.Context) ([]TreeRecord, error) {
	trees := make([]TreeRecord, 0)
	misses := 0
	for id := 0; id < c.config.ScanMaxIDs; id++ {
		if err := ctx.Err(); err != nil {
			return nil, &UpstreamError{Op: "scan trees", Err: err}
		}
		result, err := c.View(ctx, c.fq(treeModuleName, "get_tree"), []interface{}{strconv.Itoa(id)})
		if err != nil {
			return nil, err
		}
		raw, ok := firstRecord(result)
		if !ok {
			misses++
			if misses >= c.config.ScanMissThreshold {
				break
			}
			continue
		}
		misses = 0
		trees = append(trees, c.normalizer.Tree(raw))
	}
	return trees, nil
}

// FetchRequests reads the Requests account resource and normalizes its
// entries. When the resource read fails transiently it falls back to the
// sequential view scan so a flaky fullnode degrades instead of failing.
func (c *Client) FetchRequests(ctx context.Context) ([]RequestRecord, error) {
	data, err := c.AccountResource(ctx, c.fq(requestsModuleName, "Requests"))
	switch {
	case err == nil:
		entries := collectionEntries(data, "entries")
		requests := make([]RequestRecord, 0, len(entries))
		for _, e := range entries {
			raw, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			requests = append(requests, c.normalizer.Request(raw))
		}
		return requests, nil
	case err == ErrResourceNotFound:
		return []RequestRecord{}, nil
	default:
		log.Printf("[ledger] requests resource read failed, falling back to scan: %v", err)
		return c.scanRequests(ctx)
	}
}

func (c *Client) scanRequests(ctx context.Context) ([]RequestRecord, error) {
	requests := make([]RequestRecord, 0)
	misses := 0
	for id := 0; id < c.config.ScanMaxIDs; id++ {
		if err := ctx.Err(); err != nil {
			return nil, &UpstreamError{Op: "scan requests", Err: err}
		}
		result, err := c.View(ctx, c.fq(requestsModuleName, "get_request"), []interface{}{strconv.Itoa(id)})
		if err != nil {
			return nil, err
		}
		raw, ok := firstRecord(result)
		if !ok {
			misses++
			if misses >= c.config.ScanMissThreshold {
				break
			}
			continue
		}
		misses = 0
		requests = append(requests, c.normalizer.Request(raw))
	}
	return requests, nil
}

// FetchListings reads the marketplace Registry resource.
func (c *Client) FetchListings(ctx context.Context) ([]Listing, error) {
	data, err := c.AccountResource(ctx, c.fq(marketModuleName, "Registry"))
	if err == ErrResourceNotFound {
		return []Listing{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := collectionEntries(data, "list")
	listings := make([]Listing, 0, len(entries))
	for _, e := range entries {
		raw, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		listings = append(listings, c.normalizer.Listing(raw))
	}
	return listings, nil
}

// PendingCredits returns the unclaimed credit balance for an owner address.
// Failures map to 0 so dashboards render a zero balance instead of an error.
func (c *Client) PendingCredits(ctx context.Context, address string) int64 {
	result, err := c.View(ctx, c.fq(creditsModuleName, "pending"), []interface{}{address})
	if err != nil || len(result) == 0 {
		if err != nil {
			log.Printf("[ledger] pending credits lookup failed for %s: %v", address, err)
		}
		return 0
	}
	return toInt64(result[0])
}

// firstRecord extracts the first Option-wrapped record from a view result.
func firstRecord(result []interface{}) (map[string]interface{}, bool) {
	if len(result) == 0 || result[0] == nil {
		return nil, false
	}
	return unwrapOption(result[0])
}

// collectionEntries pulls a nested collection out of resource data, tolerating
// the inner/entries wrapper shapes the contract layer produces.
func collectionEntries(data map[string]interface{}, key string) []interface{} {
	v, ok := data[key]
	if !ok {
		if inner, ok := data["inner"].(map[string]interface{}); ok {
			v = inner[key]
		}
	}
	entries, _ := v.([]interface{})
	return entries
}

// CheckModules probes once whether the contract modules are published at the
// configured address, caching the answer so a missing deployment does not turn
// every page load into three upstream calls.
func (c *Client) CheckModules(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modulesChecked {
		return c.modulesAvailable
	}
	c.modulesChecked = true
	c.modulesAvailable = true
	for _, name := range []string{treeModuleName, requestsModuleName, marketModuleName} {
		if err := c.moduleExists(ctx, name); err != nil {
			c.modulesAvailable = false
			c.lastModuleErr = err
			log.Printf("[ledger] module %s not available at %s: %v", name, c.config.ModuleAddress, err)
			break
		}
	}
	return c.modulesAvailable
}

// ResetModuleCheck forces the next CheckModules call to probe again, for use
// after a fresh contract deployment.
func (c *Client) ResetModuleCheck() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modulesChecked = false
	c.lastModuleErr = nil
}

// ModuleStatus reports the cached result of the availability probe.
func (c *Client) ModuleStatus() (checked, available bool, lastErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modulesChecked, c.modulesAvailable, c.lastModuleErr
}

func (c *Client) moduleExists(ctx context.Context, name string) error {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/module/%s", c.config.BaseURL, c.config.ModuleAddress, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build module request: %w", err)
	}
	var ignored json.RawMessage
	return c.do(req, "module "+name, &ignored)
}
