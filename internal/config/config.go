package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Ledger  LedgerConfig  `json:"ledger"`
	Credits CreditsConfig `json:"credits"`
	OTP     OTPConfig     `json:"otp"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// LedgerConfig represents fullnode connection and cache configuration.
// TTLs are short on purpose: the UI needs near-real-time visibility into
// on-chain rate changes.
type LedgerConfig struct {
	BaseURL           string        `json:"base_url"`
	ModuleAddress     string        `json:"module_address"`
	FetchTimeout      time.Duration `json:"fetch_timeout"`
	TreeCacheTTL      time.Duration `json:"tree_cache_ttl"`
	RequestCacheTTL   time.Duration `json:"request_cache_ttl"`
	ListingCacheTTL   time.Duration `json:"listing_cache_ttl"`
	ScanMaxIDs        int           `json:"scan_max_ids"`
	ScanMissThreshold int           `json:"scan_miss_threshold"`
}

// CreditsConfig represents credit/token conversion configuration
type CreditsConfig struct {
	TokensPerCredit int64 `json:"tokens_per_credit"`
}

// OTPConfig represents the one-time-code store configuration. MongoURI empty
// means the in-memory store is used.
type OTPConfig struct {
	TTL      time.Duration `json:"ttl"`
	MongoURI string        `json:"mongo_uri"`
	MongoDB  string        `json:"mongo_db"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Ledger: LedgerConfig{
			BaseURL:           "https://fullnode.devnet.aptoslabs.com",
			FetchTimeout:      10 * time.Second,
			TreeCacheTTL:      5 * time.Second,
			RequestCacheTTL:   5 * time.Second,
			ListingCacheTTL:   5 * time.Second,
			ScanMaxIDs:        200,
			ScanMissThreshold: 1,
		},
		Credits: CreditsConfig{
			TokensPerCredit: 1,
		},
		OTP: OTPConfig{
			TTL:     5 * time.Minute,
			MongoDB: "miko",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

// Validate checks the required settings. Failures here are fatal at startup;
// they are not recoverable at request time.
func (c *Config) Validate() error {
	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("ledger base URL is required (set LEDGER_BASE_URL)")
	}
	if c.Ledger.ModuleAddress == "" {
		return fmt.Errorf("ledger module address is required (set MODULE_ADDRESS)")
	}
	return nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if baseURL := os.Getenv("LEDGER_BASE_URL"); baseURL != "" {
		config.Ledger.BaseURL = baseURL
	}
	if addr := os.Getenv("MODULE_ADDRESS"); addr != "" {
		config.Ledger.ModuleAddress = addr
	}
	if ttl := os.Getenv("CACHE_TTL_SECONDS"); ttl != "" {
		if seconds, err := strconv.Atoi(ttl); err == nil && seconds > 0 {
			d := time.Duration(seconds) * time.Second
			config.Ledger.TreeCacheTTL = d
			config.Ledger.RequestCacheTTL = d
			config.Ledger.ListingCacheTTL = d
		}
	}
	if timeout := os.Getenv("LEDGER_FETCH_TIMEOUT_SECONDS"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			config.Ledger.FetchTimeout = time.Duration(seconds) * time.Second
		}
	}
	if maxIDs := os.Getenv("SCAN_MAX_IDS"); maxIDs != "" {
		if n, err := strconv.Atoi(maxIDs); err == nil && n > 0 {
			config.Ledger.ScanMaxIDs = n
		}
	}
	if threshold := os.Getenv("SCAN_MISS_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil && n > 0 {
			config.Ledger.ScanMissThreshold = n
		}
	}
	if ratio := os.Getenv("TOKENS_PER_CREDIT"); ratio != "" {
		if n, err := strconv.ParseInt(ratio, 10, 64); err == nil && n > 0 {
			config.Credits.TokensPerCredit = n
		}
	}
	if uri := os.Getenv("OTP_MONGO_URI"); uri != "" {
		config.OTP.MongoURI = uri
	}
	if db := os.Getenv("OTP_MONGO_DB"); db != "" {
		config.OTP.MongoDB = db
	}
	if ttl := os.Getenv("OTP_TTL_SECONDS"); ttl != "" {
		if seconds, err := strconv.Atoi(ttl); err == nil && seconds > 0 {
			config.OTP.TTL = time.Duration(seconds) * time.Second
		}
	}
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
