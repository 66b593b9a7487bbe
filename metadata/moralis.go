// Package metadata fetches per-token metadata from the Moralis Web3 Data API.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/xerrors"

	"nft-sweeper/logger"
	"nft-sweeper/model"
)

const DefaultBaseURL = "https://deep-index.moralis.io/api/v2.2"

var ErrNotInitialized = xerrors.New("metadata provider used before Initialize")

// FetchError is returned when the upstream call for one token fails.
type FetchError struct {
	TokenID int
	Status  string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("fetch metadata for token %d: %s: %v", e.TokenID, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch metadata for token %d: %v", e.TokenID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Provider returns the metadata for one token, or nil when the indexer has
// none for it.
type Provider interface {
	Initialize(ctx context.Context) error
	FetchMetadata(ctx context.Context, tokenID int) (*model.TokenMetadata, error)
}

type ClientConfig struct {
	BaseURL         string
	APIKey          string
	ChainID         string
	ContractAddress string
	Timeout         time.Duration
}

// Client is a Provider backed by the Moralis REST API.
type Client struct {
	cfg         ClientConfig
	http        *http.Client
	log         logger.Logger
	initialized bool
}

func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// nftResponse is the subset of the getNFTMetadata payload we read. The
// metadata field is itself a JSON document encoded as a string.
type nftResponse struct {
	TokenAddress string  `json:"token_address"`
	TokenID      string  `json:"token_id"`
	Metadata     *string `json:"metadata"`
}

// Initialize checks the credential against the API before any token is
// fetched.
func (c *Client) Initialize(ctx context.Context) error {
	c.log.Info("Init", "Starting blockchain connection...")
	if c.cfg.APIKey == "" {
		return xerrors.New("moralis api key is empty")
	}

	req, err := c.newRequest(ctx, "/web3/version", nil)
	if err != nil {
		return xerrors.Errorf("build version request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return xerrors.Errorf("connect to %s: %w", c.cfg.BaseURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return xerrors.Errorf("connect to %s: unexpected status %s", c.cfg.BaseURL, resp.Status)
	}

	c.initialized = true
	c.log.Success("Init", "Blockchain connected")
	return nil
}

// FetchMetadata returns (nil, nil) when the token is unknown to the indexer
// or carries no metadata. Transport, auth and decode failures are returned
// as *FetchError.
func (c *Client) FetchMetadata(ctx context.Context, tokenID int) (*model.TokenMetadata, error) {
	if !c.initialized {
		return nil, &FetchError{TokenID: tokenID, Err: ErrNotInitialized}
	}

	c.log.Info("NFT", fmt.Sprintf("Fetching metadata for token %d", tokenID))

	q := url.Values{}
	q.Set("chain", c.cfg.ChainID)
	q.Set("format", "decimal")
	q.Set("normalizeMetadata", "true")
	q.Set("media_items", "false")

	path := "/nft/" + url.PathEscape(c.cfg.ContractAddress) + "/" + strconv.Itoa(tokenID)
	req, err := c.newRequest(ctx, path, q)
	if err != nil {
		return nil, c.fail(&FetchError{TokenID: tokenID, Err: err})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(&FetchError{TokenID: tokenID, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		c.log.Warning("NFT", fmt.Sprintf("No metadata found for token %d", tokenID))
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, c.fail(&FetchError{
			TokenID: tokenID,
			Status:  resp.Status,
			Err:     xerrors.Errorf("upstream said %q", strings.TrimSpace(string(body))),
		})
	}

	var raw nftResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, c.fail(&FetchError{TokenID: tokenID, Err: xerrors.Errorf("decode response: %w", err)})
	}

	if raw.Metadata == nil || isBlankDocument(*raw.Metadata) {
		c.log.Warning("NFT", fmt.Sprintf("No metadata found for token %d", tokenID))
		return nil, nil
	}

	var md model.TokenMetadata
	if err := json.Unmarshal([]byte(*raw.Metadata), &md); err != nil {
		return nil, c.fail(&FetchError{TokenID: tokenID, Err: xerrors.Errorf("parse metadata: %w", err)})
	}

	pretty, _ := json.MarshalIndent(md, "", "  ")
	c.log.Detail("NFT", fmt.Sprintf("Token %d metadata: %s", tokenID, pretty))

	return &md, nil
}

// isBlankDocument reports whether an embedded metadata string carries no
// document at all.
func isBlankDocument(doc string) bool {
	doc = strings.TrimSpace(doc)
	return doc == "" || doc == "null"
}

func (c *Client) newRequest(ctx context.Context, path string, q url.Values) (*http.Request, error) {
	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) fail(err *FetchError) error {
	c.log.Error("NFT", fmt.Sprintf("Failed to fetch metadata for token %d: %v", err.TokenID, err.Err))
	return err
}
