package source

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

	"github.com/rs/zerolog"

	"crypto-price-pipeline/internal/model"
)

const marketsPath = "/coins/markets"

// CoinGeckoOptions parameterise the live market fetcher.
type CoinGeckoOptions struct {
	BaseURL    string
	VSCurrency string
	PerPage    int
	Page       int
	Timeout    time.Duration
	UserAgent  string
}

// CoinGecko fetches the current market snapshot from the CoinGecko
// /coins/markets endpoint.
type CoinGecko struct {
	opts    CoinGeckoOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
	// now is swapped out in tests to pin the fetched_at stamp.
	now func() time.Time
}

// NewCoinGecko constructs a live fetcher.
func NewCoinGecko(opts CoinGeckoOptions, logger zerolog.Logger) *CoinGecko {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}

	return &CoinGecko{
		opts:    opts,
		logger:  logger.With().Str("component", "coingecko_source").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Name implements Source.
func (c *CoinGecko) Name() string { return "coingecko" }

// Fetch retrieves one page of markets ordered by market cap and stamps
// every record with a fetched_at timestamp.
func (c *CoinGecko) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	vsCurrency := c.opts.VSCurrency
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	perPage := c.opts.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := c.opts.Page
	if page <= 0 {
		page = 1
	}

	query := url.Values{}
	query.Set("vs_currency", vsCurrency)
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("sparkline", "false")
	query.Set("locale", "en")

	endpoint := c.baseURL + marketsPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "cryptopipe/1.0")
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, payload)
	}

	var batch []model.RawRecord
	if err := json.Unmarshal(payload, &batch); err != nil {
		return nil, fmt.Errorf("decode markets payload: %w", err)
	}

	fetchedAt := c.now().UTC().Format(time.RFC3339)
	for i, rec := range batch {
		if rec == nil {
			return nil, fmt.Errorf("decode markets payload: element %d is null", i)
		}
		rec["fetched_at"] = fetchedAt
	}

	c.logger.Info().
		Int("records", len(batch)).
		Dur("elapsed", time.Since(started)).
		Str("vs_currency", vsCurrency).
		Msg("fetched market snapshot")

	return batch, nil
}

type apiErrorResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Error string `json:"error"`
}

func parseAPIError(status int, payload []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Status.ErrorMessage != "" {
			return fmt.Errorf("coingecko api error (%d): %s", status, apiErr.Status.ErrorMessage)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("coingecko api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("coingecko api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("coingecko api error (%d)", status)
}

var _ Source = (*CoinGecko)(nil)
