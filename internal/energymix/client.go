package energymix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Mix is the latest generation mix of one grid zone.
type Mix struct {
	Zone                 string    `json:"zone"`
	RenewablePercentage  float64   `json:"renewable_percentage"`
	FossilFreePercentage float64   `json:"fossil_free_percentage"`
	Datetime             time.Time `json:"datetime,omitempty"`
	FetchedAt            time.Time `json:"fetched_at"`
}

// Provider returns the renewable share of a zone.
type Provider interface {
	Latest(ctx context.Context, zone string) (*Mix, error)
}

// ValidPercentage reports whether v is a usable share in [0, 100].
func ValidPercentage(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

// RetryBaseDelay is the first backoff after an HTTP 429. Tests shorten it.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 3

// HTTPClient reads the power breakdown endpoint of an Electricity Maps
// compatible API.
type HTTPClient struct {
	baseURL    string
	token      string
	maxRetries int
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		maxRetries: defaultMaxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type powerBreakdown struct {
	Zone                 string   `json:"zone"`
	Datetime             string   `json:"datetime"`
	RenewablePercentage  *float64 `json:"renewablePercentage"`
	FossilFreePercentage *float64 `json:"fossilFreePercentage"`
}

func (c *HTTPClient) Latest(ctx context.Context, zone string) (*Mix, error) {
	endpoint := c.baseURL + "/v3/power-breakdown/latest?zone=" + url.QueryEscape(zone)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("energymix: %d %s", resp.StatusCode, string(body))
	}

	var pb powerBreakdown
	if err := json.Unmarshal(body, &pb); err != nil {
		return nil, fmt.Errorf("energymix: decode: %w", err)
	}
	if pb.RenewablePercentage == nil {
		return nil, fmt.Errorf("energymix: zone %s has no renewable percentage", zone)
	}
	if !ValidPercentage(*pb.RenewablePercentage) {
		return nil, fmt.Errorf("energymix: zone %s renewable percentage %v out of range", zone, *pb.RenewablePercentage)
	}

	mix := &Mix{
		Zone:                zone,
		RenewablePercentage: *pb.RenewablePercentage,
		FetchedAt:           time.Now().UTC(),
	}
	if pb.Zone != "" {
		mix.Zone = pb.Zone
	}
	if pb.FossilFreePercentage != nil {
		mix.FossilFreePercentage = *pb.FossilFreePercentage
	}
	if t, err := time.Parse(time.RFC3339, pb.Datetime); err == nil {
		mix.Datetime = t
	}
	return mix, nil
}

// doWithRetry retries on HTTP 429 with exponential backoff starting at
// RetryBaseDelay. The last 429 response is returned once retries run out.
func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
