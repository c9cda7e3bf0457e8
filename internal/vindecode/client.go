// Package vindecode enriches records through the public NHTSA vPIC
// DecodeVin endpoint. Decoding is strictly best-effort: any transport or
// payload problem yields an empty result, never an error, so a flaky
// government API cannot sink a scrape run.
package vindecode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://vpic.nhtsa.dot.gov/api/vehicles"

var vinRE = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// Result holds the decoded fields we care about. Zero values mean the API
// had no answer for that variable.
type Result struct {
	Make      string
	Model     string
	ModelYear string
	Trim      string
	BodyClass string
}

func (r Result) Empty() bool {
	return r == Result{}
}

// Client is a rate-limited NHTSA vPIC client. The zero value is not usable;
// construct with New.
type Client struct {
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	endpoint string
}

func New() *Client {
	return NewWithEndpoint(defaultEndpoint)
}

// NewWithEndpoint is split out so tests can point the client at a local
// httptest server.
func NewWithEndpoint(endpoint string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 3 * time.Second
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil

	return &Client{
		http:     rc,
		limiter:  rate.NewLimiter(rate.Limit(5), 5),
		endpoint: endpoint,
	}
}

// vpicResponse mirrors the slice of variable/value pairs vPIC returns.
type vpicResponse struct {
	Results []struct {
		Variable string  `json:"Variable"`
		Value    *string `json:"Value"`
	} `json:"Results"`
}

// Decode looks up vin against vPIC. Invalid VINs and API failures both
// return an empty result.
func (c *Client) Decode(ctx context.Context, vin string) Result {
	if !vinRE.MatchString(vin) {
		return Result{}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}
	}

	url := fmt.Sprintf("%s/DecodeVin/%s?format=json", c.endpoint, vin)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("⚠️ VIN decode failed for %s: %v", vin, err)
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ VIN decode for %s returned status %d", vin, resp.StatusCode)
		return Result{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}
	}

	var payload vpicResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("⚠️ VIN decode for %s returned unparseable body: %v", vin, err)
		return Result{}
	}

	var out Result
	for _, row := range payload.Results {
		if row.Value == nil || *row.Value == "" {
			continue
		}
		switch row.Variable {
		case "Make":
			out.Make = *row.Value
		case "Model":
			out.Model = *row.Value
		case "Model Year":
			out.ModelYear = *row.Value
		case "Trim":
			out.Trim = *row.Value
		case "Body Class":
			out.BodyClass = *row.Value
		}
	}
	return out
}
