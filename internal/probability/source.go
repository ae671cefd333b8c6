package probability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Source is the external model boundary. A failing or timed-out call means
// "no probability available": the caller skips value detection for that
// input on the current tick and moves on.
type Source interface {
	// Probability returns the model win probability for a selection, in [0,1].
	Probability(ctx context.Context, marketID, selection string) (float64, error)
	// Projection returns the model's projected value for a player stat.
	Projection(ctx context.Context, playerID, statType string) (float64, error)
}

// Client talks to the model service over HTTP. Timeouts are bounded by the
// injected http.Client; retry/backoff belongs to the service, not here.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		HTTP:    httpClient,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

type probabilityResponse struct {
	Probability float64 `json:"probability"`
}

type projectionResponse struct {
	Projection float64 `json:"projection"`
}

func (c *Client) Probability(ctx context.Context, marketID, selection string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v1/probability?market_id=%s&selection=%s",
		c.BaseURL, url.QueryEscape(marketID), url.QueryEscape(selection))
	var resp probabilityResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return 0, err
	}
	if resp.Probability < 0 || resp.Probability > 1 {
		return 0, fmt.Errorf("probability out of range: %f", resp.Probability)
	}
	return resp.Probability, nil
}

func (c *Client) Projection(ctx context.Context, playerID, statType string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v1/projection?player_id=%s&stat_type=%s",
		c.BaseURL, url.QueryEscape(playerID), url.QueryEscape(statType))
	var resp projectionResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return 0, err
	}
	return resp.Projection, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("model service returned %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
