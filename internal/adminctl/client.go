// Package adminctl implements the operator-facing command-line surface: a
// thin HTTP client against a running modeld instance, plus the Cobra command
// tree that wires it to subcommands for catalogue validation and pricing
// edits, grounded in the way the teacher structured its Cobra root.
package adminctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"modeld/pkg/types"
)

// Client talks to a running modeld's admin HTTP surface.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client pointed at baseURL (e.g. http://127.0.0.1:8080).
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (c *Client) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("adminctl: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var er types.ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			return fmt.Errorf("adminctl: %s %s: %s (%s)", method, path, er.Message, er.Error)
		}
		return fmt.Errorf("adminctl: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// Pricing fetches a model's current pricing configuration.
func (c *Client) Pricing(model string) (types.PricingConfig, error) {
	var out types.PricingConfig
	err := c.do(http.MethodGet, "/api/billing/models/"+model+"/pricing", nil, &out)
	return out, err
}

// UpsertTier creates or replaces one tier row for model.
func (c *Client) UpsertTier(model string, tier types.Tier) error {
	return c.do(http.MethodPost, "/api/billing/models/"+model+"/pricing/tier",
		types.TierUpsertRequest{Tier: tier}, nil)
}

// DeleteTier removes the tier at idx for model.
func (c *Client) DeleteTier(model string, idx int) error {
	path := "/api/billing/models/" + model + "/pricing/tier/" + strconv.Itoa(idx)
	return c.do(http.MethodDelete, path, nil, nil)
}

// SetHourlyPrice sets model's flat hourly rate.
func (c *Client) SetHourlyPrice(model string, price float64) error {
	return c.do(http.MethodPost, "/api/billing/models/"+model+"/pricing/hourly",
		types.HourlyPriceRequest{Price: price}, nil)
}

// SetBillingMode switches model between tiered and hourly billing.
func (c *Client) SetBillingMode(model, mode string) error {
	return c.do(http.MethodPost, "/api/billing/models/"+model+"/pricing/set/"+mode, nil, nil)
}

// AllModelsInfo fetches the fleet-wide status snapshot.
func (c *Client) AllModelsInfo() (types.AllModelsInfo, error) {
	var out types.AllModelsInfo
	err := c.do(http.MethodGet, "/api/models/all-models/info", nil, &out)
	return out, err
}

// StartModel triggers a lazy start for alias.
func (c *Client) StartModel(alias string) error {
	return c.do(http.MethodPost, "/api/models/"+alias+"/start", nil, nil)
}

// StopModel stops alias.
func (c *Client) StopModel(alias string) error {
	return c.do(http.MethodPost, "/api/models/"+alias+"/stop", nil, nil)
}
