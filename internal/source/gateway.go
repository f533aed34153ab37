package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tourdesk/pkg/models"
)

// GatewayClient speaks to the scripting gateway that fronts the agency's
// spreadsheets. The gateway contract per table is plain JSON:
//
//	GET {base}/tables/{service} -> {"service": "...", "headers": [...], "rows": [[...]]}
type GatewayClient struct {
	BaseURL  string
	HTTP     *http.Client
	services []models.Service
}

func NewGatewayClient(baseURL string) *GatewayClient {
	return &GatewayClient{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: 15 * time.Second},
		services: models.AllServices(),
	}
}

func (c *GatewayClient) Services() []models.Service {
	return c.services
}

func (c *GatewayClient) Load(ctx context.Context, svc models.Service) (*models.Table, error) {
	url := fmt.Sprintf("%s/tables/%s", c.BaseURL, svc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway request %s: %w", svc, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway fetch %s: %w", svc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway fetch %s: status %d", svc, resp.StatusCode)
	}

	var t models.Table
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("gateway decode %s: %w", svc, err)
	}
	t.Service = svc
	return &t, nil
}

// Ping checks gateway reachability for the readiness probe.
func (c *GatewayClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("gateway ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway ping: status %d", resp.StatusCode)
	}
	return nil
}
