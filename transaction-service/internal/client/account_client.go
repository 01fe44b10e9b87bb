// Package client holds the transaction service's outbound HTTP clients.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/meridianbank/banking/shared/errs"
	"github.com/meridianbank/banking/shared/models"
)

// AccountClient resolves account data from the account service.
type AccountClient struct {
	baseURL string
	client  *http.Client
}

func NewAccountClient(baseURL string) *AccountClient {
	return &AccountClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
	}
}

type accountListResponse struct {
	Accounts []models.AccountView `json:"accounts"`
}

// GetAccountsByOwner returns all accounts belonging to an owner via the
// account service's internal endpoint.
func (c *AccountClient) GetAccountsByOwner(ctx context.Context, ownerID string) ([]models.AccountView, error) {
	url := c.baseURL + "/internal/accounts/owner/" + ownerID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.DownstreamUnavailable("account-service", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.DownstreamUnavailable("account-service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.DownstreamUnavailable("account-service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload accountListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errs.DownstreamUnavailable("account-service", err)
	}
	return payload.Accounts, nil
}
