package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/quickbite-dev/quickbite-backend/pkg/config"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/types"
)

// Profile is the slice of the user record this service cares about:
// identity for receipts and the saved location used as the default
// delivery address.
type Profile struct {
	ID       string                 `json:"id"`
	FullName string                 `json:"fullName"`
	Email    string                 `json:"email,omitempty"`
	Location *types.DeliveryAddress `json:"location,omitempty"`
}

// Client calls the external user service that owns profiles.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient validates the base URL and builds the profile client.
func NewClient(cfg config.UserServiceConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("user service base url required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing user service url: %w", err)
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Current fetches the profile of the caller identified by the bearer token.
func (c *Client) Current(ctx context.Context, bearerToken string) (*Profile, error) {
	if strings.TrimSpace(bearerToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current", nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building profile request")
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling user service")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload struct {
			Data Profile `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding profile response")
		}
		return &payload.Data, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user session rejected")
	case resp.StatusCode == http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user profile not found")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("user service returned status %d", resp.StatusCode))
	}
}
