// internal/directory/client.go
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/orgchart-app/orgchart-backend/internal/models"
)

// ErrNotFound is returned when the directory has no record for the email.
// Callers cache it like any other answer.
var ErrNotFound = errors.New("directory: not found")

// Client is the external identity directory: slow, rate-limited network
// calls keyed by email.
type Client interface {
	LookupProfile(ctx context.Context, email string) (*models.Profile, error)
	LookupPhoto(ctx context.Context, email string) (*models.Photo, error)
}

// restClient talks to a directory REST API:
//
//	GET {base}/users/{email}        -> profile JSON
//	GET {base}/users/{email}/photo  -> raw image bytes + Content-Type
type restClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewRESTClient(baseURL, token string, timeout time.Duration) Client {
	return &restClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *restClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("directory returned status %d for %s", resp.StatusCode, path)
	}
}

func (c *restClient) LookupProfile(ctx context.Context, email string) (*models.Profile, error) {
	resp, err := c.get(ctx, "/users/"+url.PathEscape(email))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var profile models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile for %s: %w", email, err)
	}
	return &profile, nil
}

func (c *restClient) LookupPhoto(ctx context.Context, email string) (*models.Photo, error) {
	resp, err := c.get(ctx, "/users/"+url.PathEscape(email)+"/photo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo for %s: %w", email, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return &models.Photo{Data: data, ContentType: contentType}, nil
}
