// Spotify Web API implementation of [API]
//
// Player endpoints per https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// defaultRateLimit paces outgoing API requests, requests per second.
	defaultRateLimit = 10.0
)

// Client implements [API] against the Spotify Web API for one account.
// Every request authenticates with a fresh token from the account's
// [TokenManager] and passes through a shared rate limiter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
	limiter    *rate.Limiter
}

// ClientOpts contains construction options for a Client.
type ClientOpts struct {
	Tokens     *TokenManager
	HTTPClient *http.Client // defaults to http.DefaultClient
	BaseURL    string       // defaults to the Spotify API base URL
	RateLimit  float64      // requests per second, defaults to defaultRateLimit
}

// NewClient creates a Spotify API client bound to one account's token manager.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.Tokens == nil {
		return nil, fmt.Errorf("missing token manager")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}, nil
}

// APIError carries the status and body of a failed Spotify API call.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Body)
}

// doRequest performs an authenticated HTTP request against the Spotify API.
//
// A nil result skips response decoding; 204 responses never decode.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return err
	}

	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: buf.String()}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// deviceQuery builds the optional device_id query Spotify's player endpoints accept.
func deviceQuery(deviceID string) url.Values {
	query := url.Values{}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}
	return query
}

// Devices lists the playback devices currently visible to the account.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var response struct {
		Devices []Device `json:"devices"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Devices, nil
}

// Play starts playback of an item list or a context on the given device.
func (c *Client) Play(ctx context.Context, deviceID string, opts PlayOptions) error {
	return c.doRequest(ctx, http.MethodPut, "/me/player/play", deviceQuery(deviceID), opts, nil)
}

// Pause pauses playback on the given device.
func (c *Client) Pause(ctx context.Context, deviceID string) error {
	return c.doRequest(ctx, http.MethodPut, "/me/player/pause", deviceQuery(deviceID), nil, nil)
}

// Next skips to the next track on the given device.
func (c *Client) Next(ctx context.Context, deviceID string) error {
	return c.doRequest(ctx, http.MethodPost, "/me/player/next", deviceQuery(deviceID), nil, nil)
}

// Previous skips to the previous track on the given device.
func (c *Client) Previous(ctx context.Context, deviceID string) error {
	return c.doRequest(ctx, http.MethodPost, "/me/player/previous", deviceQuery(deviceID), nil, nil)
}

// Seek moves the playhead of the given device to positionMS.
func (c *Client) Seek(ctx context.Context, deviceID string, positionMS int) error {
	query := deviceQuery(deviceID)
	query.Set("position_ms", strconv.Itoa(positionMS))
	return c.doRequest(ctx, http.MethodPut, "/me/player/seek", query, nil, nil)
}

// SetVolume sets the given device's volume percentage.
func (c *Client) SetVolume(ctx context.Context, deviceID string, percent int) error {
	query := deviceQuery(deviceID)
	query.Set("volume_percent", strconv.Itoa(percent))
	return c.doRequest(ctx, http.MethodPut, "/me/player/volume", query, nil, nil)
}

// CurrentPlayback returns the account's playback state. Spotify answers
// 204 when nothing is playing anywhere, which maps to (nil, nil).
func (c *Client) CurrentPlayback(ctx context.Context) (*PlaybackSnapshot, error) {
	var snapshot PlaybackSnapshot
	found := false

	err := c.doRequest(ctx, http.MethodGet, "/me/player", nil, nil, &playbackResult{snapshot: &snapshot, found: &found})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &snapshot, nil
}

// playbackResult lets doRequest distinguish "decoded a snapshot" from a
// 204 empty response without a second status check at the call site.
type playbackResult struct {
	snapshot *PlaybackSnapshot
	found    *bool
}

func (p *playbackResult) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, p.snapshot); err != nil {
		return err
	}
	*p.found = true
	return nil
}
