// Package spotify wraps the subset of the Spotify Web API used by the
// account link flow: the current-user profile and the top items lists.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
	spotifyauth "golang.org/x/oauth2/spotify"
)

// Scopes requested during the link handshake.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"user-library-read",
	"user-follow-read",
	"playlist-read-private",
	"user-read-recently-played",
}

const defaultBaseURL = "https://api.spotify.com/v1"

// NewOAuthConfig builds the OAuth config for the authorization-code handshake.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     spotifyauth.Endpoint,
		Scopes:       Scopes,
	}
}

// UserProfile is the provider's current-user summary.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Followers   struct {
		Total int `json:"total"`
	} `json:"followers"`
	Images []Image `json:"images"`
}

// Image is a provider-hosted image reference.
type Image struct {
	URL string `json:"url"`
}

// Artist is a top-artists list entry.
type Artist struct {
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// Track is a top-tracks list entry.
type Track struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
	Popularity int `json:"popularity"`
}

// Client calls the Spotify Web API with a delegated access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Web API client. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL creates a client against a custom API root (used in tests).
func NewClientWithBaseURL(httpClient *http.Client, baseURL string) *Client {
	c := NewClient(httpClient)
	c.baseURL = baseURL
	return c
}

// Me fetches the current user's profile summary.
func (c *Client) Me(ctx context.Context, token *oauth2.Token) (UserProfile, error) {
	var profile UserProfile
	if err := c.get(ctx, token, "/me", &profile); err != nil {
		return UserProfile{}, fmt.Errorf("failed to fetch spotify profile: %w", err)
	}
	return profile, nil
}

// TopArtists fetches the user's medium-term top artists.
func (c *Client) TopArtists(ctx context.Context, token *oauth2.Token, limit int) ([]Artist, error) {
	var page struct {
		Items []Artist `json:"items"`
	}
	if err := c.get(ctx, token, "/me/top/artists?"+topItemsQuery(limit), &page); err != nil {
		return nil, fmt.Errorf("failed to fetch top artists: %w", err)
	}
	return page.Items, nil
}

// TopTracks fetches the user's medium-term top tracks.
func (c *Client) TopTracks(ctx context.Context, token *oauth2.Token, limit int) ([]Track, error) {
	var page struct {
		Items []Track `json:"items"`
	}
	if err := c.get(ctx, token, "/me/top/tracks?"+topItemsQuery(limit), &page); err != nil {
		return nil, fmt.Errorf("failed to fetch top tracks: %w", err)
	}
	return page.Items, nil
}

func topItemsQuery(limit int) string {
	params := url.Values{}
	params.Set("time_range", "medium_term")
	params.Set("limit", strconv.Itoa(limit))
	return params.Encode()
}

func (c *Client) get(ctx context.Context, token *oauth2.Token, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
