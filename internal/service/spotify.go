package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
	"github.com/fync-app/fync-server/internal/spotify"
)

const (
	topItemsLimit      = 20
	maxFavoriteArtists = 10
	providerName       = "spotify"
)

// spotifyAPI is the Web API surface the linker needs; the concrete
// implementation is spotify.Client.
type spotifyAPI interface {
	Me(ctx context.Context, token *oauth2.Token) (spotify.UserProfile, error)
	TopArtists(ctx context.Context, token *oauth2.Token, limit int) ([]spotify.Artist, error)
	TopTracks(ctx context.Context, token *oauth2.Token, limit int) ([]spotify.Track, error)
}

// linkSnapshot is the raw provider data persisted on the profile.
type linkSnapshot struct {
	Profile    spotify.UserProfile `json:"profile"`
	TopArtists []spotify.Artist    `json:"top_artists"`
	TopTracks  []spotify.Track     `json:"top_tracks"`
}

// SpotifyLinker runs the authorization-code handshake with Spotify and
// folds the resulting taste data into the caller's profile.
type SpotifyLinker struct {
	oauth        *oauth2.Config
	api          spotifyAPI
	linkStore    model.LinkStateStore
	profileStore model.ProfileStore
	logger       *logger.Logger
}

func NewSpotifyLinker(
	oauth *oauth2.Config,
	api spotifyAPI,
	linkStore model.LinkStateStore,
	profileStore model.ProfileStore,
	logger *logger.Logger,
) *SpotifyLinker {
	return &SpotifyLinker{
		oauth:        oauth,
		api:          api,
		linkStore:    linkStore,
		profileStore: profileStore,
		logger:       logger,
	}
}

// BeginLink starts a handshake attempt: it persists a fresh anti-forgery
// state token and returns the provider authorization URL to redirect to.
// Each attempt gets its own state; states are never reused.
func (s *SpotifyLinker) BeginLink(ctx context.Context, userID uuid.UUID) (string, error) {
	s.logger.Debug("Spotify linker: starting handshake",
		"user_id", userID)

	state, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	pending := model.PendingLink{
		State:     state,
		UserID:    userID,
		Scopes:    strings.Join(s.oauth.Scopes, " "),
		ExpiresAt: time.Now().Add(model.LinkStateDuration),
	}

	if err := s.linkStore.Create(ctx, pending); err != nil {
		return "", fmt.Errorf("failed to create pending link: %w", err)
	}

	url := s.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))

	s.logger.Info("Spotify linker: handshake started",
		"user_id", userID)

	return url, nil
}

// HandleCallback completes a handshake attempt. The state is consumed
// exactly once before the code exchange, so replaying a previously consumed
// (code, state) pair can never trigger a second exchange.
func (s *SpotifyLinker) HandleCallback(ctx context.Context, userID uuid.UUID, code, state, providerErr string) (model.Profile, error) {
	s.logger.Debug("Spotify linker: processing callback",
		"user_id", userID)

	if providerErr != "" {
		// Consume the attempt anyway so the same URL cannot be retried.
		if state != "" {
			if err := s.linkStore.Consume(ctx, state); err != nil {
				s.logger.Debug("Spotify linker: failed to consume errored state",
					"error", err.Error())
			}
		}
		return model.Profile{}, &model.ProviderError{Provider: providerName, Reason: providerErr}
	}

	pending, err := s.linkStore.GetByState(ctx, state)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, model.ErrStateMismatch
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to get pending link: %w", err)
	}

	if pending.UserID != userID || time.Now().After(pending.ExpiresAt) {
		return model.Profile{}, model.ErrStateMismatch
	}

	// The store consumes atomically: a concurrent or replayed callback
	// loses here, before any code exchange happens.
	if err := s.linkStore.Consume(ctx, state); err != nil {
		if errors.Is(err, model.ErrStateMismatch) {
			return model.Profile{}, model.ErrStateMismatch
		}
		return model.Profile{}, fmt.Errorf("failed to consume link state: %w", err)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("Spotify linker: code exchange failed",
			"user_id", userID,
			"error", err.Error())
		return model.Profile{}, &model.ProviderError{Provider: providerName, Reason: "code exchange failed"}
	}

	snapshot, err := s.fetchSnapshot(ctx, userID, token)
	if err != nil {
		return model.Profile{}, err
	}

	rawSnapshot, err := json.Marshal(snapshot)
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	link := model.SpotifyLink{
		Connected:    true,
		UserID:       snapshot.Profile.ID,
		Snapshot:     rawSnapshot,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	profile, err := s.profileStore.SetSpotifyLink(ctx, userID, link,
		ExtractGenres(snapshot.TopArtists), artistNames(snapshot.TopArtists))
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to store spotify link: %w", err)
	}

	s.logger.Info("Spotify linker: handshake completed",
		"user_id", userID,
		"spotify_user_id", snapshot.Profile.ID)

	return profile, nil
}

// fetchSnapshot gathers the provider data. The profile summary is required;
// missing top lists are an enhancement, not a requirement, and degrade to
// empty.
func (s *SpotifyLinker) fetchSnapshot(ctx context.Context, userID uuid.UUID, token *oauth2.Token) (linkSnapshot, error) {
	profile, err := s.api.Me(ctx, token)
	if err != nil {
		s.logger.Error("Spotify linker: failed to fetch provider profile",
			"user_id", userID,
			"error", err.Error())
		return linkSnapshot{}, &model.ProviderError{Provider: providerName, Reason: "failed to fetch profile"}
	}

	artists, err := s.api.TopArtists(ctx, token, topItemsLimit)
	if err != nil {
		s.logger.Warn("Spotify linker: failed to fetch top artists",
			"user_id", userID,
			"error", err.Error())
		artists = nil
	}

	tracks, err := s.api.TopTracks(ctx, token, topItemsLimit)
	if err != nil {
		s.logger.Warn("Spotify linker: failed to fetch top tracks",
			"user_id", userID,
			"error", err.Error())
		tracks = nil
	}

	return linkSnapshot{
		Profile:    profile,
		TopArtists: artists,
		TopTracks:  tracks,
	}, nil
}

func artistNames(artists []spotify.Artist) []string {
	names := make([]string, 0, maxFavoriteArtists)
	for _, artist := range artists {
		names = append(names, artist.Name)
		if len(names) == maxFavoriteArtists {
			break
		}
	}
	return names
}
