package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/mocks"
	"github.com/fync-app/fync-server/internal/model"
	"github.com/fync-app/fync-server/internal/spotify"
)

type fakeSpotifyAPI struct {
	profile    spotify.UserProfile
	artists    []spotify.Artist
	tracks     []spotify.Track
	meErr      error
	artistsErr error
	tracksErr  error
}

func (f *fakeSpotifyAPI) Me(_ context.Context, _ *oauth2.Token) (spotify.UserProfile, error) {
	return f.profile, f.meErr
}

func (f *fakeSpotifyAPI) TopArtists(_ context.Context, _ *oauth2.Token, _ int) ([]spotify.Artist, error) {
	return f.artists, f.artistsErr
}

func (f *fakeSpotifyAPI) TopTracks(_ context.Context, _ *oauth2.Token, _ int) ([]spotify.Track, error) {
	return f.tracks, f.tracksErr
}

// newTokenServer serves the OAuth token endpoint and counts exchanges.
func newTokenServer(t *testing.T, exchanges *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "provider-access",
			"token_type":    "Bearer",
			"refresh_token": "provider-refresh",
			"expires_in":    3600,
		})
	}))
}

func newLinkerOAuthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://localhost/callback",
		Scopes:       spotify.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.spotify.test/authorize",
			TokenURL: tokenURL,
		},
	}
}

func TestSpotifyLinker_BeginLink(t *testing.T) {
	linkStore := &mocks.LinkStateStore{}
	profileStore := &mocks.ProfileStore{}
	userID := uuid.New()

	var created model.PendingLink
	linkStore.On("Create", mock.Anything, mock.MatchedBy(func(p model.PendingLink) bool {
		created = p
		return p.UserID == userID && p.State != "" && !p.Consumed
	})).Return(nil)

	s := NewSpotifyLinker(newLinkerOAuthConfig("https://unused"), &fakeSpotifyAPI{}, linkStore, profileStore, logger.New(0))

	authURL, err := s.BeginLink(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, authURL, "https://accounts.spotify.test/authorize")
	assert.Contains(t, authURL, "state="+created.State)
	assert.Contains(t, authURL, "show_dialog=true")
	assert.Contains(t, authURL, "client_id=client-id")
	assert.WithinDuration(t, time.Now().Add(model.LinkStateDuration), created.ExpiresAt, 5*time.Second)
}

func TestSpotifyLinker_BeginLink_FreshStatePerAttempt(t *testing.T) {
	linkStore := &mocks.LinkStateStore{}
	userID := uuid.New()

	states := make(map[string]struct{})
	linkStore.On("Create", mock.Anything, mock.MatchedBy(func(p model.PendingLink) bool {
		states[p.State] = struct{}{}
		return true
	})).Return(nil)

	s := NewSpotifyLinker(newLinkerOAuthConfig("https://unused"), &fakeSpotifyAPI{}, linkStore, &mocks.ProfileStore{}, logger.New(0))

	for i := 0; i < 5; i++ {
		_, err := s.BeginLink(context.Background(), userID)
		require.NoError(t, err)
	}

	assert.Len(t, states, 5)
}

func TestSpotifyLinker_HandleCallback_UnknownState(t *testing.T) {
	var exchanges atomic.Int32
	ts := newTokenServer(t, &exchanges)
	defer ts.Close()

	linkStore := &mocks.LinkStateStore{}
	linkStore.On("GetByState", mock.Anything, "bogus").Return(model.PendingLink{}, model.ErrNotFound)

	s := NewSpotifyLinker(newLinkerOAuthConfig(ts.URL), &fakeSpotifyAPI{}, linkStore, &mocks.ProfileStore{}, logger.New(0))

	_, err := s.HandleCallback(context.Background(), uuid.New(), "code", "bogus", "")
	require.ErrorIs(t, err, model.ErrStateMismatch)
	assert.Equal(t, int32(0), exchanges.Load())
}

func TestSpotifyLinker_HandleCallback_ConsumedStateNeverExchangesAgain(t *testing.T) {
	var exchanges atomic.Int32
	ts := newTokenServer(t, &exchanges)
	defer ts.Close()

	userID := uuid.New()
	linkStore := &mocks.LinkStateStore{}
	linkStore.On("GetByState", mock.Anything, "replayed").Return(model.PendingLink{
		State:     "replayed",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Minute),
		Consumed:  true,
	}, nil)
	// The store loses the conditional update for an already consumed state.
	linkStore.On("Consume", mock.Anything, "replayed").Return(model.ErrStateMismatch)

	s := NewSpotifyLinker(newLinkerOAuthConfig(ts.URL), &fakeSpotifyAPI{}, linkStore, &mocks.ProfileStore{}, logger.New(0))

	_, err := s.HandleCallback(context.Background(), userID, "code", "replayed", "")
	require.ErrorIs(t, err, model.ErrStateMismatch)
	assert.Equal(t, int32(0), exchanges.Load())
	linkStore.AssertExpectations(t)
}

func TestSpotifyLinker_HandleCallback_WrongUser(t *testing.T) {
	linkStore := &mocks.LinkStateStore{}
	linkStore.On("GetByState", mock.Anything, "state").Return(model.PendingLink{
		State:     "state",
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil)

	s := NewSpotifyLinker(newLinkerOAuthConfig("https://unused"), &fakeSpotifyAPI{}, linkStore, &mocks.ProfileStore{}, logger.New(0))

	_, err := s.HandleCallback(context.Background(), uuid.New(), "code", "state", "")
	require.ErrorIs(t, err, model.ErrStateMismatch)
}

func TestSpotifyLinker_HandleCallback_ExpiredState(t *testing.T) {
	userID := uuid.New()
	linkStore := &mocks.LinkStateStore{}
	linkStore.On("GetByState", mock.Anything, "state").Return(model.PendingLink{
		State:     "state",
		UserID:    userID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	s := NewSpotifyLinker(newLinkerOAuthConfig("https://unused"), &fakeSpotifyAPI{}, linkStore, &mocks.ProfileStore{}, logger.New(0))

	_, err := s.HandleCallback(context.Background(), userID, "code", "state", "")
	require.ErrorIs(t, err, model.ErrStateMismatch)
}

func TestSpotifyLinker_HandleCallback_ProviderError(t *testing.T) {
	linkStore := &mocks.LinkStateStore{}
	linkStore.On("Consume", mock.Anything, "state").Return(nil)

	s := NewSpotifyLinker(newLinkerOAuthConfig("https://unused"), &fakeSpotifyAPI{}, linkStore, &mocks.ProfileStore{}, logger.New(0))

	_, err := s.HandleCallback(context.Background(), uuid.New(), "", "state", "access_denied")

	var providerErr *model.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "spotify", providerErr.Provider)
	assert.Equal(t, "access_denied", providerErr.Reason)
	linkStore.AssertExpectations(t)
}

func TestSpotifyLinker_HandleCallback_Success(t *testing.T) {
	var exchanges atomic.Int32
	ts := newTokenServer(t, &exchanges)
	defer ts.Close()

	userID := uuid.New()
	linkStore := &mocks.LinkStateStore{}
	linkStore.On("GetByState", mock.Anything, "state").Return(model.PendingLink{
		State:     "state",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil)
	linkStore.On("Consume", mock.Anything, "state").Return(nil)

	api := &fakeSpotifyAPI{
		profile: spotify.UserProfile{ID: "spotify-user", DisplayName: "Sam"},
		artists: []spotify.Artist{
			{Name: "Arctic Monkeys", Genres: []string{"indie rock"}},
			{Name: "Miles Davis", Genres: []string{"jazz"}},
		},
		tracks: []spotify.Track{{Name: "505"}},
	}

	profileStore := &mocks.ProfileStore{}
	profileStore.On("SetSpotifyLink", mock.Anything, userID, mock.MatchedBy(func(link model.SpotifyLink) bool {
		var snapshot linkSnapshot
		if err := json.Unmarshal(link.Snapshot, &snapshot); err != nil {
			return false
		}
		return link.Connected &&
			link.UserID == "spotify-user" &&
			link.AccessToken == "provider-access" &&
			link.RefreshToken == "provider-refresh" &&
			snapshot.Profile.ID == "spotify-user" &&
			len(snapshot.TopArtists) == 2 &&
			len(snapshot.TopTracks) == 1
	}), []string{"Indie", "Jazz"}, []string{"Arctic Monkeys", "Miles Davis"}).
		Return(model.Profile{ID: userID, FavoriteGenres: []string{"Indie", "Jazz"}}, nil)

	s := NewSpotifyLinker(newLinkerOAuthConfig(ts.URL), api, linkStore, profileStore, logger.New(0))

	profile, err := s.HandleCallback(context.Background(), userID, "code", "state", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Indie", "Jazz"}, profile.FavoriteGenres)
	assert.Equal(t, int32(1), exchanges.Load())
	profileStore.AssertExpectations(t)
}

func TestSpotifyLinker_HandleCallback_TopListsFailureTolerated(t *testing.T) {
	var exchanges atomic.Int32
	ts := newTokenServer(t, &exchanges)
	defer ts.Close()

	userID := uuid.New()
	linkStore := &mocks.LinkStateStore{}
	linkStore.On("GetByState", mock.Anything, "state").Return(model.PendingLink{
		State:     "state",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil)
	linkStore.On("Consume", mock.Anything, "state").Return(nil)

	api := &fakeSpotifyAPI{
		profile:    spotify.UserProfile{ID: "spotify-user"},
		artistsErr: errors.New("rate limited"),
		tracksErr:  errors.New("rate limited"),
	}

	profileStore := &mocks.ProfileStore{}
	profileStore.On("SetSpotifyLink", mock.Anything, userID, mock.Anything, []string{}, []string{}).
		Return(model.Profile{ID: userID}, nil)

	s := NewSpotifyLinker(newLinkerOAuthConfig(ts.URL), api, linkStore, profileStore, logger.New(0))

	_, err := s.HandleCallback(context.Background(), userID, "code", "state", "")
	require.NoError(t, err)
	profileStore.AssertExpectations(t)
}

func TestSpotifyLinker_HandleCallback_ProfileFetchFatal(t *testing.T) {
	var exchanges atomic.Int32
	ts := newTokenServer(t, &exchanges)
	defer ts.Close()

	userID := uuid.New()
	linkStore := &mocks.LinkStateStore{}
	linkStore.On("GetByState", mock.Anything, "state").Return(model.PendingLink{
		State:     "state",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil)
	linkStore.On("Consume", mock.Anything, "state").Return(nil)

	api := &fakeSpotifyAPI{meErr: errors.New("unauthorized")}

	s := NewSpotifyLinker(newLinkerOAuthConfig(ts.URL), api, linkStore, &mocks.ProfileStore{}, logger.New(0))

	_, err := s.HandleCallback(context.Background(), userID, "code", "state", "")

	var providerErr *model.ProviderError
	require.ErrorAs(t, err, &providerErr)
}
