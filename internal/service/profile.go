package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

const maxFavoriteGenres = 5

// Profile implements profile reads and identity-scoped writes. A caller may
// only write the profile whose id equals their own identity id.
type Profile struct {
	profileStore model.ProfileStore
	userStore    model.UserStore
	storage      model.ImageStorage
	logger       *logger.Logger
}

func NewProfile(
	profileStore model.ProfileStore,
	userStore model.UserStore,
	storage model.ImageStorage,
	logger *logger.Logger,
) *Profile {
	return &Profile{
		profileStore: profileStore,
		userStore:    userStore,
		storage:      storage,
		logger:       logger,
	}
}

// CreateOrUpdate upserts the profile for identityID. Calling it twice for
// the same identity merges instead of failing, which makes the signup flow
// safe to re-submit.
func (s *Profile) CreateOrUpdate(ctx context.Context, callerID, identityID uuid.UUID, params model.CreateProfileParams) (model.Profile, error) {
	s.logger.Debug("Profile service: starting upsert",
		"identity_id", identityID)

	if callerID != identityID {
		return model.Profile{}, model.ErrForbidden
	}

	if strings.TrimSpace(params.Name) == "" {
		return model.Profile{}, model.NewValidationError("name", "must not be empty")
	}

	username := params.Username
	if username == "" {
		username = deriveUsername(params.Name)
	}
	if err := validateUsername(username); err != nil {
		return model.Profile{}, err
	}
	if err := validateGenres(params.FavoriteGenres); err != nil {
		return model.Profile{}, err
	}

	user, err := s.userStore.GetByID(ctx, identityID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	profile := model.Profile{
		ID:              identityID,
		Email:           user.Email,
		Username:        username,
		Name:            params.Name,
		Bio:             params.Bio,
		Location:        params.Location,
		ProfileImage:    params.ProfileImage,
		FavoriteGenres:  params.FavoriteGenres,
		FavoriteArtists: params.FavoriteArtists,
	}

	saved, err := s.profileStore.Upsert(ctx, profile)
	if err != nil {
		s.logger.Error("Profile service: upsert failed",
			"identity_id", identityID,
			"error", err.Error())
		return model.Profile{}, err
	}

	s.logger.Info("Profile service: upsert completed",
		"identity_id", identityID,
		"username", saved.Username)

	return saved, nil
}

// Get returns the profile for id. A missing profile is an expected state
// for an identity that has not finished onboarding, so found is false and
// there is no error.
func (s *Profile) Get(ctx context.Context, id uuid.UUID) (model.Profile, bool, error) {
	profile, err := s.profileStore.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, true, nil
}

// Update applies a partial edit to the caller's own profile. An attached
// image payload is persisted to object storage first and the resulting
// reference written as part of the same logical update.
func (s *Profile) Update(ctx context.Context, callerID, identityID uuid.UUID, params model.UpdateProfileParams) (model.Profile, error) {
	if callerID != identityID {
		return model.Profile{}, model.ErrForbidden
	}

	if params.Username != nil {
		if err := validateUsername(*params.Username); err != nil {
			return model.Profile{}, err
		}
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return model.Profile{}, model.NewValidationError("name", "must not be empty")
	}
	if err := validateGenres(params.FavoriteGenres); err != nil {
		return model.Profile{}, err
	}

	update := model.ProfileUpdate{
		Username:        params.Username,
		Name:            params.Name,
		Bio:             params.Bio,
		Location:        params.Location,
		FavoriteGenres:  params.FavoriteGenres,
		FavoriteArtists: params.FavoriteArtists,
	}

	if params.Image != nil {
		url, err := s.storage.UploadImage(ctx, identityID, params.Image.Slot,
			params.Image.Reader, params.Image.Size, params.Image.ContentType)
		if err != nil {
			return model.Profile{}, err
		}
		switch params.Image.Slot {
		case model.SlotCover:
			update.CoverImage = &url
		default:
			update.ProfileImage = &url
		}
	}

	profile, err := s.profileStore.Update(ctx, identityID, update)
	if err != nil {
		s.logger.Error("Profile service: update failed",
			"identity_id", identityID,
			"error", err.Error())
		return model.Profile{}, err
	}

	s.logger.Info("Profile service: update completed",
		"identity_id", identityID)

	return profile, nil
}

// UploadImage stores an image in the caller's slot and writes the returned
// reference to the profile.
func (s *Profile) UploadImage(ctx context.Context, callerID, identityID uuid.UUID, upload model.ImageUpload) (model.Profile, error) {
	return s.Update(ctx, callerID, identityID, model.UpdateProfileParams{Image: &upload})
}

// CheckUsernameAvailable is a best-effort existence check: a race with a
// concurrent signup is resolved by the write-time ErrUsernameTaken, not here.
func (s *Profile) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	if err := validateUsername(username); err != nil {
		return false, err
	}

	exists, err := s.profileStore.UsernameExists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}

	return !exists, nil
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return model.NewValidationError("username",
			"must be 3-30 characters of letters, digits or underscore")
	}
	return nil
}

func validateGenres(genres []string) error {
	if len(genres) > maxFavoriteGenres {
		return model.NewValidationError("favorite_genres",
			fmt.Sprintf("at most %d genres allowed", maxFavoriteGenres))
	}
	return nil
}

// deriveUsername builds a fallback username from the display name plus a
// timestamp suffix, e.g. "Test User" -> "testuser1755856800".
func deriveUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s%d", base, time.Now().Unix())
}
