package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fync-app/fync-server/internal/model"
)

var _ model.ProfileStore = (*ProfileRepository)(nil)

type ProfileRepository struct {
	db *Connection
}

func NewProfileRepository(db *Connection) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

const profileColumns = `id, email, username, name, bio, location, profile_image, cover_image,
	favorite_genres, favorite_artists, spotify_connected, spotify_user_id, spotify_data,
	spotify_access_token, spotify_refresh_token, spotify_token_expires_at, created_at, updated_at`

func scanProfile(row pgx.Row) (model.Profile, error) {
	var (
		profile     model.Profile
		spConnected bool
		spUserID    *string
		spData      []byte
		spAccess    *string
		spRefresh   *string
		spExpiresAt *time.Time
	)

	err := row.Scan(
		&profile.ID, &profile.Email, &profile.Username, &profile.Name, &profile.Bio, &profile.Location,
		&profile.ProfileImage, &profile.CoverImage, &profile.FavoriteGenres, &profile.FavoriteArtists,
		&spConnected, &spUserID, &spData, &spAccess, &spRefresh, &spExpiresAt,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return model.Profile{}, err
	}

	if spConnected {
		link := &model.SpotifyLink{
			Connected: true,
			Snapshot:  spData,
		}
		if spUserID != nil {
			link.UserID = *spUserID
		}
		if spAccess != nil {
			link.AccessToken = *spAccess
		}
		if spRefresh != nil {
			link.RefreshToken = *spRefresh
		}
		if spExpiresAt != nil {
			link.ExpiresAt = *spExpiresAt
		}
		profile.Spotify = link
	}

	return profile, nil
}

// Upsert inserts the profile or, when a row already exists for the same
// identity id, merges the submitted fields into it. Image references are
// only overwritten when the submitted value is non-null, so a re-submitted
// signup step cannot erase a previously uploaded image.
func (r *ProfileRepository) Upsert(ctx context.Context, profile model.Profile) (model.Profile, error) {
	query := `INSERT INTO profiles (id, email, username, name, bio, location, profile_image, cover_image,
				  favorite_genres, favorite_artists, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			  ON CONFLICT (id) DO UPDATE SET
				  email = EXCLUDED.email,
				  username = EXCLUDED.username,
				  name = EXCLUDED.name,
				  bio = EXCLUDED.bio,
				  location = EXCLUDED.location,
				  profile_image = COALESCE(EXCLUDED.profile_image, profiles.profile_image),
				  cover_image = COALESCE(EXCLUDED.cover_image, profiles.cover_image),
				  favorite_genres = EXCLUDED.favorite_genres,
				  favorite_artists = EXCLUDED.favorite_artists,
				  updated_at = NOW()
			  RETURNING ` + profileColumns

	genres := profile.FavoriteGenres
	if genres == nil {
		genres = []string{}
	}
	artists := profile.FavoriteArtists
	if artists == nil {
		artists = []string{}
	}

	saved, err := scanProfile(r.db.QueryRow(ctx, query,
		profile.ID, profile.Email, profile.Username, profile.Name, profile.Bio, profile.Location,
		profile.ProfileImage, profile.CoverImage, genres, artists,
	))
	if err != nil {
		return model.Profile{}, r.classifyWriteError(err, "failed to upsert profile")
	}

	return saved, nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	profile, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrNotFound
		}
		if isSetupRequired(err) {
			return model.Profile{}, model.ErrSetupRequired
		}
		return model.Profile{}, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return profile, nil
}

// Update applies a partial update; nil fields are left untouched.
func (r *ProfileRepository) Update(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) (model.Profile, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Username != nil {
		add("username", *update.Username)
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Bio != nil {
		add("bio", *update.Bio)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.ProfileImage != nil {
		add("profile_image", *update.ProfileImage)
	}
	if update.CoverImage != nil {
		add("cover_image", *update.CoverImage)
	}
	if update.FavoriteGenres != nil {
		add("favorite_genres", update.FavoriteGenres)
	}
	if update.FavoriteArtists != nil {
		add("favorite_artists", update.FavoriteArtists)
	}

	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), profileColumns)

	profile, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrNotFound
		}
		return model.Profile{}, r.classifyWriteError(err, "failed to update profile")
	}

	return profile, nil
}

func (r *ProfileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		if isSetupRequired(err) {
			return false, model.ErrSetupRequired
		}
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

func (r *ProfileRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM profiles`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		if isSetupRequired(err) {
			return 0, model.ErrSetupRequired
		}
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	return count, nil
}

// SetSpotifyLink writes the link record and the derived taste lists in one
// statement, so a reader never observes a connected link without its genres.
func (r *ProfileRepository) SetSpotifyLink(ctx context.Context, id uuid.UUID, link model.SpotifyLink, genres, artists []string) (model.Profile, error) {
	query := `UPDATE profiles SET
				  spotify_connected = $2,
				  spotify_user_id = $3,
				  spotify_data = $4,
				  spotify_access_token = $5,
				  spotify_refresh_token = $6,
				  spotify_token_expires_at = $7,
				  favorite_genres = $8,
				  favorite_artists = $9,
				  updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + profileColumns

	if genres == nil {
		genres = []string{}
	}
	if artists == nil {
		artists = []string{}
	}

	profile, err := scanProfile(r.db.QueryRow(ctx, query,
		id, link.Connected, link.UserID, link.Snapshot, link.AccessToken, link.RefreshToken, link.ExpiresAt,
		genres, artists,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("failed to set spotify link: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepository) classifyWriteError(err error, msg string) error {
	if isSetupRequired(err) {
		return model.ErrSetupRequired
	}
	switch uniqueConstraint(err) {
	case "profiles_username_key":
		return model.ErrUsernameTaken
	case "profiles_email_key":
		return model.ErrProfileExists
	}
	return fmt.Errorf("%s: %w", msg, err)
}
