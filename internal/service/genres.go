package service

import (
	"strings"

	"github.com/fync-app/fync-server/internal/spotify"
)

// genreDictionary maps raw provider artist tags onto the app's genre
// categories. Tags without a mapping pass through unchanged.
var genreDictionary = map[string]string{
	"indie rock":       "Indie",
	"alternative rock": "Alternative",
	"psychedelic pop":  "Alternative",
	"garage rock":      "Rock",
	"experimental":     "Alternative",
	"bedroom pop":      "Indie",
	"jazz":             "Jazz",
	"indie pop":        "Indie",
	"electronic":       "Electronic",
	"hip hop":          "Hip-Hop",
	"pop":              "Pop",
	"classical":        "Classical",
	"country":          "Country",
	"folk":             "Folk",
	"blues":            "Blues",
	"metal":            "Metal",
}

// ExtractGenres derives the favorite-genres list from the artists' raw tag
// lists: tags are mapped through the dictionary, duplicates removed keeping
// first-seen order, and the result capped at maxFavoriteGenres.
func ExtractGenres(artists []spotify.Artist) []string {
	seen := make(map[string]struct{})
	genres := make([]string, 0, maxFavoriteGenres)

	for _, artist := range artists {
		for _, tag := range artist.Genres {
			genre, ok := genreDictionary[strings.ToLower(tag)]
			if !ok {
				genre = tag
			}
			if _, dup := seen[genre]; dup {
				continue
			}
			seen[genre] = struct{}{}
			genres = append(genres, genre)
			if len(genres) == maxFavoriteGenres {
				return genres
			}
		}
	}

	return genres
}
