package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/soundlens/spotify-pulse/internal/analysis"
	"github.com/soundlens/spotify-pulse/internal/spotify"
)

// genreTagLimit caps how many genre tags are kept per artist.
const genreTagLimit = 3

// ArtistFetcher resolves a single artist record.
type ArtistFetcher interface {
	GetArtist(ctx context.Context, artistID string) (*spotify.Artist, error)
}

// ArtistGenreResolver fetches artist genre records, caching each artist
// for the lifetime of the resolver. Resolvers are built per analysis
// run, so the cache never outlives the data it was built from.
type ArtistGenreResolver struct {
	fetcher ArtistFetcher
	logger  *zap.Logger
	cache   map[string]analysis.ArtistGenreInfo
}

// NewArtistGenreResolver constructs a resolver for one analysis run.
func NewArtistGenreResolver(fetcher ArtistFetcher, logger *zap.Logger) *ArtistGenreResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtistGenreResolver{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]analysis.ArtistGenreInfo),
	}
}

// Resolve returns genre info for every distinct artist on the given
// tracks. An artist whose lookup fails is left out of the map; the
// analysis treats it as an artist with no known genres rather than
// aborting the run.
func (r *ArtistGenreResolver) Resolve(ctx context.Context, tracks []spotify.Track) map[string]analysis.ArtistGenreInfo {
	resolved := make(map[string]analysis.ArtistGenreInfo)
	for _, track := range tracks {
		for _, ref := range track.Artists {
			if ref.ID == "" {
				continue
			}
			if info, ok := r.cache[ref.ID]; ok {
				resolved[ref.ID] = info
				continue
			}

			artist, err := r.fetcher.GetArtist(ctx, ref.ID)
			if err != nil {
				if ctx.Err() != nil {
					return resolved
				}
				r.logger.Warn("artist genre lookup failed",
					zap.String("artist_id", ref.ID),
					zap.Error(err))
				continue
			}

			genres := artist.Genres
			if len(genres) > genreTagLimit {
				genres = genres[:genreTagLimit]
			}
			info := analysis.ArtistGenreInfo{
				Name:       artist.Name,
				Popularity: artist.Popularity,
				Genres:     genres,
			}
			r.cache[ref.ID] = info
			resolved[ref.ID] = info
		}
	}
	return resolved
}
