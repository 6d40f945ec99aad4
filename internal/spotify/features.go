package spotify

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// featureChunkSize is the upstream batch limit for the audio-features
// endpoint.
const featureChunkSize = 100

type audioFeaturesEnvelope struct {
	AudioFeatures []*AudioFeatures `json:"audio_features"`
}

// AudioFeaturesBatch fetches audio-feature vectors for the given track
// ids. The result is always positionally aligned with the input:
// len(result) == len(trackIDs), and result[i] is either the vector for
// trackIDs[i] or nil. A chunk whose fetch exhausts the retry budget
// contributes a run of nils rather than failing the whole batch; only a
// terminal auth failure aborts.
func (c *Client) AudioFeaturesBatch(ctx context.Context, trackIDs []string) ([]*AudioFeatures, error) {
	if len(trackIDs) == 0 {
		return []*AudioFeatures{}, nil
	}

	result := make([]*AudioFeatures, len(trackIDs))

	for start := 0; start < len(trackIDs); start += featureChunkSize {
		end := min(start+featureChunkSize, len(trackIDs))
		chunk := trackIDs[start:end]

		var envelope audioFeaturesEnvelope
		params := url.Values{"ids": {strings.Join(chunk, ",")}}
		err := c.get(ctx, "/audio-features", params, &envelope)
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Exhausted chunk: leave nil placeholders so callers can
			// still zip ids to features one to one.
			c.logger.Error("audio-features chunk failed, substituting placeholders",
				zap.Int("chunk_start", start),
				zap.Int("chunk_len", len(chunk)),
				zap.Error(err))
			continue
		}

		// The upstream returns entries in request order, with null for
		// ids it has no analysis for. Index by id anyway so a short or
		// reordered response cannot shift alignment.
		byID := make(map[string]*AudioFeatures, len(envelope.AudioFeatures))
		for _, f := range envelope.AudioFeatures {
			if f == nil {
				continue
			}
			byID[f.ID] = f
		}
		for i, id := range chunk {
			result[start+i] = byID[id]
		}
	}

	return result, nil
}
