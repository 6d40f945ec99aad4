package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestAudioFeaturesBatchEmptyInput(t *testing.T) {
	client, _ := newTestClient(t, http.NewServeMux())
	client.SetToken(&oauth2.Token{AccessToken: "tok"})

	got, err := client.AudioFeaturesBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("AudioFeaturesBatch() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("result = %v, want empty non-nil", got)
	}
}

func TestAudioFeaturesBatchPositionalAlignment(t *testing.T) {
	// 150 ids span two chunks. The second chunk always fails; the
	// first succeeds but the upstream has no analysis for id-007.
	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%03d", i)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio-features", func(w http.ResponseWriter, r *http.Request) {
		requested := strings.Split(r.URL.Query().Get("ids"), ",")
		if requested[0] != "id-000" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		features := make([]*AudioFeatures, 0, len(requested))
		for _, id := range requested {
			if id == "id-007" {
				features = append(features, nil)
				continue
			}
			features = append(features, &AudioFeatures{ID: id, Tempo: 120})
		}
		_ = json.NewEncoder(w).Encode(audioFeaturesEnvelope{AudioFeatures: features})
	})

	client, _ := newTestClient(t, mux)
	client.SetToken(&oauth2.Token{AccessToken: "tok"})

	got, err := client.AudioFeaturesBatch(context.Background(), ids)
	if err != nil {
		t.Fatalf("AudioFeaturesBatch() error = %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("len(result) = %d, want %d", len(got), len(ids))
	}

	for i := 0; i < 100; i++ {
		if i == 7 {
			if got[i] != nil {
				t.Errorf("result[7] = %+v, want nil (upstream null)", got[i])
			}
			continue
		}
		if got[i] == nil {
			t.Fatalf("result[%d] is nil, want vector", i)
		}
		if got[i].ID != ids[i] {
			t.Errorf("result[%d].ID = %q, want %q (alignment shifted)", i, got[i].ID, ids[i])
		}
	}

	// The failed chunk is a run of placeholders, never an error and
	// never a shortened slice.
	for i := 100; i < 150; i++ {
		if got[i] != nil {
			t.Errorf("result[%d] = %+v, want nil placeholder", i, got[i])
		}
	}
}

func TestAudioFeaturesBatchAuthFailureAborts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio-features", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, _ := newTestClient(t, mux)
	// No refresh token, so the single refresh attempt fails terminally.
	client.SetToken(&oauth2.Token{AccessToken: "tok"})

	got, err := client.AudioFeaturesBatch(context.Background(), []string{"id-1"})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want AuthError", err)
	}
	if got != nil {
		t.Errorf("result = %v, want nil on auth abort", got)
	}
}
