package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgchart-app/orgchart-backend/internal/models"
)

func newDirectoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/users/alice@x.com", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.Profile{
			DisplayName: "Alice",
			JobTitle:    "Engineer",
			Email:       "alice@x.com",
		})
	})
	mux.HandleFunc("/users/alice@x.com/photo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})
	mux.HandleFunc("/users/broken@x.com", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return httptest.NewServer(mux)
}

func TestLookupProfile(t *testing.T) {
	srv := newDirectoryServer(t)
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-token", 5*time.Second)

	profile, err := client.LookupProfile(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "Engineer", profile.JobTitle)
}

func TestLookupProfileNotFound(t *testing.T) {
	srv := newDirectoryServer(t)
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-token", 5*time.Second)

	_, err := client.LookupProfile(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupProfileServerError(t *testing.T) {
	srv := newDirectoryServer(t)
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-token", 5*time.Second)

	_, err := client.LookupProfile(context.Background(), "broken@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLookupPhoto(t *testing.T) {
	srv := newDirectoryServer(t)
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-token", 5*time.Second)

	photo, err := client.LookupPhoto(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.ContentType)
	assert.Equal(t, []byte("png-bytes"), photo.Data)
}

func TestLookupPhotoNotFound(t *testing.T) {
	srv := newDirectoryServer(t)
	defer srv.Close()

	client := NewRESTClient(srv.URL, "test-token", 5*time.Second)

	_, err := client.LookupPhoto(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
