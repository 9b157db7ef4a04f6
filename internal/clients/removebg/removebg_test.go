package removebg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoveBackground_OK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "auto", r.FormValue("size"))

		file, header, err := r.FormFile("image_file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "photo.jpg", header.Filename)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("png-result"))
	}))
	defer srv.Close()

	c := New("test-key")
	c.endpoint = srv.URL

	result, err := c.RemoveBackground(context.Background(), strings.NewReader("jpeg-data"), "photo.jpg")
	require.NoError(t, err)
	require.Equal(t, []byte("png-result"), result)
}

func TestRemoveBackground_UpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errors":[{"title":"Insufficient credits"}]}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := New("test-key")
	c.endpoint = srv.URL

	_, err := c.RemoveBackground(context.Background(), strings.NewReader("jpeg-data"), "photo.jpg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "402")
	// Тело ошибки апстрима не попадает в текст ошибки.
	require.NotContains(t, err.Error(), "Insufficient credits")
}

func TestRemoveBackground_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("test-key")
	c.endpoint = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.RemoveBackground(ctx, strings.NewReader("jpeg-data"), "photo.jpg")
	require.Error(t, err)
}
