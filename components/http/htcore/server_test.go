package htcore

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerServe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		WriteText(w, "pong")
	})

	server, err := NewServer(mux, ServerParams{Host: "127.0.0.1"})
	require.NoError(t, err)

	server.Start()
	defer func() {
		require.NoError(t, server.Close())
	}()

	resp, err := http.Get(server.URL() + "/ping")
	require.NoError(t, err)
	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "pong", string(body))
}

func TestServerCloseWithoutStart(t *testing.T) {
	server, err := NewServer(http.NewServeMux(), ServerParams{Host: "127.0.0.1"})
	require.NoError(t, err)

	// Close doesn't wait for a serving loop that was never started.
	require.NoError(t, server.Close())
}
