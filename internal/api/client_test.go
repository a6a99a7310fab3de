package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do_SendsBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-123")
	require.NoError(t, c.Get(context.Background(), "/current_user", nil))
	assert.Equal(t, "Bearer tok-123", gotAuth)

	c.SetToken("")
	require.NoError(t, c.Get(context.Background(), "/speakers", nil))
	assert.Empty(t, gotAuth)
}

func TestClient_Do_ErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "error field", status: 400, body: `{"error":"Username already exists"}`, wantMsg: "Username already exists"},
		{name: "msg field", status: 401, body: `{"msg":"Token has expired"}`, wantMsg: "Token has expired"},
		{name: "no usable message", status: 500, body: `<html>boom</html>`, wantMsg: "HTTP error! status: 500"},
		{name: "empty body", status: 404, body: ``, wantMsg: "HTTP error! status: 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL).Get(context.Background(), "/x", nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClient_Do_DecodesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":7,"username":"ada"}`))
	}))
	defer srv.Close()

	var out struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, NewClient(srv.URL).Get(context.Background(), "/current_user", &out))
	assert.Equal(t, uint(7), out.ID)
	assert.Equal(t, "ada", out.Username)
}

func TestClient_LoadingFlag(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.False(t, c.Loading())

	done := make(chan error, 1)
	go func() {
		done <- c.Get(context.Background(), "/slow", nil)
	}()

	<-entered
	assert.True(t, c.Loading())
	assert.Equal(t, int64(1), c.InFlight())

	close(release)
	require.NoError(t, <-done)

	require.Eventually(t, func() bool { return !c.Loading() }, time.Second, 5*time.Millisecond)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	unauth := &APIError{Status: http.StatusUnauthorized, Message: "expired"}
	notFound := &APIError{Status: http.StatusNotFound, Message: "nope"}

	assert.True(t, IsUnauthorized(unauth))
	assert.False(t, IsUnauthorized(notFound))
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(unauth))

	assert.Equal(t, "expired", UserMessage(unauth))
	assert.Equal(t, "An error occurred", UserMessage(context.DeadlineExceeded))
	assert.Equal(t, "Failed to save", UserMessageOr(context.DeadlineExceeded, "Failed to save"))
}
