package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speakerhub/frontend/internal/api"
	"github.com/speakerhub/frontend/internal/httpserver"
	"github.com/speakerhub/frontend/internal/logging"
	"github.com/speakerhub/frontend/internal/models"
	"github.com/speakerhub/frontend/internal/notify"
	"github.com/speakerhub/frontend/internal/requests"
	"github.com/speakerhub/frontend/internal/session"
	"github.com/speakerhub/frontend/internal/speakers"
	"github.com/speakerhub/frontend/internal/tokenstore"
)

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid email or password"}`))
			return
		}
		w.Write([]byte(`{"access_token":"tok-1"}`))
	})
	mux.HandleFunc("GET /current_user", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.User{ID: 7, Username: "ada", Email: "a@b.com"})
	})
	mux.HandleFunc("DELETE /logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /speakers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Speaker{
			{ID: 1, ModelName: "LS50 Meta", Manufacturer: "KEF", Price: 1599},
			{ID: 2, ModelName: "Debut 2.0", Manufacturer: "Elac", Price: 349},
		})
	})
	mux.HandleFunc("GET /speakers/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Speaker{ID: 1, ModelName: "LS50 Meta", Manufacturer: "KEF"})
	})
	mux.HandleFunc("GET /requests/user", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Request{
			{ID: 3, SpeakerName: "Model X", Status: models.StatusPending, UserID: 7},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) (*echo.Echo, *session.Service) {
	t.Helper()
	backend := newFakeAPI(t)

	log := logging.New("error")
	center := notify.NewCenter(log)
	client := api.NewClient(backend.URL)
	sess := session.New(client, &tokenstore.Memory{}, center, nil, log)
	store, err := requests.New(sess, client, center, nil, log)
	require.NoError(t, err)
	catalog := speakers.New(sess, client, center, nil, log)

	e := echo.New()
	require.NoError(t, httpserver.Register(e, &httpserver.Deps{
		Session:  sess,
		Requests: store,
		Catalog:  catalog,
		Notify:   center,
	}))
	return e, sess
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func postForm(e *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	assert.Equal(t, http.StatusOK, get(e, "/health/live").Code)
	assert.Equal(t, http.StatusOK, get(e, "/health/ready").Code)
}

func TestHome_ShowsFeaturedSpeakers(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := get(e, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LS50 Meta")
}

func TestSpeakers_SearchFiltersClientSide(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)

	rec := get(e, "/speakers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LS50 Meta")
	assert.Contains(t, rec.Body.String(), "Debut 2.0")

	rec = get(e, "/speakers?q=kef")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LS50 Meta")
	assert.NotContains(t, rec.Body.String(), "Debut 2.0")
}

func TestSpeakerDetail(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := get(e, "/speakers/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LS50 Meta")
}

func TestRequests_RedirectsAnonymousToAuth(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := get(e, "/requests")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}

func TestProfile_RedirectsAnonymousToAuth(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)
	rec := get(e, "/profile")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	e, sess := newTestServer(t)

	rec := postForm(e, "/auth/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, session.Authenticated, sess.State())

	// Signed in, the requests page renders the scoped collection.
	rec = get(e, "/requests")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Model X")

	// Profile shows the signed-in user.
	rec = get(e, "/profile")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ada")
}

func TestLogin_FailureRedirectsBackToAuth(t *testing.T) {
	t.Parallel()

	e, sess := newTestServer(t)

	rec := postForm(e, "/auth/login", url.Values{"email": {"a@b.com"}, "password": {"wrong"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
	assert.Equal(t, session.Anonymous, sess.State())

	// The failure surfaces as a flash message on the next page.
	rec = get(e, "/auth")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	e, sess := newTestServer(t)
	postForm(e, "/auth/login", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})
	require.Equal(t, session.Authenticated, sess.State())

	rec := postForm(e, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
	assert.Equal(t, session.Anonymous, sess.State())
}

func TestAuth_RegisterMode(t *testing.T) {
	t.Parallel()

	e, _ := newTestServer(t)

	rec := get(e, "/auth?mode=register")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "username")
}
