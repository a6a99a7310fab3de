package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/speakerhub/frontend/internal/api"
	"github.com/speakerhub/frontend/internal/events"
	"github.com/speakerhub/frontend/internal/models"
	"github.com/speakerhub/frontend/internal/notify"
	"github.com/speakerhub/frontend/internal/tokenstore"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Result is the structured outcome of register/login/update calls. Failures
// carry the server's message so the page can render it without the call site
// having to unwrap errors.
type Result struct {
	Success bool
	Error   string
}

// Service owns the authentication lifecycle: the bearer token, the current
// user record, and the persisted copy of the token. All other stores consume
// it. The transitions follow Anonymous -> Authenticating -> Authenticated,
// falling back to Anonymous on any failure, logout or deletion.
type Service struct {
	api    *api.Client
	store  tokenstore.Store
	notify *notify.Center
	events *events.Producer
	log    *slog.Logger

	mu           sync.RWMutex
	token        string
	currentUser  *models.User
	state        State
	onUserChange []func(context.Context, *models.User)
}

func New(client *api.Client, store tokenstore.Store, center *notify.Center, producer *events.Producer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		api:    client,
		store:  store,
		notify: center,
		events: producer,
		log:    log,
		state:  Anonymous,
	}
}

// OnUserChange registers fn to run after every current-user transition,
// including the transition to nil. The request store uses this to re-derive
// its scope.
func (s *Service) OnUserChange(fn func(context.Context, *models.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUserChange = append(s.onUserChange, fn)
}

func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Service) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	u := *s.currentUser
	return &u
}

func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Bootstrap restores the session from the persisted token at startup. A
// stored token that is already expired is discarded without a network call.
func (s *Service) Bootstrap(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	if Expired(token) {
		s.log.Info("stored token expired, discarding")
		if err := s.store.Clear(); err != nil {
			s.log.Error("token_clear_failed", "error", err)
		}
		return nil
	}
	s.setToken(token)
	return s.FetchCurrentUser(ctx)
}

// Register posts new credentials. It never authenticates by itself; the
// caller is redirected to the login page on success.
func (s *Service) Register(ctx context.Context, username, email, password string) Result {
	if username == "" || email == "" || password == "" {
		msg := "Username, email and password are required"
		s.notify.Error(msg)
		return Result{Error: msg}
	}

	s.setState(Authenticating)
	defer s.setState(Anonymous)

	var resp struct {
		Success string `json:"success"`
	}
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := s.api.Post(ctx, "/users", body, &resp); err != nil {
		msg := api.UserMessage(err)
		s.notify.Error(msg)
		return Result{Error: msg}
	}

	if resp.Success == "" {
		resp.Success = "Registration successful!"
	}
	s.notify.Success(resp.Success)
	s.events.Publish(ctx, "register", 0, map[string]any{"username": username})
	return Result{Success: true}
}

// Login exchanges credentials for a token, persists it and fetches the
// current user. The session reaches Authenticated only when both steps
// succeed; any failure leaves it Anonymous with nothing persisted.
func (s *Service) Login(ctx context.Context, email, password string) Result {
	if email == "" || password == "" {
		msg := "Email and password are required"
		s.notify.Error(msg)
		return Result{Error: msg}
	}

	s.setState(Authenticating)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := s.api.Post(ctx, "/login", body, &resp); err != nil {
		s.setState(Anonymous)
		msg := api.UserMessage(err)
		s.notify.Error(msg)
		return Result{Error: msg}
	}
	if resp.AccessToken == "" {
		s.setState(Anonymous)
		s.notify.Error("Invalid response from server")
		return Result{Error: "Invalid response"}
	}

	if err := s.store.Save(resp.AccessToken); err != nil {
		s.setState(Anonymous)
		s.log.Error("token_save_failed", "error", err)
		return Result{Error: "Could not persist session"}
	}
	s.setToken(resp.AccessToken)

	if err := s.FetchCurrentUser(ctx); err != nil {
		s.clearLocal(ctx)
		msg := api.UserMessage(err)
		s.notify.Error(msg)
		return Result{Error: msg}
	}
	if s.State() != Authenticated {
		// FetchCurrentUser self-healed via Logout; token is already gone.
		return Result{Error: "Session could not be established"}
	}

	s.notify.Success("Logged in successfully!")
	s.events.Publish(ctx, "login", s.userID(), nil)
	return Result{Success: true}
}

// Logout revokes the token best-effort and always leaves the client logged
// out, even when the revocation call fails. It never returns an error.
func (s *Service) Logout(ctx context.Context) {
	userID := s.userID()
	if s.Token() != "" {
		if err := s.api.Do(ctx, http.MethodDelete, "/logout", nil, nil); err != nil {
			s.log.Warn("logout_revocation_failed", "error", err)
		}
	}
	s.clearLocal(ctx)
	s.notify.Success("Logged out successfully!")
	s.events.Publish(ctx, "logout", userID, nil)
}

// UpdateProfile patches username/email (and optionally the password). On
// success the new values are merged into the in-memory user; the token is
// untouched.
func (s *Service) UpdateProfile(ctx context.Context, username, email, currentPassword, newPassword string) Result {
	if username == "" || email == "" {
		msg := "Username and email are required"
		s.notify.Error(msg)
		return Result{Error: msg}
	}

	var resp struct {
		Success string `json:"success"`
	}
	body := map[string]string{
		"username":    username,
		"email":       email,
		"password":    currentPassword,
		"newPassword": newPassword,
	}
	if err := s.api.Do(ctx, http.MethodPatch, "/update_user", body, &resp); err != nil {
		if api.IsUnauthorized(err) {
			s.Logout(ctx)
		}
		msg := api.UserMessage(err)
		s.notify.Error(msg)
		return Result{Error: msg}
	}

	s.mu.Lock()
	if s.currentUser != nil {
		s.currentUser.Username = username
		s.currentUser.Email = email
	}
	s.mu.Unlock()

	if resp.Success == "" {
		resp.Success = "Profile updated successfully!"
	}
	s.notify.Success(resp.Success)
	return Result{Success: true}
}

// DeleteProfile removes the account server-side, then clears the session
// exactly like Logout but without a revocation round trip.
func (s *Service) DeleteProfile(ctx context.Context) error {
	userID := s.userID()
	var resp struct {
		Success string `json:"success"`
	}
	if err := s.api.Do(ctx, http.MethodDelete, "/delete_user_profile", nil, &resp); err != nil {
		s.notify.Error(api.UserMessage(err))
		return err
	}

	s.clearLocal(ctx)
	if resp.Success == "" {
		resp.Success = "Profile deleted successfully!"
	}
	s.notify.Success(resp.Success)
	s.events.Publish(ctx, "profile_deleted", userID, nil)
	return nil
}

// FetchCurrentUser re-derives the user record from the token. No token means
// no network call: the user is simply cleared. A 401 (or an already expired
// token) triggers Logout so a stale session heals itself.
func (s *Service) FetchCurrentUser(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		s.setUser(ctx, nil, Anonymous)
		return nil
	}
	if Expired(token) {
		s.log.Info("token expired, logging out")
		s.Logout(ctx)
		return nil
	}

	var u models.User
	if err := s.api.Get(ctx, "/current_user", &u); err != nil {
		if api.IsUnauthorized(err) {
			s.Logout(ctx)
			return nil
		}
		return err
	}

	s.setUser(ctx, &u, Authenticated)
	return nil
}

func (s *Service) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.api.SetToken(token)
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Service) setUser(ctx context.Context, u *models.User, state State) {
	s.mu.Lock()
	s.currentUser = u
	s.state = state
	callbacks := make([]func(context.Context, *models.User), len(s.onUserChange))
	copy(callbacks, s.onUserChange)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(ctx, u)
	}
}

// clearLocal drops every piece of local session state: persisted token,
// in-memory token and user.
func (s *Service) clearLocal(ctx context.Context) {
	if err := s.store.Clear(); err != nil {
		s.log.Error("token_clear_failed", "error", err)
	}
	s.setToken("")
	s.setUser(ctx, nil, Anonymous)
}

func (s *Service) userID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return 0
	}
	return s.currentUser.ID
}
