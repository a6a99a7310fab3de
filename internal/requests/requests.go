package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/speakerhub/frontend/internal/api"
	"github.com/speakerhub/frontend/internal/events"
	"github.com/speakerhub/frontend/internal/models"
	"github.com/speakerhub/frontend/internal/notify"
	"github.com/speakerhub/frontend/internal/session"
)

// ErrNoSession means the store was built without a session service, which is
// a wiring bug, not a runtime condition.
var ErrNoSession = errors.New("requests: session service is required")

var ErrNotSignedIn = errors.New("requests: sign in first")

// Store holds the purchase-request collection. The collection is always
// scoped to exactly one of: all requests (admin) or the current user's own
// requests. Changing users discards the old scope before anything is fetched,
// so entries from two scopes never coexist.
type Store struct {
	session *session.Service
	api     *api.Client
	notify  *notify.Center
	events  *events.Producer
	log     *slog.Logger

	mu    sync.RWMutex
	items []models.Request
}

func New(sess *session.Service, client *api.Client, center *notify.Center, producer *events.Producer, log *slog.Logger) (*Store, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		session: sess,
		api:     client,
		notify:  center,
		events:  producer,
		log:     log,
	}
	sess.OnUserChange(s.SetUser)
	return s, nil
}

// Items returns a snapshot of the collection.
func (s *Store) Items() []models.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Request, len(s.items))
	copy(out, s.items)
	return out
}

// SetUser re-derives the scope for user: all requests for an admin, own
// requests otherwise, an empty collection (without a network call) when
// nobody is signed in.
func (s *Store) SetUser(ctx context.Context, user *models.User) {
	s.replace(nil)
	if user == nil {
		return
	}

	path := "/requests/user"
	if user.IsAdmin {
		path = "/requests"
	}

	var items []models.Request
	if err := s.api.Get(ctx, path, &items); err != nil {
		if api.IsNotFound(err) {
			// The backend answers 404 for an empty list.
			return
		}
		s.log.Warn("request_fetch_failed", "scope", path, "error", err)
		s.notify.Error(api.UserMessage(err))
		return
	}
	s.replace(items)
}

// Refresh re-fetches the collection for whoever is currently signed in.
func (s *Store) Refresh(ctx context.Context) {
	s.SetUser(ctx, s.session.CurrentUser())
}

// Create posts a new request and appends one optimistic entry: submitted
// fields, status pending, today's date, the current user's id. Fields the
// server echoes back authoritatively win over the optimistic ones.
func (s *Store) Create(ctx context.Context, speakerName, manufacturer, reason string) (*models.Request, error) {
	user := s.session.CurrentUser()
	if user == nil {
		s.notify.Error("Please sign in to create a request")
		return nil, ErrNotSignedIn
	}
	if speakerName == "" || manufacturer == "" {
		s.notify.Error("Speaker name and manufacturer are required")
		return nil, errors.New("requests: speaker name and manufacturer are required")
	}

	body := map[string]string{
		"speaker_name": speakerName,
		"manufacturer": manufacturer,
		"reason":       reason,
	}
	var created models.Request
	if err := s.api.Post(ctx, "/requests/create_request", body, &created); err != nil {
		return nil, s.fail(ctx, err, "Failed to create request")
	}

	entry := models.Request{
		ID:           created.ID,
		SpeakerName:  speakerName,
		Manufacturer: manufacturer,
		Reason:       reason,
		Status:       models.StatusPending,
		RequestDate:  time.Now().UTC().Format(time.RFC3339),
		UserID:       user.ID,
	}
	// Reconcile with whatever the server confirmed.
	if created.Status != "" {
		entry.Status = created.Status
	}
	if created.RequestDate != "" {
		entry.RequestDate = created.RequestDate
	}
	if created.UserID != 0 {
		entry.UserID = created.UserID
	}

	s.mu.Lock()
	s.items = append(s.items, entry)
	s.mu.Unlock()

	s.notify.Success("Request created successfully!")
	s.events.Publish(ctx, "request_created", user.ID, map[string]any{"speaker_name": speakerName})
	return &entry, nil
}

// Update changes a request's reason. Only the matching entry's reason is
// patched locally.
func (s *Store) Update(ctx context.Context, id uint, reason string) error {
	path := fmt.Sprintf("/requests/%d", id)
	if err := s.api.Do(ctx, http.MethodPut, path, map[string]string{"reason": reason}, nil); err != nil {
		return s.fail(ctx, err, "Failed to update request")
	}

	s.patch(id, func(r *models.Request) { r.Reason = reason })
	s.notify.Success("Request updated successfully!")
	return nil
}

// UpdateStatus is the admin path: approve or reject one request, leaving
// every other entry untouched.
func (s *Store) UpdateStatus(ctx context.Context, id uint, status models.RequestStatus) error {
	if !status.Valid() {
		s.notify.Error("Invalid request status")
		return fmt.Errorf("requests: invalid status %q", status)
	}
	user := s.session.CurrentUser()
	if user == nil || !user.IsAdmin {
		s.notify.Error("Access denied")
		return errors.New("requests: admin access required")
	}

	path := fmt.Sprintf("/requests/%d/status", id)
	if err := s.api.Do(ctx, http.MethodPut, path, map[string]string{"status": string(status)}, nil); err != nil {
		return s.fail(ctx, err, fmt.Sprintf("Failed to %s request", status))
	}

	s.patch(id, func(r *models.Request) { r.Status = status })
	s.notify.Success(fmt.Sprintf("Request %s successfully!", status))
	return nil
}

// Delete removes one request: admins through the admin route, everyone else
// through the own-request route.
func (s *Store) Delete(ctx context.Context, id uint) error {
	user := s.session.CurrentUser()
	if user == nil {
		s.notify.Error("Please sign in first")
		return ErrNotSignedIn
	}

	path := fmt.Sprintf("/requests/user/%d", id)
	if user.IsAdmin {
		path = fmt.Sprintf("/requests/%d", id)
	}
	if err := s.api.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return s.fail(ctx, err, "Failed to delete request")
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, r := range s.items {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.items = kept
	s.mu.Unlock()

	s.notify.Success("Request deleted successfully!")
	return nil
}

func (s *Store) replace(items []models.Request) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Store) patch(id uint, fn func(*models.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			fn(&s.items[i])
			return
		}
	}
}

// fail surfaces the server's message and hands the error back so the page
// keeps its own pending state (a modal stays open on failure). A 401 also
// heals the session.
func (s *Store) fail(ctx context.Context, err error, fallback string) error {
	if api.IsUnauthorized(err) {
		s.session.Logout(ctx)
	}
	s.notify.Error(api.UserMessageOr(err, fallback))
	return err
}
