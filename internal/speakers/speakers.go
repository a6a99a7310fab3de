package speakers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/speakerhub/frontend/internal/api"
	"github.com/speakerhub/frontend/internal/events"
	"github.com/speakerhub/frontend/internal/models"
	"github.com/speakerhub/frontend/internal/notify"
	"github.com/speakerhub/frontend/internal/session"
)

// Catalog is the read-mostly speaker client. Search is a client-side
// substring match over already-fetched data; there is no server-side search.
type Catalog struct {
	session *session.Service
	api     *api.Client
	notify  *notify.Center
	events  *events.Producer
	log     *slog.Logger
}

func New(sess *session.Service, client *api.Client, center *notify.Center, producer *events.Producer, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{session: sess, api: client, notify: center, events: producer, log: log}
}

// List fetches speakers, optionally capped by limit (limit <= 0 means all).
func (c *Catalog) List(ctx context.Context, limit int) ([]models.Speaker, error) {
	path := "/speakers"
	if limit > 0 {
		path = fmt.Sprintf("/speakers?limit=%d", limit)
	}
	var items []models.Speaker
	if err := c.api.Get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Catalog) Get(ctx context.Context, id uint) (*models.Speaker, error) {
	var s models.Speaker
	if err := c.api.Get(ctx, fmt.Sprintf("/speakers/%d", id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type CreateSpeakerInput struct {
	ModelName    string  `json:"model_name"`
	Manufacturer string  `json:"manufacturer"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url"`
	Description  string  `json:"description"`
}

// Create adds a speaker through the admin-only form.
func (c *Catalog) Create(ctx context.Context, in CreateSpeakerInput) error {
	user := c.session.CurrentUser()
	if user == nil || !user.IsAdmin {
		c.notify.Error("Access denied")
		return errors.New("speakers: admin access required")
	}
	if in.ModelName == "" || in.Manufacturer == "" {
		c.notify.Error("Model name and manufacturer are required")
		return errors.New("speakers: model name and manufacturer are required")
	}

	if err := c.api.Post(ctx, "/speakers", in, nil); err != nil {
		c.notify.Error(api.UserMessageOr(err, "Failed to add speaker"))
		return err
	}
	c.notify.Success("Speaker added successfully!")
	c.events.Publish(ctx, "speaker_created", user.ID, map[string]any{"model_name": in.ModelName})
	return nil
}

// CreateReview posts one review against a speaker. Both rating and comment
// are required before any network call; the caller refetches the speaker
// afterwards so the aggregate rating reflects the new review.
func (c *Catalog) CreateReview(ctx context.Context, speakerID uint, rating int, comment string) error {
	user := c.session.CurrentUser()
	if user == nil {
		c.notify.Error("Please sign in to submit a review")
		return errors.New("speakers: sign in to submit a review")
	}
	if rating < 1 || rating > 5 || comment == "" {
		c.notify.Error("Please provide both a rating and your review comments")
		return errors.New("speakers: a rating between 1 and 5 and a comment are required")
	}

	body := map[string]any{
		"speaker_id": speakerID,
		"rating":     rating,
		"comment":    comment,
	}
	if err := c.api.Post(ctx, "/reviews/create_review", body, nil); err != nil {
		c.notify.Error(api.UserMessageOr(err, "We couldn't submit your review. Please try again."))
		return err
	}
	c.notify.Success("Thank you for your review!")
	c.events.Publish(ctx, "review_created", user.ID, map[string]any{"speaker_id": speakerID, "rating": rating})
	return nil
}

// Filter matches query against model name and manufacturer, case-insensitive.
func Filter(items []models.Speaker, query string) []models.Speaker {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	out := make([]models.Speaker, 0, len(items))
	for _, s := range items {
		if strings.Contains(strings.ToLower(s.ModelName), query) ||
			strings.Contains(strings.ToLower(s.Manufacturer), query) {
			out = append(out, s)
		}
	}
	return out
}
