package activity

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/Jawher-Sadok/VondraLink/engine/domain"
	"github.com/Jawher-Sadok/VondraLink/pkg/natsutil"
)

// NATS subjects for activity events.
const (
	SubjectSearch = "activity.search"
	SubjectViews  = "activity.views"
	SubjectClear  = "activity.clear"
)

// SearchEvent mirrors a recorded search onto the event bus.
type SearchEvent struct {
	UserID string             `json:"user_id"`
	Entry  domain.SearchEntry `json:"entry"`
}

// ViewsEvent mirrors recorded product views onto the event bus.
type ViewsEvent struct {
	UserID   string                 `json:"user_id"`
	Products []domain.ViewedProduct `json:"products"`
}

// ClearEvent mirrors a history reset onto the event bus.
type ClearEvent struct {
	UserID string `json:"user_id"`
}

// Recorder wraps a Store and mirrors every mutation onto NATS so other
// services can observe user activity. A nil connection disables mirroring.
type Recorder struct {
	store *Store
	nc    *nats.Conn
	log   *slog.Logger
}

// NewRecorder creates a Recorder around store. nc may be nil.
func NewRecorder(store *Store, nc *nats.Conn, log *slog.Logger) *Recorder {
	return &Recorder{store: store, nc: nc, log: log}
}

// Store exposes the underlying store for reads.
func (r *Recorder) Store() *Store { return r.store }

func (r *Recorder) publish(ctx context.Context, subject string, v any) {
	if r.nc == nil {
		return
	}
	if err := natsutil.Publish(ctx, r.nc, subject, v); err != nil {
		r.log.Warn("activity event publish failed", "subject", subject, "error", err)
	}
}

// AddSearch records a search and publishes a SearchEvent.
func (r *Recorder) AddSearch(ctx context.Context, userID, query, mode string, budget float64) {
	r.store.AddSearch(userID, query, mode, budget)

	recent := r.store.RecentSearches(userID, 1)
	if len(recent) == 1 {
		r.publish(ctx, SubjectSearch, SearchEvent{UserID: userID, Entry: recent[0]})
	}
}

// AddViews records product views and publishes a ViewsEvent.
func (r *Recorder) AddViews(ctx context.Context, userID string, products []domain.ViewedProduct) {
	r.store.AddViews(userID, products)
	r.publish(ctx, SubjectViews, ViewsEvent{UserID: userID, Products: products})
}

// Clear drops the user's history and publishes a ClearEvent.
func (r *Recorder) Clear(ctx context.Context, userID string) {
	r.store.Clear(userID)
	r.publish(ctx, SubjectClear, ClearEvent{UserID: userID})
}
