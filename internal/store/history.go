// Package store keeps account records and plan history on top of a
// database.DB, one JSON collection per key.
package store

import (
	"context"
	"time"

	"github.com/franckalain/fitplan/internal/database"
	"github.com/franckalain/fitplan/internal/models"
	"github.com/google/uuid"
)

// History is the append-only plan log. Records are kept newest first.
type History struct {
	db         database.DB
	maxRecords int
	now        func() time.Time
}

// NewHistory returns a history store. maxRecords <= 0 means unbounded;
// otherwise the oldest records are dropped once the cap is exceeded.
func NewHistory(db database.DB, maxRecords int) *History {
	return &History{
		db:         db,
		maxRecords: maxRecords,
		now:        time.Now,
	}
}

// Append stores a new record for a successful generation and returns it.
func (h *History) Append(ctx context.Context, userID string, profile models.UserProfile, plan models.FitnessPlan) (models.AdminRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return models.AdminRecord{}, unavailable("generate id", err)
	}

	record := models.AdminRecord{
		ID:          id.String(),
		UserID:      userID,
		Timestamp:   h.now().UTC().Truncate(time.Millisecond),
		User:        profile,
		Plan:        plan,
		PlanSummary: plan.Stats.GoalDescription,
	}

	err = modify(ctx, h.db, RecordsKey, func(records []models.AdminRecord) ([]models.AdminRecord, error) {
		records = append([]models.AdminRecord{record}, records...)
		if h.maxRecords > 0 && len(records) > h.maxRecords {
			records = records[:h.maxRecords]
		}
		return records, nil
	})
	if err != nil {
		return models.AdminRecord{}, err
	}
	return record, nil
}

// ListAll returns every record, newest first.
func (h *History) ListAll(ctx context.Context) ([]models.AdminRecord, error) {
	return load[models.AdminRecord](ctx, h.db, RecordsKey)
}

// ListByUser returns the records linked to userID, newest first.
func (h *History) ListByUser(ctx context.Context, userID string) ([]models.AdminRecord, error) {
	all, err := h.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.AdminRecord{}
	for _, r := range all {
		if r.UserID != "" && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (h *History) Get(ctx context.Context, id string) (models.AdminRecord, error) {
	all, err := h.ListAll(ctx)
	if err != nil {
		return models.AdminRecord{}, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, nil
		}
	}
	return models.AdminRecord{}, ErrRecordNotFound
}

// ClearAll irreversibly deletes every record.
func (h *History) ClearAll(ctx context.Context) error {
	if err := h.db.Delete(ctx, RecordsKey); err != nil {
		return unavailable("clear "+RecordsKey, err)
	}
	return nil
}
