package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/client/state"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
	"github.com/google/uuid"
)

// Enqueuer is the part of the mutation queue the habit service needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, entityType models.EntityType, op models.Operation, payload any) (string, error)
}

// HabitService records user activity. Every change is applied to local
// state first and then queued for delivery, so it is visible immediately
// whether or not the server is reachable.
type HabitService struct {
	state *state.Store
	queue Enqueuer
	now   func() time.Time
	newID func() string
}

func NewHabitService(st *state.Store, q Enqueuer) *HabitService {
	return &HabitService{state: st, queue: q, now: time.Now, newID: uuid.NewString}
}

func (h *HabitService) record(ctx context.Context, entityType models.EntityType, op models.Operation, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", entityType, err)
	}

	item := models.MutationQueueItem{EntityType: entityType, Operation: op, Payload: raw}
	if _, err := h.state.Apply(ctx, item); err != nil {
		return fmt.Errorf("apply %s: %w", entityType, err)
	}
	if _, err := h.queue.Enqueue(ctx, entityType, op, json.RawMessage(raw)); err != nil {
		return fmt.Errorf("enqueue %s: %w", entityType, err)
	}
	return nil
}

func (h *HabitService) LogPrayer(ctx context.Context, duration time.Duration, kind, notes string) (models.PrayerSession, error) {
	p := models.PrayerSession{
		ID:              h.newID(),
		Date:            h.now().UnixMilli(),
		DurationSeconds: int(duration.Seconds()),
		Kind:            kind,
		Notes:           notes,
	}
	return p, h.record(ctx, models.EntityPrayerSession, models.OperationCreate, p)
}

func (h *HabitService) LogReading(ctx context.Context, book string, chapter, verses int, duration time.Duration) (models.BibleSession, error) {
	b := models.BibleSession{
		ID:              h.newID(),
		Date:            h.now().UnixMilli(),
		Book:            book,
		Chapter:         chapter,
		VersesRead:      verses,
		DurationSeconds: int(duration.Seconds()),
	}
	return b, h.record(ctx, models.EntityBibleSession, models.OperationCreate, b)
}

func (h *HabitService) LogMeditation(ctx context.Context, duration time.Duration, technique string) (models.MeditationSession, error) {
	m := models.MeditationSession{
		ID:              h.newID(),
		Date:            h.now().UnixMilli(),
		DurationSeconds: int(duration.Seconds()),
		Technique:       technique,
	}
	return m, h.record(ctx, models.EntityMeditationSession, models.OperationCreate, m)
}

func (h *HabitService) RecordScore(ctx context.Context, game string, score int) (models.GameScore, error) {
	g := models.GameScore{
		ID:        h.newID(),
		Timestamp: h.now().UnixMilli(),
		Game:      game,
		Score:     score,
	}
	return g, h.record(ctx, models.EntityGameScore, models.OperationCreate, g)
}

func (h *HabitService) SetProfile(ctx context.Context, displayName, timezone string) error {
	p := models.UserProfile{DisplayName: displayName, Timezone: timezone, UpdatedAt: h.now().UnixMilli()}
	return h.record(ctx, models.EntityUserProfile, models.OperationUpdate, p)
}

func (h *HabitService) SetPlan(ctx context.Context, prayerMinutes, readingChapters, meditationMinutes int) error {
	p := models.UserPlan{
		DailyPrayerMinutes:     prayerMinutes,
		DailyReadingChapters:   readingChapters,
		DailyMeditationMinutes: meditationMinutes,
		UpdatedAt:              h.now().UnixMilli(),
	}
	return h.record(ctx, models.EntityUserPlan, models.OperationUpdate, p)
}

// Delete removes a collection record by id.
func (h *HabitService) Delete(ctx context.Context, entityType models.EntityType, id string) error {
	return h.record(ctx, entityType, models.OperationDelete, struct {
		ID string `json:"id"`
	}{ID: id})
}

// Data returns a copy of the current local data.
func (h *HabitService) Data() models.AppData {
	return h.state.Snapshot()
}
