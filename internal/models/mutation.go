package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
)

// EntityType names a record kind a mutation applies to.
type EntityType string

const (
	EntityPrayerSession     EntityType = "prayerSession"
	EntityBibleSession      EntityType = "bibleSession"
	EntityMeditationSession EntityType = "meditationSession"
	EntityGameScore         EntityType = "gameScore"
	EntityUserProfile       EntityType = "userProfile"
	EntityUserPlan          EntityType = "userPlan"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityPrayerSession, EntityBibleSession, EntityMeditationSession,
		EntityGameScore, EntityUserProfile, EntityUserPlan:
		return true
	}
	return false
}

type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

func (o Operation) Valid() bool {
	switch o {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// MutationQueueItem is one local change waiting for delivery to the
// remote store.
type MutationQueueItem struct {
	ID         string          `json:"id"`
	EntityType EntityType      `json:"entityType"`
	Operation  Operation       `json:"operation"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt int64           `json:"enqueuedAt"`
	RetryCount int             `json:"retryCount"`
}

// NewMutationID builds "<type>_<enqueuedAt>_<random>".
func NewMutationID(t EntityType, enqueuedAt int64) string {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		suffix = "00000000"
	}
	return fmt.Sprintf("%s_%d_%s", t, enqueuedAt, suffix)
}

// Validate checks the envelope fields; the payload is checked by Apply.
func (m MutationQueueItem) Validate() error {
	if !m.EntityType.Valid() {
		return fmt.Errorf("%w: %q", common.ErrorUnknownEntityType, m.EntityType)
	}
	if !m.Operation.Valid() {
		return fmt.Errorf("%w: %q", common.ErrorUnknownOperation, m.Operation)
	}
	return nil
}
