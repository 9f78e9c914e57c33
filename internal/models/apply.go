package models

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
)

// Apply folds one mutation into d. It is idempotent: applying the same item
// again leaves exactly one record with that id. A create never overwrites a
// record of equal or newer recency; an update also wins on a tie so that
// edits which keep the original date still land. It reports whether d
// changed.
func (d *AppData) Apply(item MutationQueueItem) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, err
	}

	if item.Operation == OperationDelete {
		return d.applyDelete(item)
	}

	allowTie := item.Operation == OperationUpdate

	switch item.EntityType {
	case EntityPrayerSession:
		return applyUpsert(&d.PrayerSessions, item.Payload, allowTie)
	case EntityBibleSession:
		return applyUpsert(&d.BibleSessions, item.Payload, allowTie)
	case EntityMeditationSession:
		return applyUpsert(&d.MeditationSessions, item.Payload, allowTie)
	case EntityGameScore:
		return applyUpsert(&d.GameScores, item.Payload, allowTie)
	case EntityUserPlan:
		var p UserPlan
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return false, fmt.Errorf("%w: %v", common.ErrorInvalidPayload, err)
		}
		if d.UserPlan != nil && !newer(p.UpdatedAt, d.UserPlan.UpdatedAt, allowTie) {
			return false, nil
		}
		d.UserPlan = &p
		return true, nil
	case EntityUserProfile:
		var p UserProfile
		if err := json.Unmarshal(item.Payload, &p); err != nil {
			return false, fmt.Errorf("%w: %v", common.ErrorInvalidPayload, err)
		}
		if d.UserProfile != nil && !newer(p.UpdatedAt, d.UserProfile.UpdatedAt, allowTie) {
			return false, nil
		}
		d.UserProfile = &p
		return true, nil
	}
	return false, fmt.Errorf("%w: %q", common.ErrorUnknownEntityType, item.EntityType)
}

func (d *AppData) applyDelete(item MutationQueueItem) (bool, error) {
	switch item.EntityType {
	case EntityUserPlan:
		changed := d.UserPlan != nil
		d.UserPlan = nil
		return changed, nil
	case EntityUserProfile:
		changed := d.UserProfile != nil
		d.UserProfile = nil
		return changed, nil
	}

	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(item.Payload, &ref); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrorInvalidPayload, err)
	}
	if ref.ID == "" {
		return false, fmt.Errorf("%w: missing id", common.ErrorInvalidPayload)
	}

	switch item.EntityType {
	case EntityPrayerSession:
		return removeRecord(&d.PrayerSessions, ref.ID), nil
	case EntityBibleSession:
		return removeRecord(&d.BibleSessions, ref.ID), nil
	case EntityMeditationSession:
		return removeRecord(&d.MeditationSessions, ref.ID), nil
	case EntityGameScore:
		return removeRecord(&d.GameScores, ref.ID), nil
	}
	return false, fmt.Errorf("%w: %q", common.ErrorUnknownEntityType, item.EntityType)
}

func newer(incoming, existing int64, allowTie bool) bool {
	return incoming > existing || (allowTie && incoming == existing)
}

func applyUpsert[T Record](list *[]T, payload json.RawMessage, allowTie bool) (bool, error) {
	var rec T
	if err := json.Unmarshal(payload, &rec); err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrorInvalidPayload, err)
	}
	if rec.RecordID() == "" {
		return false, fmt.Errorf("%w: missing id", common.ErrorInvalidPayload)
	}

	for i, existing := range *list {
		if existing.RecordID() != rec.RecordID() {
			continue
		}
		if !newer(rec.Recency(), existing.Recency(), allowTie) {
			return false, nil
		}
		(*list)[i] = rec
		SortByRecency(*list)
		return true, nil
	}

	*list = append(*list, rec)
	SortByRecency(*list)
	return true, nil
}

func removeRecord[T Record](list *[]T, id string) bool {
	for i, existing := range *list {
		if existing.RecordID() == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}
