package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestApply_CreateIsIdempotent(t *testing.T) {
	var d AppData
	item := MutationQueueItem{
		ID:         "prayerSession_1_ab",
		EntityType: EntityPrayerSession,
		Operation:  OperationCreate,
		Payload:    mustJSON(t, PrayerSession{ID: "p1", Date: 100, DurationSeconds: 60}),
	}

	changed, err := d.Apply(item)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = d.Apply(item)
	require.NoError(t, err)
	assert.False(t, changed, "redelivery with the same timestamp is a no-op")
	require.Len(t, d.PrayerSessions, 1)
	assert.Equal(t, "p1", d.PrayerSessions[0].ID)
}

func TestApply_CreateDoesNotOverwriteNewer(t *testing.T) {
	d := AppData{GameScores: []GameScore{{ID: "g1", Timestamp: 200, Score: 10}}}

	changed, err := d.Apply(MutationQueueItem{
		EntityType: EntityGameScore,
		Operation:  OperationCreate,
		Payload:    mustJSON(t, GameScore{ID: "g1", Timestamp: 100, Score: 99}),
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 10, d.GameScores[0].Score)
}

func TestApply_UpdateWinsOnTie(t *testing.T) {
	d := AppData{BibleSessions: []BibleSession{{ID: "b1", Date: 100, Book: "John", Chapter: 1}}}

	changed, err := d.Apply(MutationQueueItem{
		EntityType: EntityBibleSession,
		Operation:  OperationUpdate,
		Payload:    mustJSON(t, BibleSession{ID: "b1", Date: 100, Book: "John", Chapter: 2}),
	})
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, d.BibleSessions, 1)
	assert.Equal(t, 2, d.BibleSessions[0].Chapter)
}

func TestApply_KeepsCollectionsNewestFirst(t *testing.T) {
	var d AppData
	for _, s := range []MeditationSession{{ID: "a", Date: 1}, {ID: "c", Date: 3}, {ID: "b", Date: 2}} {
		_, err := d.Apply(MutationQueueItem{
			EntityType: EntityMeditationSession,
			Operation:  OperationCreate,
			Payload:    mustJSON(t, s),
		})
		require.NoError(t, err)
	}

	ids := []string{d.MeditationSessions[0].ID, d.MeditationSessions[1].ID, d.MeditationSessions[2].ID}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestApply_Delete(t *testing.T) {
	d := AppData{PrayerSessions: []PrayerSession{{ID: "p1", Date: 1}, {ID: "p2", Date: 2}}}
	item := MutationQueueItem{
		EntityType: EntityPrayerSession,
		Operation:  OperationDelete,
		Payload:    json.RawMessage(`{"id":"p1"}`),
	}

	changed, err := d.Apply(item)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, d.PrayerSessions, 1)
	assert.Equal(t, "p2", d.PrayerSessions[0].ID)

	changed, err = d.Apply(item)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApply_Singletons(t *testing.T) {
	var d AppData

	_, err := d.Apply(MutationQueueItem{
		EntityType: EntityUserPlan,
		Operation:  OperationCreate,
		Payload:    mustJSON(t, UserPlan{DailyPrayerMinutes: 10, UpdatedAt: 5}),
	})
	require.NoError(t, err)
	require.NotNil(t, d.UserPlan)

	changed, err := d.Apply(MutationQueueItem{
		EntityType: EntityUserPlan,
		Operation:  OperationUpdate,
		Payload:    mustJSON(t, UserPlan{DailyPrayerMinutes: 20, UpdatedAt: 4}),
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 10, d.UserPlan.DailyPrayerMinutes)

	_, err = d.Apply(MutationQueueItem{
		EntityType: EntityUserProfile,
		Operation:  OperationUpdate,
		Payload:    mustJSON(t, UserProfile{DisplayName: "Ann", UpdatedAt: 1}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", d.UserProfile.DisplayName)

	changed, err = d.Apply(MutationQueueItem{EntityType: EntityUserPlan, Operation: OperationDelete})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, d.UserPlan)
}

func TestApply_Errors(t *testing.T) {
	var d AppData

	_, err := d.Apply(MutationQueueItem{EntityType: "habit", Operation: OperationCreate})
	require.ErrorIs(t, err, common.ErrorUnknownEntityType)

	_, err = d.Apply(MutationQueueItem{EntityType: EntityGameScore, Operation: "upsert"})
	require.ErrorIs(t, err, common.ErrorUnknownOperation)

	_, err = d.Apply(MutationQueueItem{EntityType: EntityGameScore, Operation: OperationCreate, Payload: json.RawMessage(`{`)})
	require.ErrorIs(t, err, common.ErrorInvalidPayload)

	_, err = d.Apply(MutationQueueItem{EntityType: EntityGameScore, Operation: OperationCreate, Payload: json.RawMessage(`{"score":1}`)})
	require.ErrorIs(t, err, common.ErrorInvalidPayload)

	_, err = d.Apply(MutationQueueItem{EntityType: EntityGameScore, Operation: OperationDelete, Payload: json.RawMessage(`{}`)})
	require.ErrorIs(t, err, common.ErrorInvalidPayload)
}

func TestNewMutationID_Format(t *testing.T) {
	id := NewMutationID(EntityPrayerSession, 1700000000000)
	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "prayerSession", parts[0])
	assert.Equal(t, "1700000000000", parts[1])
	assert.Len(t, parts[2], 8)

	assert.NotEqual(t, id, NewMutationID(EntityPrayerSession, 1700000000000))
}

func TestAppData_CloneIsDeep(t *testing.T) {
	d := AppData{
		UserPlan:       &UserPlan{DailyPrayerMinutes: 1},
		PrayerSessions: []PrayerSession{{ID: "p1"}},
	}
	c := d.Clone()
	c.UserPlan.DailyPrayerMinutes = 99
	c.PrayerSessions[0].ID = "changed"

	assert.Equal(t, 1, d.UserPlan.DailyPrayerMinutes)
	assert.Equal(t, "p1", d.PrayerSessions[0].ID)
	assert.Equal(t, 1, d.RecordCount())
}

func TestCloudSnapshot_JSONIsFlat(t *testing.T) {
	s := CloudSnapshot{AppData: AppData{GameScores: []GameScore{{ID: "g"}}}, LastSync: 42}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"lastSync":42`)
	assert.Contains(t, string(b), `"gameScores":[{"id":"g"`)
	assert.Contains(t, string(b), `"userPlan":null`)
}
