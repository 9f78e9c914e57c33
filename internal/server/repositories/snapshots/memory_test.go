package snapshots

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/habitkeeper/internal/common"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Get(ctx, "u1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	snap := &models.CloudSnapshot{LastSync: 1, AppData: models.AppData{
		UserPlan: &models.UserPlan{DailyPrayerMinutes: 10, UpdatedAt: 1},
	}}
	require.NoError(t, r.Put(ctx, "u1", snap))

	snap.UserPlan.DailyPrayerMinutes = 99
	got, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 10, got.UserPlan.DailyPrayerMinutes)

	boom := errors.New("boom")
	require.ErrorIs(t, r.Update(ctx, "u1", func(s *models.CloudSnapshot) error {
		s.LastSync = 50
		return boom
	}), boom)

	got, err = r.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.LastSync)
}
