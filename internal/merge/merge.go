// Package merge implements the conflict resolution policy used when a
// remote snapshot is reconciled with local state: last writer wins, per
// record, never per field.
package merge

import "github.com/dmitrijs2005/habitkeeper/internal/models"

// Merge combines two same-kind collections. Local records seed the result;
// a remote record is added when its id is unknown locally and replaces the
// local one only when strictly newer. Ties keep the local record. The result
// is ordered newest first. Neither input is modified.
func Merge[T models.Record](local, remote []T) []T {
	byID := make(map[string]T, len(local)+len(remote))
	order := make([]string, 0, len(local)+len(remote))

	for _, rec := range local {
		if _, ok := byID[rec.RecordID()]; !ok {
			order = append(order, rec.RecordID())
		}
		byID[rec.RecordID()] = rec
	}

	for _, rec := range remote {
		existing, ok := byID[rec.RecordID()]
		if !ok {
			order = append(order, rec.RecordID())
			byID[rec.RecordID()] = rec
			continue
		}
		if rec.Recency() > existing.Recency() {
			byID[rec.RecordID()] = rec
		}
	}

	out := make([]T, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	models.SortByRecency(out)
	return out
}

// Snapshot merges every collection of remote into local. Singletons follow
// the same rule using UpdatedAt: the remote value is taken only when local
// has none or the remote one is strictly newer.
func Snapshot(local, remote models.AppData) models.AppData {
	out := models.AppData{
		PrayerSessions:     Merge(local.PrayerSessions, remote.PrayerSessions),
		BibleSessions:      Merge(local.BibleSessions, remote.BibleSessions),
		MeditationSessions: Merge(local.MeditationSessions, remote.MeditationSessions),
		GameScores:         Merge(local.GameScores, remote.GameScores),
	}

	out.UserPlan = local.UserPlan
	if remote.UserPlan != nil && (local.UserPlan == nil || remote.UserPlan.UpdatedAt > local.UserPlan.UpdatedAt) {
		out.UserPlan = remote.UserPlan
	}

	out.UserProfile = local.UserProfile
	if remote.UserProfile != nil && (local.UserProfile == nil || remote.UserProfile.UpdatedAt > local.UserProfile.UpdatedAt) {
		out.UserProfile = remote.UserProfile
	}

	return out.Clone()
}
