// Package models defines the records HabitKeeper synchronizes, the cloud
// snapshot that carries them, and the mutation items queued while offline.
// The types are shared by client and server and travel as JSON.
package models

import "slices"

// Record is implemented by every synchronizable record kind. RecordID is
// assigned by the author at creation time; Recency is the epoch-millis
// timestamp used for last-writer-wins.
type Record interface {
	RecordID() string
	Recency() int64
}

type PrayerSession struct {
	ID              string `json:"id"`
	Date            int64  `json:"date"`
	DurationSeconds int    `json:"durationSeconds"`
	Kind            string `json:"kind,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func (p PrayerSession) RecordID() string { return p.ID }
func (p PrayerSession) Recency() int64   { return p.Date }

type BibleSession struct {
	ID              string `json:"id"`
	Date            int64  `json:"date"`
	Book            string `json:"book"`
	Chapter         int    `json:"chapter"`
	VersesRead      int    `json:"versesRead,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

func (b BibleSession) RecordID() string { return b.ID }
func (b BibleSession) Recency() int64   { return b.Date }

type MeditationSession struct {
	ID              string `json:"id"`
	Date            int64  `json:"date"`
	DurationSeconds int    `json:"durationSeconds"`
	Technique       string `json:"technique,omitempty"`
}

func (m MeditationSession) RecordID() string { return m.ID }
func (m MeditationSession) Recency() int64   { return m.Date }

// GameScore uses Timestamp rather than Date as its recency signal.
type GameScore struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Game      string `json:"game"`
	Score     int    `json:"score"`
}

func (g GameScore) RecordID() string { return g.ID }
func (g GameScore) Recency() int64   { return g.Timestamp }

// UserPlan is the user's daily targets. At most one per user.
type UserPlan struct {
	DailyPrayerMinutes     int   `json:"dailyPrayerMinutes"`
	DailyReadingChapters   int   `json:"dailyReadingChapters"`
	DailyMeditationMinutes int   `json:"dailyMeditationMinutes"`
	UpdatedAt              int64 `json:"updatedAt"`
}

// UserProfile is display data. At most one per user.
type UserProfile struct {
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone,omitempty"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// SortByRecency orders records newest first. Equal recency falls back to id
// so that the order is deterministic.
func SortByRecency[T Record](records []T) {
	slices.SortStableFunc(records, func(a, b T) int {
		switch {
		case a.Recency() > b.Recency():
			return -1
		case a.Recency() < b.Recency():
			return 1
		case a.RecordID() < b.RecordID():
			return -1
		case a.RecordID() > b.RecordID():
			return 1
		}
		return 0
	})
}
