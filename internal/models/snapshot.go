package models

import "slices"

// AppData is the user's whole local application state.
type AppData struct {
	UserPlan           *UserPlan           `json:"userPlan"`
	UserProfile        *UserProfile        `json:"userProfile"`
	PrayerSessions     []PrayerSession     `json:"prayerSessions"`
	BibleSessions      []BibleSession      `json:"bibleSessions"`
	MeditationSessions []MeditationSession `json:"meditationSessions"`
	GameScores         []GameScore         `json:"gameScores"`
}

// Clone returns a deep copy, so callers can hand out data without sharing
// backing arrays with the state container.
func (d AppData) Clone() AppData {
	out := AppData{
		PrayerSessions:     slices.Clone(d.PrayerSessions),
		BibleSessions:      slices.Clone(d.BibleSessions),
		MeditationSessions: slices.Clone(d.MeditationSessions),
		GameScores:         slices.Clone(d.GameScores),
	}
	if d.UserPlan != nil {
		p := *d.UserPlan
		out.UserPlan = &p
	}
	if d.UserProfile != nil {
		p := *d.UserProfile
		out.UserProfile = &p
	}
	return out
}

// RecordCount is the number of collection records, singletons excluded.
func (d AppData) RecordCount() int {
	return len(d.PrayerSessions) + len(d.BibleSessions) + len(d.MeditationSessions) + len(d.GameScores)
}

// CloudSnapshot is the single remote blob stored per user. It is
// overwritten wholesale on every push.
type CloudSnapshot struct {
	AppData
	LastSync int64 `json:"lastSync"`
}
