package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/habitkeeper/internal/client/syncengine"
	"github.com/dmitrijs2005/habitkeeper/internal/models"
)

const dateLayout = "2006-01-02 15:04"

func fmtMillis(ms int64) string {
	return time.UnixMilli(ms).Format(dateLayout)
}

func (a *App) Pray(ctx context.Context) error {
	minutes, err := GetInt(a.reader, "Minutes prayed", a.out)
	if err != nil {
		return err
	}
	kind, err := getSimpleText(a.reader, "Kind (optional)", a.out)
	if err != nil {
		return err
	}
	notes, err := getSimpleText(a.reader, "Notes (optional)", a.out)
	if err != nil {
		return err
	}

	p, err := a.habits.LogPrayer(ctx, time.Duration(minutes)*time.Minute, kind, notes)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Prayer session %s saved.\n", p.ID)
	return nil
}

func (a *App) Read(ctx context.Context) error {
	book, err := getSimpleText(a.reader, "Book", a.out)
	if err != nil {
		return err
	}
	if book == "" {
		return errors.New("book is required")
	}
	chapter, err := GetInt(a.reader, "Chapter", a.out)
	if err != nil {
		return err
	}
	verses, err := GetInt(a.reader, "Verses read", a.out)
	if err != nil {
		return err
	}
	minutes, err := GetInt(a.reader, "Minutes spent", a.out)
	if err != nil {
		return err
	}

	b, err := a.habits.LogReading(ctx, book, chapter, verses, time.Duration(minutes)*time.Minute)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reading session %s saved.\n", b.ID)
	return nil
}

func (a *App) Meditate(ctx context.Context) error {
	minutes, err := GetInt(a.reader, "Minutes meditated", a.out)
	if err != nil {
		return err
	}
	technique, err := getSimpleText(a.reader, "Technique (optional)", a.out)
	if err != nil {
		return err
	}

	m, err := a.habits.LogMeditation(ctx, time.Duration(minutes)*time.Minute, technique)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Meditation session %s saved.\n", m.ID)
	return nil
}

func (a *App) Score(ctx context.Context) error {
	game, err := getSimpleText(a.reader, "Game", a.out)
	if err != nil {
		return err
	}
	if game == "" {
		return errors.New("game is required")
	}
	score, err := GetInt(a.reader, "Score", a.out)
	if err != nil {
		return err
	}

	g, err := a.habits.RecordScore(ctx, game, score)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Score %s saved.\n", g.ID)
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Display name", a.out)
	if err != nil {
		return err
	}
	tz, err := getSimpleText(a.reader, "Timezone (optional)", a.out)
	if err != nil {
		return err
	}
	if err := a.habits.SetProfile(ctx, name, tz); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile saved.")
	return nil
}

func (a *App) Plan(ctx context.Context) error {
	prayer, err := GetInt(a.reader, "Daily prayer minutes", a.out)
	if err != nil {
		return err
	}
	reading, err := GetInt(a.reader, "Daily reading chapters", a.out)
	if err != nil {
		return err
	}
	meditation, err := GetInt(a.reader, "Daily meditation minutes", a.out)
	if err != nil {
		return err
	}
	if err := a.habits.SetPlan(ctx, prayer, reading, meditation); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Plan saved.")
	return nil
}

var deleteKinds = map[string]models.EntityType{
	"prayer":     models.EntityPrayerSession,
	"reading":    models.EntityBibleSession,
	"meditation": models.EntityMeditationSession,
	"score":      models.EntityGameScore,
}

func (a *App) Delete(ctx context.Context) error {
	kind, err := getSimpleText(a.reader, "Kind (prayer, reading, meditation, score)", a.out)
	if err != nil {
		return err
	}
	entity, ok := deleteKinds[strings.ToLower(kind)]
	if !ok {
		return fmt.Errorf("unknown kind %q", kind)
	}
	id, err := getSimpleText(a.reader, "Record id", a.out)
	if err != nil {
		return err
	}
	if id == "" {
		return errors.New("id is required")
	}

	if err := a.habits.Delete(ctx, entity, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) List(ctx context.Context) error {
	d := a.habits.Data()
	models.SortByRecency(d.PrayerSessions)
	models.SortByRecency(d.BibleSessions)
	models.SortByRecency(d.MeditationSessions)
	models.SortByRecency(d.GameScores)

	if d.UserProfile != nil {
		fmt.Fprintf(a.out, "Profile: %s %s\n", d.UserProfile.DisplayName, d.UserProfile.Timezone)
	}
	if d.UserPlan != nil {
		fmt.Fprintf(a.out, "Plan: pray %d min, read %d ch, meditate %d min per day\n",
			d.UserPlan.DailyPrayerMinutes, d.UserPlan.DailyReadingChapters, d.UserPlan.DailyMeditationMinutes)
	}
	if d.RecordCount() == 0 {
		fmt.Fprintln(a.out, "No records yet.")
		return nil
	}

	for _, p := range d.PrayerSessions {
		fmt.Fprintf(a.out, "prayer      %s  %s  %d min %s\n", p.ID, fmtMillis(p.Date), p.DurationSeconds/60, p.Kind)
	}
	for _, b := range d.BibleSessions {
		fmt.Fprintf(a.out, "reading     %s  %s  %s %d (%d verses)\n", b.ID, fmtMillis(b.Date), b.Book, b.Chapter, b.VersesRead)
	}
	for _, m := range d.MeditationSessions {
		fmt.Fprintf(a.out, "meditation  %s  %s  %d min %s\n", m.ID, fmtMillis(m.Date), m.DurationSeconds/60, m.Technique)
	}
	for _, g := range d.GameScores {
		fmt.Fprintf(a.out, "score       %s  %s  %s %d\n", g.ID, fmtMillis(g.Timestamp), g.Game, g.Score)
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	mode := "offline"
	if a.engine.IsOnline() {
		mode = "online"
	}
	fmt.Fprintf(a.out, "Mode: %s\n", mode)
	fmt.Fprintf(a.out, "Sync: %s\n", a.engine.Status())
	fmt.Fprintf(a.out, "Pending changes: %d\n", a.engine.PendingCount())

	if ms := a.engine.LastSync(); ms > 0 {
		fmt.Fprintf(a.out, "Last sync: %s\n", fmtMillis(ms))
	} else {
		fmt.Fprintln(a.out, "Last sync: never")
	}
	if res, ok := a.engine.LastResult(); ok && !res.Success {
		fmt.Fprintf(a.out, "Last error: %s\n", res.Error)
	}
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	res := a.engine.ForceSync(ctx)
	if !res.Success {
		switch {
		case errors.Is(res.Err, syncengine.ErrNoConnection):
			return errors.New("server is unreachable, changes stay queued")
		case errors.Is(res.Err, syncengine.ErrAlreadyInProgress):
			fmt.Fprintln(a.out, "A sync is already running.")
			return nil
		}
		return res.Err
	}
	fmt.Fprintf(a.out, "Synced at %s.\n", res.SyncedAt.Format(dateLayout))
	return nil
}
