package reports

import (
	"strings"
	"time"

	"eterno-store/internal/apperr"
	"eterno-store/internal/models"
)

var lookback = map[models.Period]time.Duration{
	models.PeriodWeekly:  7 * 24 * time.Hour,
	models.PeriodMonthly: 30 * 24 * time.Hour,
	models.PeriodYearly:  365 * 24 * time.Hour,
}

// NormalizePeriod accepts weekly, monthly or yearly in any case.
func NormalizePeriod(raw string) (models.Period, error) {
	p := models.Period(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := lookback[p]; !ok {
		return "", apperr.Validation("Invalid reporting period")
	}
	return p, nil
}

// normalizeResetPeriod also accepts overall.
func normalizeResetPeriod(raw string) (models.Period, error) {
	p := models.Period(strings.ToLower(strings.TrimSpace(raw)))
	if p == models.PeriodOverall {
		return p, nil
	}
	return NormalizePeriod(raw)
}

// GetPeriodRange returns the reporting window of period ending at now. After a
// reset the window starts at the reset instant; before any reset it is a
// rolling 7/30/365-day lookback.
func GetPeriodRange(period string, lastReset *time.Time, now time.Time) (time.Time, time.Time, error) {
	p, err := NormalizePeriod(period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if lastReset != nil && !lastReset.IsZero() {
		return *lastReset, now, nil
	}
	return now.Add(-lookback[p]), now, nil
}

// CheckpointView is a checkpoint as returned to clients.
type CheckpointView struct {
	ID                 uint          `json:"id"`
	Period             models.Period `json:"period"`
	LastResetAt        string        `json:"last_reset_at"`
	LastResetAtDisplay string        `json:"last_reset_at_display"`
	ResetAt            time.Time     `json:"-"`
}

func newCheckpointView(cp models.ReportCheckpoint, f Formatter) CheckpointView {
	return CheckpointView{
		ID:                 cp.ID,
		Period:             cp.Period,
		LastResetAt:        f.ISO(cp.LastResetAt),
		LastResetAtDisplay: f.Display(cp.LastResetAt),
		ResetAt:            cp.LastResetAt,
	}
}
