package psych

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/propjournal/internal/id"
	"github.com/rustyeddy/propjournal/internal/logging"
	"github.com/rustyeddy/propjournal/model"
)

type Store interface {
	CheckIns() ([]model.CheckIn, error)
	SaveCheckIns([]model.CheckIn) error
}

// Journal keeps one check-in per calendar day.
type Journal struct {
	st  Store
	th  Thresholds
	log *logrus.Entry
	now func() time.Time
}

func NewJournal(st Store, log *logrus.Entry) *Journal {
	return &Journal{st: st, th: DefaultThresholds, log: logging.For(log, "psych"), now: time.Now}
}

func (j *Journal) today() string { return j.now().Format(model.DateLayout) }

func validate(c model.CheckIn) error {
	if math.IsNaN(c.SleepHours) || c.SleepHours < 0 || c.SleepHours > 24 {
		return model.Invalid("sleep_hours", "must be between 0 and 24")
	}
	for field, v := range map[string]int{
		"stress_level":    c.StressLevel,
		"home_stress":     c.HomeStress,
		"emotional_state": c.EmotionalState,
		"sleep_quality":   c.SleepQuality,
	} {
		if v < 0 || v > 10 {
			return model.Invalid(field, "%d is outside 0-10", v)
		}
	}
	return nil
}

// SaveCheckIn records today's check-in, replacing any earlier one from
// today.
func (j *Journal) SaveCheckIn(c model.CheckIn) (model.CheckIn, error) {
	if err := validate(c); err != nil {
		return model.CheckIn{}, err
	}
	all, err := j.st.CheckIns()
	if err != nil {
		return model.CheckIn{}, err
	}

	today := j.today()
	kept := all[:0]
	for _, old := range all {
		if old.Date != today {
			kept = append(kept, old)
		}
	}

	c.ID = model.ID(id.New())
	c.Date = today
	c.Timestamp = model.NewTimestamp(j.now())
	if err := j.st.SaveCheckIns(append(kept, c)); err != nil {
		return model.CheckIn{}, err
	}
	j.log.WithFields(logrus.Fields{"date": today, "status": j.th.Assess(c).Status}).Info("check-in saved")
	return c, nil
}

// Today returns today's check-in, or nil.
func (j *Journal) Today() (*model.CheckIn, error) {
	all, err := j.st.CheckIns()
	if err != nil {
		return nil, err
	}
	today := j.today()
	for i := range all {
		if all[i].Date == today {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Clearance scores today's check-in.
func (j *Journal) Clearance() (Clearance, error) {
	c, err := j.Today()
	if err != nil {
		return Clearance{}, err
	}
	return j.th.ClearanceFor(c), nil
}

// History returns check-ins newest first, at most n when n > 0.
func (j *Journal) History(n int) ([]model.CheckIn, error) {
	all, err := j.st.CheckIns()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Date > all[b].Date })
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// Patterns summarises recent check-ins.
type Patterns struct {
	DaysAnalyzed int
	AvgSleep     float64
	AvgStress    float64
	AvgEmotional float64
	RedDays      int
	YellowDays   int
	GreenDays    int
	AlcoholDays  int
	ExerciseDays int
	SleepTrend   string // "improving" or "declining"
}

// Patterns analyses the check-ins of the last days days.
func (j *Journal) Patterns(days int) (Patterns, error) {
	all, err := j.st.CheckIns()
	if err != nil {
		return Patterns{}, err
	}
	cutoff := j.now().AddDate(0, 0, -days).Format(model.DateLayout)

	var recent []model.CheckIn
	for _, c := range all {
		if c.Date >= cutoff {
			recent = append(recent, c)
		}
	}
	sort.SliceStable(recent, func(a, b int) bool { return recent[a].Date < recent[b].Date })
	if len(recent) == 0 {
		return Patterns{}, nil
	}

	var sleep, stress, emotional stats.Float64Data
	p := Patterns{DaysAnalyzed: len(recent)}
	for _, c := range recent {
		sleep = append(sleep, c.SleepHours)
		stress = append(stress, float64(c.StressLevel))
		emotional = append(emotional, float64(c.EmotionalState))
		switch j.th.Assess(c).Status {
		case Red:
			p.RedDays++
		case Yellow:
			p.YellowDays++
		default:
			p.GreenDays++
		}
		if c.AlcoholConsumed {
			p.AlcoholDays++
		}
		if c.ExerciseDone {
			p.ExerciseDays++
		}
	}

	avgSleep, _ := sleep.Mean()
	avgStress, _ := stress.Mean()
	avgEmotional, _ := emotional.Mean()
	p.AvgSleep = round1(avgSleep)
	p.AvgStress = round1(avgStress)
	p.AvgEmotional = round1(avgEmotional)

	p.SleepTrend = "declining"
	if len(recent) > 1 && recent[len(recent)-1].SleepHours > avgSleep {
		p.SleepTrend = "improving"
	}
	return p, nil
}

func round1(v float64) float64 {
	r, _ := stats.Round(v, 1)
	return r
}
