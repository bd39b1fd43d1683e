package model

import "encoding/json"

// CheckIn is the daily psychological check-in, one per calendar day.
type CheckIn struct {
	ID              ID        `json:"id"`
	Date            string    `json:"date"`
	SleepHours      float64   `json:"sleep_hours"`
	SleepQuality    int       `json:"sleep_quality,omitempty"`
	StressLevel     int       `json:"stress_level"`
	HomeStress      int       `json:"home_stress"`
	EmotionalState  int       `json:"emotional_state"`
	AlcoholConsumed bool      `json:"alcohol_consumed"`
	ExerciseDone    bool      `json:"exercise_done"`
	TradingPlan     string    `json:"trading_plan,omitempty"`
	CurrentEmotions string    `json:"current_emotions,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Timestamp       Timestamp `json:"timestamp"`
}

// UnmarshalJSON also reads the alcohol_24h and exercise keys of the older
// check-in form.
func (c *CheckIn) UnmarshalJSON(b []byte) error {
	type plain CheckIn
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var legacy struct {
		Alcohol24h *bool `json:"alcohol_24h"`
		Exercise   *bool `json:"exercise"`
	}
	if err := json.Unmarshal(b, &legacy); err != nil {
		return err
	}
	if legacy.Alcohol24h != nil && *legacy.Alcohol24h {
		p.AlcoholConsumed = true
	}
	if legacy.Exercise != nil && *legacy.Exercise {
		p.ExerciseDone = true
	}
	*c = CheckIn(p)
	return nil
}

// DailyEntry is the plan-and-review note for a trading day.
type DailyEntry struct {
	ID        ID        `json:"id"`
	Date      string    `json:"date"`
	Plan      string    `json:"plan,omitempty"`
	Review    string    `json:"review,omitempty"`
	Lessons   string    `json:"lessons,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}
