// Package psych scores daily check-ins and gates trading on the result.
package psych

import (
	"fmt"

	"github.com/rustyeddy/propjournal/model"
)

type Status string

const (
	Green     Status = "GREEN"
	Yellow    Status = "YELLOW"
	Red       Status = "RED"
	NoCheckIn Status = "NO_CHECKIN"
)

// Thresholds are the limits past which a check-in raises a red flag.
type Thresholds struct {
	SleepMin      float64
	StressMax     int
	EmotionalMax  int
	HomeStressMax int
}

var DefaultThresholds = Thresholds{SleepMin: 6, StressMax: 7, EmotionalMax: 7, HomeStressMax: 7}

const (
	optimalSleep    = 7
	moderateStress  = 5
	poorSleepRating = 5
	yellowFlagsMax  = 1
)

// Assessment is a scored check-in.
type Assessment struct {
	Status      Status
	RedFlags    []string
	YellowFlags []string
}

// Assess scores a check-in: any red flag is RED, two or more yellow flags
// are YELLOW, anything else is GREEN.
func (th Thresholds) Assess(c model.CheckIn) Assessment {
	var a Assessment
	red := func(format string, args ...any) { a.RedFlags = append(a.RedFlags, fmt.Sprintf(format, args...)) }
	yellow := func(format string, args ...any) { a.YellowFlags = append(a.YellowFlags, fmt.Sprintf(format, args...)) }

	// Older check-ins rated sleep quality instead of logging hours.
	legacySleep := c.SleepHours == 0 && c.SleepQuality > 0

	if c.AlcoholConsumed {
		red("Alcohol consumed in last 24hrs")
	}
	if legacySleep {
		if c.SleepQuality < poorSleepRating {
			red("Poor sleep quality (%d/10)", c.SleepQuality)
		}
	} else if c.SleepHours < th.SleepMin {
		red("Insufficient sleep (%ghrs < %ghrs)", c.SleepHours, th.SleepMin)
	}
	if c.StressLevel > th.StressMax {
		red("Stress level too high (%d/10)", c.StressLevel)
	}
	if c.EmotionalState > th.EmotionalMax {
		red("Emotional state too high (%d/10)", c.EmotionalState)
	}

	if !legacySleep && c.SleepHours < optimalSleep {
		yellow("Below optimal sleep (%ghrs)", c.SleepHours)
	}
	if c.HomeStress > th.HomeStressMax {
		yellow("High home stress (%d/10)", c.HomeStress)
	}
	if !c.ExerciseDone {
		yellow("No exercise/movement today")
	}
	if c.StressLevel >= moderateStress {
		yellow("Moderate stress level (%d/10)", c.StressLevel)
	}

	switch {
	case len(a.RedFlags) > 0:
		a.Status = Red
	case len(a.YellowFlags) > yellowFlagsMax:
		a.Status = Yellow
	default:
		a.Status = Green
	}
	return a
}

// Assess scores a check-in with DefaultThresholds.
func Assess(c model.CheckIn) Assessment { return DefaultThresholds.Assess(c) }
