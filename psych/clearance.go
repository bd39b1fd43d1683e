package psych

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/propjournal/model"
)

// Clearance is whether today's state allows trading.
type Clearance struct {
	Cleared      bool
	Status       Status
	Message      string
	RedFlags     []string
	YellowFlags  []string
	Restrictions []string
}

var yellowRestrictions = []string{"Max 1 trade today", "Reduce position sizes by 50%", "No revenge trading"}

// ClearanceFor turns today's check-in, or its absence, into a clearance.
func (th Thresholds) ClearanceFor(today *model.CheckIn) Clearance {
	if today == nil {
		return Clearance{
			Status:   NoCheckIn,
			Message:  "No check-in completed today. Complete your daily check-in before trading.",
			RedFlags: []string{"No daily check-in completed"},
		}
	}
	a := th.Assess(*today)
	c := Clearance{Status: a.Status, RedFlags: a.RedFlags, YellowFlags: a.YellowFlags}
	switch a.Status {
	case Red:
		c.Message = "TRADING BLOCKED - Critical risk factors present"
	case Yellow:
		c.Cleared = true
		c.Message = "PROCEED WITH CAUTION - Multiple risk factors present"
		c.Restrictions = append([]string(nil), yellowRestrictions...)
	default:
		c.Cleared = true
		c.Message = "CLEARED FOR TRADING - All systems go"
	}
	return c
}

// Enforcement decides which clearances block logging a trade.
type Enforcement string

const (
	Soft   Enforcement = "soft"   // advisory only
	Medium Enforcement = "medium" // RED blocks
	Strict Enforcement = "strict" // RED and a missing check-in block
)

var ErrTradingBlocked = errors.New("trading blocked")

// ParseEnforcement reads an enforcement level; empty is Soft.
func ParseEnforcement(s string) (Enforcement, error) {
	switch e := Enforcement(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return Soft, nil
	case Soft, Medium, Strict:
		return e, nil
	}
	return "", model.Invalid("enforcement_level", "must be soft, medium or strict, got %q", s)
}

// Check returns ErrTradingBlocked when c blocks trading at this level.
func (e Enforcement) Check(c Clearance) error {
	blocked := false
	switch e {
	case Medium:
		blocked = c.Status == Red
	case Strict:
		blocked = c.Status == Red || c.Status == NoCheckIn
	}
	if blocked {
		return fmt.Errorf("%w: %s at %s enforcement: %s", ErrTradingBlocked, c.Status, e, strings.Join(c.RedFlags, "; "))
	}
	return nil
}
