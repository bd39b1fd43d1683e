package grade

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/propjournal/rules"
)

// State of a live grading session.
type State int

const (
	Idle State = iota
	Active
	PendingEntry
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case PendingEntry:
		return "pending-entry"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrSessionState = errors.New("invalid session state")
	ErrUnknownRule  = errors.New("unknown rule")
)

// Session holds the checkmarks while a trade setup is being graded live.
//
//	Idle --Start--> Active --CommitToEntry--> PendingEntry --Finish--> Idle
//	                  ^                            |
//	                  +--------CancelEntry---------+
//
// Clear returns to Idle from any state.
type Session struct {
	grader *Grader
	state  State
	model  rules.Model
	checks Checks
	frozen Result
}

func NewSession(g *Grader) *Session {
	if g == nil {
		g = New(nil, nil)
	}
	return &Session{grader: g}
}

func (s *Session) State() State { return s.state }

func (s *Session) Model() rules.Model { return s.model }

// Start begins grading against m with every rule unchecked.
func (s *Session) Start(m rules.Model) error {
	if s.state != Idle {
		return fmt.Errorf("start: %w: session is %s", ErrSessionState, s.state)
	}
	s.model = m
	s.checks = Checks{MustHave: map[string]bool{}, Rules: map[string]bool{}}
	for _, r := range m.MustHave {
		s.checks.MustHave[r.ID] = false
	}
	for _, id := range m.Keys() {
		if _, must := s.checks.MustHave[id]; !must {
			s.checks.Rules[id] = false
		}
	}
	s.state = Active
	return nil
}

// Toggle flips one checkmark and returns its new value.
func (s *Session) Toggle(id string) (bool, error) {
	if s.state != Active {
		return false, fmt.Errorf("toggle: %w: session is %s", ErrSessionState, s.state)
	}
	if v, ok := s.checks.MustHave[id]; ok {
		s.checks.MustHave[id] = !v
		return !v, nil
	}
	if v, ok := s.checks.Rules[id]; ok {
		s.checks.Rules[id] = !v
		return !v, nil
	}
	return false, fmt.Errorf("toggle: %w %q", ErrUnknownRule, id)
}

// Checks returns a copy of the current checkmarks.
func (s *Session) Checks() Checks { return s.checks.Clone() }

// Current grades the checkmarks as they stand. In PendingEntry it returns
// the frozen result.
func (s *Session) Current() (Result, error) {
	switch s.state {
	case Active:
		return s.grader.Evaluate(s.model, s.checks), nil
	case PendingEntry:
		return s.frozen, nil
	}
	return Result{}, fmt.Errorf("grade: %w: session is %s", ErrSessionState, s.state)
}

// CommitToEntry freezes the grade so the trade form can be filled in.
func (s *Session) CommitToEntry() (Result, error) {
	if s.state != Active {
		return Result{}, fmt.Errorf("commit: %w: session is %s", ErrSessionState, s.state)
	}
	s.frozen = s.grader.Evaluate(s.model, s.checks)
	s.state = PendingEntry
	return s.frozen, nil
}

// CancelEntry goes back to editing checkmarks.
func (s *Session) CancelEntry() error {
	if s.state != PendingEntry {
		return fmt.Errorf("cancel: %w: session is %s", ErrSessionState, s.state)
	}
	s.state = Active
	return nil
}

// Finish hands back the frozen result and checkmarks for logging the trade
// and resets the session.
func (s *Session) Finish() (Result, Checks, error) {
	if s.state != PendingEntry {
		return Result{}, Checks{}, fmt.Errorf("finish: %w: session is %s", ErrSessionState, s.state)
	}
	res, c := s.frozen, s.checks.Clone()
	s.Clear()
	return res, c, nil
}

// Clear discards everything and returns to Idle.
func (s *Session) Clear() {
	s.state = Idle
	s.model = rules.Model{}
	s.checks = Checks{}
	s.frozen = Result{}
}
