// Package grade resolves trade grades from checked rules and maps grades to
// position sizes.
package grade

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/propjournal/internal/logging"
	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/rules"
)

// Checks are the rule checkmarks for one trade, keyed by rule id.
type Checks struct {
	MustHave map[string]bool
	Rules    map[string]bool
}

// MustHaveChecked looks in MustHave first, then Rules, since rule ids are
// unique across sections.
func (c Checks) MustHaveChecked(id string) bool {
	if v, ok := c.MustHave[id]; ok {
		return v
	}
	return c.Rules[id]
}

func (c Checks) RuleChecked(id string) bool {
	if v, ok := c.Rules[id]; ok {
		return v
	}
	return c.MustHave[id]
}

func (c Checks) Clone() Checks {
	out := Checks{MustHave: make(map[string]bool, len(c.MustHave)), Rules: make(map[string]bool, len(c.Rules))}
	for k, v := range c.MustHave {
		out.MustHave[k] = v
	}
	for k, v := range c.Rules {
		out.Rules[k] = v
	}
	return out
}

// Result is a resolved grade with its sizing.
type Result struct {
	Grade         model.Grade
	Policy        model.SizePolicy
	Strategy      string
	MustHaveMet   int
	MustHaveTotal int
}

// SizeLabel renders the policy the way the journal shows it.
func (r Result) SizeLabel() string {
	return fmt.Sprintf("%g%% drawdown (%s)", r.Policy.DrawdownPct, r.Policy.Label)
}

var (
	noTrade = model.SizePolicy{DrawdownPct: 0, Label: "NO TRADE"}
	unknown = model.SizePolicy{DrawdownPct: 0, Label: "Unknown"}
)

// Grader evaluates rule models against a position-sizing table.
type Grader struct {
	sizing map[model.Grade]model.SizePolicy
	log    *logrus.Entry
}

// New returns a Grader. A nil table uses model.DefaultSizing.
func New(sizing map[model.Grade]model.SizePolicy, log *logrus.Entry) *Grader {
	if sizing == nil {
		sizing = model.DefaultSizing()
	}
	return &Grader{sizing: sizing, log: logging.For(log, "grade")}
}

// Policy looks up the size policy for a grade. F is always NO TRADE and a
// grade missing from the table sizes to zero.
func (g *Grader) Policy(gr model.Grade) model.SizePolicy {
	if gr == model.GradeF {
		return noTrade
	}
	if p, ok := g.sizing[gr]; ok {
		return p
	}
	return unknown
}

// Grade is the two-map form of Evaluate.
func (g *Grader) Grade(m rules.Model, mustHave, checked map[string]bool) (model.Grade, model.SizePolicy) {
	r := g.Evaluate(m, Checks{MustHave: mustHave, Rules: checked})
	return r.Grade, r.Policy
}

// Evaluate resolves the grade for a set of checks. It always returns one of
// A, B, C or F. A model with no rules at all grades C.
func (g *Grader) Evaluate(m rules.Model, c Checks) Result {
	met, total := mustHaveMet(m, c)
	res := Result{MustHaveMet: met, MustHaveTotal: total}

	s, ok := StrategyFor(m.Kind)
	switch {
	case m.Empty():
		res.Grade = model.GradeC
		res.Strategy = "empty"
	case !ok:
		g.log.WithField("kind", m.Kind.String()).Error("no grading strategy for rule model, grading F")
		res.Grade = model.GradeF
		res.Strategy = "none"
	default:
		res.Strategy = s.Name()
		res.Grade = s.Resolve(m, c)
		if !res.Grade.Valid() {
			g.log.WithFields(logrus.Fields{"strategy": s.Name(), "grade": res.Grade}).
				Error("strategy produced an invalid grade, grading F")
			res.Grade = model.GradeF
		}
	}
	res.Policy = g.Policy(res.Grade)
	return res
}
