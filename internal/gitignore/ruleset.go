package gitignore

import (
	"sync/atomic"
)

// generations hands out RuleSet ids. Zero is never used.
var generations atomic.Uint64

// RuleSet is the ordered, immutable result of compiling one ignore file.
// It is safe to share between any number of goroutines. A changed file is
// compiled into a new RuleSet; an existing one is never modified.
type RuleSet struct {
	rules      []Rule
	warnings   []Warning
	generation uint64
}

func newRuleSet(rules []Rule, warnings []Warning) *RuleSet {
	return &RuleSet{
		rules:      rules,
		warnings:   warnings,
		generation: generations.Add(1),
	}
}

// Empty returns a RuleSet with no rules. Nothing is ignored by it.
func Empty() *RuleSet {
	return newRuleSet(nil, nil)
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Rule returns the rule with the given SourceOrder.
func (rs *RuleSet) Rule(i int) Rule {
	return rs.rules[i]
}

// Rules returns a copy of the compiled rules in source order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil || len(rs.rules) == 0 {
		return nil
	}
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Warnings returns a copy of the compile warnings.
func (rs *RuleSet) Warnings() []Warning {
	if rs == nil || len(rs.warnings) == 0 {
		return nil
	}
	out := make([]Warning, len(rs.warnings))
	copy(out, rs.warnings)
	return out
}

// Generation identifies this RuleSet among all RuleSets compiled by the
// process. Caches key on it so a reloaded file never serves stale verdicts.
func (rs *RuleSet) Generation() uint64 {
	if rs == nil {
		return 0
	}
	return rs.generation
}

// Store holds the current RuleSet for a rule file.
// Readers take a snapshot with Load and keep using it for as long as they
// like; Swap publishes a freshly compiled RuleSet without disturbing them.
type Store struct {
	current atomic.Pointer[RuleSet]
}

// NewStore creates a Store holding rs. A nil rs is replaced by Empty().
func NewStore(rs *RuleSet) *Store {
	s := &Store{}
	if rs == nil {
		rs = Empty()
	}
	s.current.Store(rs)
	return s
}

// Load returns the current snapshot.
func (s *Store) Load() *RuleSet {
	return s.current.Load()
}

// Swap publishes rs and returns the previous snapshot.
func (s *Store) Swap(rs *RuleSet) *RuleSet {
	if rs == nil {
		rs = Empty()
	}
	return s.current.Swap(rs)
}
