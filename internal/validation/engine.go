package validation

import (
	"fmt"
	"strings"
	"time"
)

// Rule pairs a rule kind with its parameter. A nil or true Param means the
// predicate is called without a parameter.
type Rule struct {
	Kind  RuleKind
	Param any
}

func (r Rule) hasParam() bool {
	if r.Param == nil {
		return false
	}
	_, isBool := r.Param.(bool)
	return !isBool
}

func Flag(kind RuleKind) Rule { return Rule{Kind: kind, Param: true} }

func With(kind RuleKind, param any) Rule { return Rule{Kind: kind, Param: param} }

// RuleSet is evaluated in order.
type RuleSet []Rule

// FieldRules maps a field name to its rules.
type FieldRules map[string]RuleSet

type Result struct {
	Valid  bool                `json:"isValid"`
	Errors map[string][]string `json:"errors"`

	failed map[string]RuleKind
}

// FirstError returns the message to display next to the field, if any.
func (r Result) FirstError(field string) string {
	if msgs := r.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Failed returns the kind of the rule that rejected field.
func (r Result) Failed(field string) (RuleKind, bool) {
	kind, ok := r.failed[field]
	return kind, ok
}

type Engine struct {
	predicates map[RuleKind]Predicate
	messages   map[RuleKind]string
	now        func() time.Time
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func WithMessage(kind RuleKind, template string) EngineOption {
	return func(e *Engine) {
		e.messages[kind] = template
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		messages: make(map[RuleKind]string, len(defaultMessages)),
		now:      time.Now,
	}
	for k, v := range defaultMessages {
		e.messages[k] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	e.predicates = builtinPredicates(func() time.Time { return e.now() })
	return e
}

// Check evaluates one rule against value. Unknown kinds pass.
func (e *Engine) Check(value string, rule Rule) bool {
	pred, ok := e.predicates[rule.Kind]
	if !ok {
		return true
	}
	if rule.hasParam() {
		return pred(value, rule.Param)
	}
	return pred(value)
}

// Message renders the failure message of rule, substituting {0} with its parameter.
func (e *Engine) Message(rule Rule) string {
	msg := e.messages[rule.Kind]
	if rule.hasParam() {
		msg = strings.ReplaceAll(msg, "{0}", fmt.Sprint(rule.Param))
	}
	return msg
}

// ValidateField stops at the first failing rule.
func (e *Engine) ValidateField(value string, rules RuleSet) []string {
	if rule, failed := e.firstFailure(value, rules); failed {
		return []string{e.Message(rule)}
	}
	return nil
}

func (e *Engine) firstFailure(value string, rules RuleSet) (Rule, bool) {
	for _, rule := range rules {
		if !e.Check(value, rule) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Validate runs every rule set against values. Fields missing from values are skipped.
func (e *Engine) Validate(values map[string]string, rules FieldRules) Result {
	res := Result{Valid: true, Errors: map[string][]string{}, failed: map[string]RuleKind{}}
	for field, set := range rules {
		value, ok := values[field]
		if !ok {
			continue
		}
		if rule, failed := e.firstFailure(value, set); failed {
			res.Errors[field] = []string{e.Message(rule)}
			res.failed[field] = rule.Kind
			res.Valid = false
		}
	}
	return res
}

func BookingFormRules() FieldRules {
	return FieldRules{
		"destination":        {Flag(Required)},
		"departureDate":      {Flag(Required), Flag(Date), Flag(FutureDate)},
		"firstName":          {Flag(Required), With(MinLength, 2), With(MaxLength, 50)},
		"lastName":           {Flag(Required), With(MinLength, 2), With(MaxLength, 50)},
		"email":              {Flag(Required), Flag(Email)},
		"phone":              {Flag(Required), Flag(Phone)},
		"numberOfPassengers": {Flag(Required), With(Min, 1), With(Max, 10)},
		"accommodation":      {Flag(Required)},
	}
}

func LoginFormRules() FieldRules {
	return FieldRules{
		"email":    {Flag(Required), Flag(Email)},
		"password": {Flag(Required), With(MinLength, 4)},
	}
}

// RegisterFormRules needs the submitted password to check the confirmation field.
func RegisterFormRules(password string) FieldRules {
	return FieldRules{
		"name":            {Flag(Required), With(MaxLength, 50)},
		"email":           {Flag(Required), Flag(Email)},
		"password":        {Flag(Required), With(MinLength, 6)},
		"confirmPassword": {Flag(Required), With(MinLength, 6), With(Match, password)},
	}
}
