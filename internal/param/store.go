// Package param holds the named tunables read by the tornado core. Names are
// case-insensitive; a missing name reads as the zero value.
package param

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/text/cases"
)

var (
	ErrNotFound  = errors.New("variable not found")
	ErrReadOnly  = errors.New("variable is read-only")
	ErrWrongKind = errors.New("variable has a different type")
	ErrBadValue  = errors.New("invalid value")
)

type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	}
	return "unknown"
}

// Value is a tagged union of the supported variable types.
type Value struct {
	Kind Kind
	I    int
	F    float32
	B    bool
	S    string
}

func Int(v int) Value       { return Value{Kind: KindInt, I: v} }
func Float(v float32) Value { return Value{Kind: KindFloat, F: v} }
func Bool(v bool) Value     { return Value{Kind: KindBool, B: v} }
func String(v string) Value { return Value{Kind: KindString, S: v} }

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.I)
	case KindFloat:
		return strconv.FormatFloat(float64(v.F), 'g', -1, 32)
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindString:
		return v.S
	}
	return ""
}

// Var is one registered tunable.
type Var struct {
	Name     string
	Value    Value
	Default  Value
	ReadOnly bool
}

// Store is the process-wide parameter registry. It is owned by the entry
// point and passed to whoever needs it. Game-loop goroutine only.
type Store struct {
	vars map[string]*Var
	fold cases.Caser
}

func NewStore() *Store {
	return &Store{
		vars: make(map[string]*Var, 32),
		fold: cases.Fold(),
	}
}

func (s *Store) key(name string) string { return s.fold.String(name) }

// Register adds (or replaces) a variable; its current value starts at def.
func (s *Store) Register(name string, def Value, readOnly bool) {
	s.vars[s.key(name)] = &Var{Name: name, Value: def, Default: def, ReadOnly: readOnly}
}

// Lookup returns the variable registered under name.
func (s *Store) Lookup(name string) (*Var, bool) {
	v, ok := s.vars[s.key(name)]
	return v, ok
}

func (s *Store) get(name string, kind Kind) (Value, bool) {
	v, ok := s.Lookup(name)
	if !ok || v.Value.Kind != kind {
		return Value{}, false
	}
	return v.Value, true
}

func (s *Store) Int(name string) int {
	v, _ := s.get(name, KindInt)
	return v.I
}

func (s *Store) Float(name string) float32 {
	v, _ := s.get(name, KindFloat)
	return v.F
}

func (s *Store) Bool(name string) bool {
	v, _ := s.get(name, KindBool)
	return v.B
}

func (s *Store) String(name string) string {
	v, _ := s.get(name, KindString)
	return v.S
}

// Set stores val under name. The kind must match the registered kind.
func (s *Store) Set(name string, val Value) error {
	v, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if v.ReadOnly {
		return fmt.Errorf("%q: %w", name, ErrReadOnly)
	}
	if v.Value.Kind != val.Kind {
		return fmt.Errorf("%q is %s: %w", name, v.Value.Kind, ErrWrongKind)
	}
	if val.Kind == KindFloat && !finite(val.F) {
		return fmt.Errorf("%q expects a finite float: %w", name, ErrBadValue)
	}
	v.Value = val
	return nil
}

func (s *Store) SetInt(name string, x int) error       { return s.Set(name, Int(x)) }
func (s *Store) SetFloat(name string, x float32) error { return s.Set(name, Float(x)) }
func (s *Store) SetBool(name string, x bool) error     { return s.Set(name, Bool(x)) }
func (s *Store) SetString(name string, x string) error { return s.Set(name, String(x)) }

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Parse converts raw according to the registered kind of name and stores it.
func (s *Store) Parse(name, raw string) error {
	v, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	var val Value
	switch v.Value.Kind {
	case KindInt:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%q expects an integer: %w", name, ErrBadValue)
		}
		val = Int(i)
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil || !finite(float32(f)) {
			return fmt.Errorf("%q expects a float: %w", name, ErrBadValue)
		}
		val = Float(float32(f))
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%q expects a bool: %w", name, ErrBadValue)
		}
		val = Bool(b)
	default:
		val = String(raw)
	}
	return s.Set(name, val)
}

// Reset restores the default value. Read-only variables never change, so
// resetting one is a no-op.
func (s *Store) Reset(name string) error {
	v, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	v.Value = v.Default
	return nil
}

// Each visits every variable ordered by name.
func (s *Store) Each(fn func(*Var)) {
	keys := make([]string, 0, len(s.vars))
	for k := range s.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(s.vars[k])
	}
}

func (s *Store) Len() int { return len(s.vars) }
