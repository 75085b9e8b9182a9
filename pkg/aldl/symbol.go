package aldl

import (
	"fmt"
	"strings"
)

// Symbol is the classification of one bit period.
type Symbol uint8

// Symbols. The zero value is Ambiguous so an unfilled window never syncs.
const (
	Ambiguous Symbol = iota
	Zero
	One
)

// String implements fmt.Stringer.
func (s Symbol) String() string {
	switch s {
	case Zero:
		return "0"
	case One:
		return "1"
	default:
		return "?"
	}
}

// FormatSymbols renders symbols as a string of 0, 1 and ?.
func FormatSymbols(syms []Symbol) string {
	var b strings.Builder
	b.Grow(len(syms))
	for _, s := range syms {
		b.WriteString(s.String())
	}
	return b.String()
}

// ParseSymbols parses the text form produced by FormatSymbols.
// Whitespace, '_' and '|' are ignored so frames can be written grouped.
func ParseSymbols(str string) ([]Symbol, error) {
	syms := make([]Symbol, 0, len(str))
	for n, ch := range str {
		switch ch {
		case '0':
			syms = append(syms, Zero)
		case '1':
			syms = append(syms, One)
		case '?', 'x', 'X':
			syms = append(syms, Ambiguous)
		case ' ', '\t', '\n', '_', '|':
		default:
			return nil, fmt.Errorf("invalid symbol %q at %d", ch, n)
		}
	}
	return syms, nil
}
