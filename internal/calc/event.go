package calc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned by ParseKey for labels that map to no event.
var ErrUnknownKey = errors.New("unknown key")

// Kind tags the variant carried by an Event.
type Kind int

const (
	KindDigit Kind = iota + 1
	KindDecimal
	KindToggleSign
	KindPercent
	KindOperator
	KindClear
)

func (k Kind) String() string {
	switch k {
	case KindDigit:
		return "digit"
	case KindDecimal:
		return "decimal"
	case KindToggleSign:
		return "toggle_sign"
	case KindPercent:
		return "percent"
	case KindOperator:
		return "operator"
	case KindClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Event is one key press. Only the payload field matching Kind is
// meaningful: Digit for KindDigit, Operator or Equals for KindOperator.
type Event struct {
	Kind     Kind
	Digit    byte
	Operator Operator
	Equals   bool
}

func DigitEvent(d byte) Event { return Event{Kind: KindDigit, Digit: d} }

func DecimalEvent() Event { return Event{Kind: KindDecimal} }

func ToggleSignEvent() Event { return Event{Kind: KindToggleSign} }

func PercentEvent() Event { return Event{Kind: KindPercent} }

func OperatorEvent(op Operator) Event { return Event{Kind: KindOperator, Operator: op} }

func EqualsEvent() Event { return Event{Kind: KindOperator, Equals: true} }

func ClearEvent() Event { return Event{Kind: KindClear} }

// Label is the keypad label that produces e.
func (e Event) Label() string {
	switch e.Kind {
	case KindDigit:
		return string(e.Digit)
	case KindDecimal:
		return "."
	case KindToggleSign:
		return "+/-"
	case KindPercent:
		return "%"
	case KindOperator:
		if e.Equals {
			return GlyphEquals
		}
		return e.Operator.String()
	case KindClear:
		return "AC"
	default:
		return ""
	}
}

func (e Event) String() string {
	return e.Kind.String() + "(" + e.Label() + ")"
}

// ParseKey maps a keypad label to its event. ASCII spellings of the
// operator glyphs are accepted so API clients and the CLI need not type
// them.
func ParseKey(label string) (Event, error) {
	key := strings.TrimSpace(label)

	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return DigitEvent(key[0]), nil
	}

	switch strings.ToUpper(key) {
	case ".", ",":
		return DecimalEvent(), nil
	case "+/-", "±", "NEG":
		return ToggleSignEvent(), nil
	case "%":
		return PercentEvent(), nil
	case GlyphAdd:
		return OperatorEvent(Add), nil
	case GlyphSubtract, "-":
		return OperatorEvent(Subtract), nil
	case GlyphMultiply, "*", "X":
		return OperatorEvent(Multiply), nil
	case GlyphDivide, "/":
		return OperatorEvent(Divide), nil
	case GlyphEquals:
		return EqualsEvent(), nil
	case "AC", "C":
		return ClearEvent(), nil
	}

	return Event{}, fmt.Errorf("%w: %q", ErrUnknownKey, label)
}
