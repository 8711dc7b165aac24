package calc

// Operator is a pending binary operation. The zero value means no
// calculation is pending.
type Operator int

const (
	None Operator = iota
	Add
	Subtract
	Multiply
	Divide
)

// Glyphs shown on the keypad and in the expression trail.
const (
	GlyphAdd      = "+"
	GlyphSubtract = "−"
	GlyphMultiply = "×"
	GlyphDivide   = "÷"
	GlyphEquals   = "="
)

func (o Operator) String() string {
	switch o {
	case Add:
		return GlyphAdd
	case Subtract:
		return GlyphSubtract
	case Multiply:
		return GlyphMultiply
	case Divide:
		return GlyphDivide
	default:
		return ""
	}
}

// Name is the operator's name as used in logs and metric attributes.
func (o Operator) Name() string {
	switch o {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	default:
		return "none"
	}
}

// Apply combines a and b. Division by zero is not guarded: the
// non-finite result is caught by FormatDisplay. With no operator the
// second operand is returned unchanged.
func (o Operator) Apply(a, b float64) float64 {
	switch o {
	case Add:
		return a + b
	case Subtract:
		return a - b
	case Multiply:
		return a * b
	case Divide:
		return a / b
	default:
		return b
	}
}
