package calc

import "strings"

// Reduce applies one key press to s and returns the resulting state.
// Invalid events leave the state unchanged.
func Reduce(s State, e Event) State {
	switch e.Kind {
	case KindDigit:
		return inputDigit(s, e.Digit)
	case KindDecimal:
		return inputDecimal(s)
	case KindToggleSign:
		return toggleSign(s)
	case KindPercent:
		return inputPercent(s)
	case KindOperator:
		return performOperation(s, e)
	case KindClear:
		return Initial()
	default:
		return s
	}
}

// ReduceAll folds events over s in order.
func ReduceAll(s State, events ...Event) State {
	for _, e := range events {
		s = Reduce(s, e)
	}
	return s
}

func inputDigit(s State, d byte) State {
	if d < '0' || d > '9' {
		return s
	}

	digit := string(d)

	if IsError(s.Display) {
		s = Initial()
	}

	if s.WaitingForOperand {
		// A digit after "=" starts a new calculation.
		if !s.Pending() {
			s = Initial()
		}
		s.Display = digit
		s.WaitingForOperand = false
		return s
	}

	if len(s.Display) > maxEntryLength {
		return s
	}

	if s.Display == "0" {
		s.Display = digit
	} else {
		s.Display += digit
	}
	return s
}

func inputDecimal(s State) State {
	if IsError(s.Display) {
		return s
	}

	if s.WaitingForOperand {
		s.Display = "0."
		s.WaitingForOperand = false
		return s
	}

	if !strings.Contains(s.Display, ".") {
		s.Display += "."
	}
	return s
}

func toggleSign(s State) State {
	if IsError(s.Display) || s.Display == "0" {
		return s
	}

	value, ok := parseOperand(s.Display)
	if !ok {
		return s
	}
	s.Display = formatNumber(value * -1)
	return s
}

func inputPercent(s State) State {
	if IsError(s.Display) {
		return s
	}

	value, ok := parseOperand(s.Display)
	if !ok {
		return s
	}
	s.Display = formatNumber(value / 100)
	s.WaitingForOperand = true
	return s
}

func performOperation(s State, e Event) State {
	if !e.Equals && e.Operator == None {
		return s
	}

	current, ok := parseOperand(s.Display)
	if !ok {
		return s
	}

	// Second operator in a row: the user changed their mind. No operand
	// is consumed; "=" closes the calculation on the displayed value.
	if s.Pending() && s.WaitingForOperand {
		if e.Equals {
			s.Operator = None
			s.Expression = collapseEquals(s.Expression + " " + GlyphEquals)
			return s
		}
		s.Operator = e.Operator
		s.Expression = replaceTrailingOperator(s.Expression, e.Operator.String())
		return s
	}

	token := e.Operator.String()
	if e.Equals {
		token = GlyphEquals
	}

	operand := FormatDisplay(s.Display)
	if s.Expression == "" || strings.Contains(s.Expression, GlyphEquals) {
		s.Expression = operand + " " + token
	} else {
		s.Expression = s.Expression + " " + operand + " " + token
	}
	s.Expression = collapseEquals(s.Expression)

	if !s.HasPrevious {
		s.Previous = current
		s.HasPrevious = true
	} else {
		result := s.Operator.Apply(s.Previous, current)
		s.Previous = result
		s.Display = formatNumber(result)
	}

	s.WaitingForOperand = true
	if e.Equals {
		s.Operator = None
	} else {
		s.Operator = e.Operator
	}
	return s
}

func replaceTrailingOperator(expression, glyph string) string {
	i := strings.LastIndex(expression, " ")
	if i < 0 {
		return glyph
	}
	return expression[:i+1] + glyph
}

var pendingGlyphs = []string{GlyphAdd, GlyphSubtract, GlyphMultiply, GlyphDivide}

// collapseEquals folds an operator token immediately followed by "="
// into a single "=".
func collapseEquals(expression string) string {
	for _, g := range pendingGlyphs {
		expression = strings.ReplaceAll(expression, " "+g+" "+GlyphEquals, " "+GlyphEquals)
	}
	return expression
}
