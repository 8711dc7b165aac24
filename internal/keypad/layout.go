// Package keypad renders the calculator: a display surface showing the
// expression trail and the formatted value, and a grid of buttons that
// each post one key label back to the server. It holds no calculator
// logic; every button maps to a calc.Event.
package keypad

import (
	"fmt"

	"go-chi-calculator/internal/calc"
)

// Class groups buttons by role for styling.
type Class string

const (
	ClassFunction Class = "function"
	ClassDigit    Class = "digit"
	ClassOperator Class = "operator"
)

// Columns is the width of the keypad grid.
const Columns = 4

// Button is one key on the keypad.
type Button struct {
	Label string
	Event calc.Event
	Class Class
	// Span is the number of grid columns the button covers.
	Span int
}

type key struct {
	label string
	class Class
	span  int
}

var rows = [][]key{
	{{"AC", ClassFunction, 1}, {"+/-", ClassFunction, 1}, {"%", ClassFunction, 1}, {calc.GlyphDivide, ClassOperator, 1}},
	{{"7", ClassDigit, 1}, {"8", ClassDigit, 1}, {"9", ClassDigit, 1}, {calc.GlyphMultiply, ClassOperator, 1}},
	{{"4", ClassDigit, 1}, {"5", ClassDigit, 1}, {"6", ClassDigit, 1}, {calc.GlyphSubtract, ClassOperator, 1}},
	{{"1", ClassDigit, 1}, {"2", ClassDigit, 1}, {"3", ClassDigit, 1}, {calc.GlyphAdd, ClassOperator, 1}},
	{{"0", ClassDigit, 2}, {".", ClassDigit, 1}, {calc.GlyphEquals, ClassOperator, 1}},
}

// Layout returns the keypad buttons in reading order.
func Layout() ([]Button, error) {
	var buttons []Button

	for i, row := range rows {
		width := 0
		for _, k := range row {
			e, err := calc.ParseKey(k.label)
			if err != nil {
				return nil, fmt.Errorf("keypad row %d: %w", i, err)
			}
			buttons = append(buttons, Button{
				Label: k.label,
				Event: e,
				Class: k.class,
				Span:  k.span,
			})
			width += k.span
		}
		if width != Columns {
			return nil, fmt.Errorf("keypad row %d spans %d columns, want %d", i, width, Columns)
		}
	}

	return buttons, nil
}
