package keypad

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"go-chi-calculator/internal/calc"
)

//go:embed templates/keypad.html
var templateFS embed.FS

var page = template.Must(template.ParseFS(templateFS, "templates/keypad.html"))

// compactAfter is the raw display length past which the smaller font
// is used.
const compactAfter = 9

// Page is everything the keypad template renders.
type Page struct {
	// Action is the URL each button posts its key to.
	Action  string
	View    calc.View
	Buttons []Button
}

// Compact reports whether the display needs the smaller font.
func (p Page) Compact() bool {
	return len(p.View.State.Display) > compactAfter
}

func (p Page) Columns() int { return Columns }

// Render writes the keypad page for p to w.
func Render(w io.Writer, p Page) error {
	if err := page.Execute(w, p); err != nil {
		return fmt.Errorf("render keypad: %w", err)
	}
	return nil
}
