package calc

// View is what a renderer needs after each key press.
type View struct {
	Display    string
	Expression string
	State      State
}

// NewView derives the rendered strings from s.
func NewView(s State) View {
	return View{
		Display:    FormatDisplay(s.Display),
		Expression: s.Expression,
		State:      s,
	}
}

// Machine owns one State and notifies subscribers after every dispatch.
// It is not safe for concurrent use; callers serialise key presses.
type Machine struct {
	state     State
	listeners []func(View)
}

func NewMachine() *Machine {
	return &Machine{state: Initial()}
}

// Dispatch reduces e into the current state and returns the new view.
func (m *Machine) Dispatch(e Event) View {
	m.state = Reduce(m.state, e)

	v := NewView(m.state)
	for _, fn := range m.listeners {
		fn(v)
	}
	return v
}

// Subscribe registers fn to be called with the view after each dispatch.
func (m *Machine) Subscribe(fn func(View)) {
	m.listeners = append(m.listeners, fn)
}

func (m *Machine) State() State { return m.state }

func (m *Machine) View() View { return NewView(m.state) }
