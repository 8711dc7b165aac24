package calc

// maxEntryLength is the raw display length after which further digits
// are ignored.
const maxEntryLength = 15

// State is the complete calculator state. It is a plain value: Reduce
// returns a new State and never mutates its argument.
type State struct {
	// Display is the raw, unformatted number being shown.
	Display string
	// Expression is the trail of completed operations, e.g. "12 + 4 ×".
	Expression string
	// Previous is the running accumulator, valid when HasPrevious is set.
	Previous    float64
	HasPrevious bool
	// Operator is the operation awaiting its second operand.
	Operator Operator
	// WaitingForOperand means the next digit starts a fresh number.
	WaitingForOperand bool
}

// Initial returns the state shown on power-up and after clear.
func Initial() State {
	return State{
		Display:           "0",
		WaitingForOperand: true,
	}
}

// Pending reports whether a calculation is waiting for its second operand.
func (s State) Pending() bool {
	return s.Operator != None
}
