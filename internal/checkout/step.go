package checkout

type Step string

const (
	StepReview   Step = "review"
	StepAddress  Step = "address"
	StepPayment  Step = "payment"
	StepComplete Step = "complete"
)

var stepOrder = []Step{StepReview, StepAddress, StepPayment, StepComplete}

func (s Step) index() int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Step) IsTerminal() bool {
	return s == StepComplete
}

func (s Step) String() string {
	return string(s)
}

// CanTransitionTo allows one step forward, or one step back before the order
// is placed. Complete is terminal.
func CanTransitionTo(from, to Step) bool {
	f, t := from.index(), to.index()
	if f < 0 || t < 0 || from.IsTerminal() {
		return false
	}
	if t == f+1 {
		return true
	}
	return t == f-1
}
