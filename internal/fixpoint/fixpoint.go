// Package fixpoint runs a step function repeatedly until it reports
// completion, stops making progress, or hits a round cap.
package fixpoint

// Status is what a step reports after one round.
type Status struct {
	// Done ends the iteration successfully.
	Done bool
	// Pending is the amount of outstanding work. A round makes
	// progress only if Pending drops below the previous round's value.
	Pending int
}

// Result summarizes an iteration.
type Result struct {
	Rounds  int
	Pending int
	Done    bool
	// Stalled is set when the last round made no progress.
	Stalled bool
}

// Step performs one round. round counts from 1.
type Step func(round int) (Status, error)

// Run calls step until it reports Done, a round fails to reduce Pending,
// maxRounds rounds have run, or step returns an error. pending is the
// outstanding work before the first round; when it is zero no round runs.
func Run(maxRounds, pending int, step Step) (Result, error) {
	res := Result{Pending: pending}
	if pending == 0 {
		res.Done = true
		return res, nil
	}
	for round := 1; round <= maxRounds; round++ {
		st, err := step(round)
		res.Rounds = round
		if err != nil {
			return res, err
		}
		prev := res.Pending
		res.Pending = st.Pending
		if st.Done {
			res.Done = true
			return res, nil
		}
		if st.Pending >= prev {
			res.Stalled = true
			return res, nil
		}
	}
	return res, nil
}
