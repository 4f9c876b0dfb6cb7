package models

// DecisionLog is the append-only, ordered history of player decisions.
type DecisionLog []Decision

// Append adds d to the end of the log and returns it with its sequence number set.
func (l *DecisionLog) Append(d Decision) Decision {
	d.Seq = len(*l) + 1
	if n := len(*l); n > 0 && (*l)[n-1].Seq >= d.Seq {
		d.Seq = (*l)[n-1].Seq + 1
	}
	*l = append(*l, d)
	return d
}

// All returns a copy of the decisions in the order they were made.
func (l DecisionLog) All() []Decision {
	out := make([]Decision, len(l))
	copy(out, l)
	return out
}

// Last returns the most recent decision.
func (l DecisionLog) Last() (Decision, bool) {
	if len(l) == 0 {
		return Decision{}, false
	}
	return l[len(l)-1], true
}
