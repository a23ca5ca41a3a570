package list

// Compatible reports whether two list lengths can be played back together.
// Both must be non-zero, and either one of them is 1 or they are equal.
func Compatible(a, b int) bool {
	return a != 0 && b != 0 && (a == 1 || b == 1 || a == b)
}

// Compatible3 reports whether all three lengths are pairwise compatible.
func Compatible3(a, b, c int) bool {
	return Compatible(a, b) && Compatible(a, c) && Compatible(b, c)
}

// Lengths holds the stored lengths of a channel's three sequences.
type Lengths struct {
	Dwell   int
	Voltage int
	Current int
}

// Max returns the longest of the three lengths. This is the cycle span.
func (l Lengths) Max() int {
	m := l.Voltage
	if l.Current > m {
		m = l.Current
	}
	if l.Dwell > m {
		m = l.Dwell
	}
	return m
}

// Compatible reports whether all three lengths are pairwise compatible.
func (l Lengths) Compatible() bool {
	return Compatible3(l.Dwell, l.Voltage, l.Current)
}

// Of returns the length for kind.
func (l Lengths) Of(kind Kind) int {
	switch kind {
	case KindDwell:
		return l.Dwell
	case KindVoltage:
		return l.Voltage
	case KindCurrent:
		return l.Current
	default:
		return 0
	}
}
