package channel

// Setpoints holds a channel's present voltage and current setpoints.
type Setpoints struct {
	Voltage float64
	Current float64
}

type simChannel struct {
	limits    Limits
	setpoints Setpoints
}

// Simulator is an in-memory channel dispatcher.
// It is not safe for concurrent use; the owner serializes access.
type Simulator struct {
	channels []simChannel

	onChange func(ch ID, sp Setpoints)
}

// NewSimulator creates a simulator with one channel per limits entry.
// Setpoints start at zero.
func NewSimulator(limits []Limits) *Simulator {
	s := &Simulator{channels: make([]simChannel, len(limits))}
	for i, l := range limits {
		s.channels[i].limits = l
	}
	return s
}

// Count returns the number of simulated channels.
func (s *Simulator) Count() int {
	return len(s.channels)
}

// OnChange sets a callback invoked after every setpoint change.
func (s *Simulator) OnChange(fn func(ch ID, sp Setpoints)) {
	s.onChange = fn
}

func (s *Simulator) get(ch ID) *simChannel {
	if !ch.Valid(len(s.channels)) {
		return &simChannel{}
	}
	return &s.channels[ch.Index()]
}

// Limits returns the channel's limits.
func (s *Simulator) Limits(ch ID) Limits {
	return s.get(ch).limits
}

// SetLimits replaces the channel's limits.
func (s *Simulator) SetLimits(ch ID, l Limits) {
	if ch.Valid(len(s.channels)) {
		s.channels[ch.Index()].limits = l
	}
}

// Setpoints returns the channel's present setpoints.
func (s *Simulator) Setpoints(ch ID) Setpoints {
	return s.get(ch).setpoints
}

// VoltageLimit returns the upper voltage limit.
func (s *Simulator) VoltageLimit(ch ID) float64 { return s.get(ch).limits.Voltage }

// CurrentLimit returns the upper current limit.
func (s *Simulator) CurrentLimit(ch ID) float64 { return s.get(ch).limits.Current }

// PowerLimit returns the power limit.
func (s *Simulator) PowerLimit(ch ID) float64 { return s.get(ch).limits.Power }

// VoltageSetpoint returns the present voltage setpoint.
func (s *Simulator) VoltageSetpoint(ch ID) float64 { return s.get(ch).setpoints.Voltage }

// CurrentSetpoint returns the present current setpoint.
func (s *Simulator) CurrentSetpoint(ch ID) float64 { return s.get(ch).setpoints.Current }

// SetVoltage applies a new voltage setpoint.
func (s *Simulator) SetVoltage(ch ID, v float64) {
	if !ch.Valid(len(s.channels)) {
		return
	}
	s.channels[ch.Index()].setpoints.Voltage = v
	s.notify(ch)
}

// SetCurrent applies a new current setpoint.
func (s *Simulator) SetCurrent(ch ID, i float64) {
	if !ch.Valid(len(s.channels)) {
		return
	}
	s.channels[ch.Index()].setpoints.Current = i
	s.notify(ch)
}

func (s *Simulator) notify(ch ID) {
	if s.onChange != nil {
		s.onChange(ch, s.channels[ch.Index()].setpoints)
	}
}
