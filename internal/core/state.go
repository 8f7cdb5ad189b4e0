package core

// Status is the lifecycle state of the event channel.
type Status int

const (
	StatusConnecting Status = iota
	StatusOpen
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Reserved closure codes that mean the channel is unusable rather than
// temporarily gone.
const (
	CloseProtocolError   = 1002
	CloseAbnormalClosure = 1006
)

// ShouldReconnect reports whether a closure with the given code is followed
// by a reconnect attempt.
func ShouldReconnect(code int) bool {
	switch code {
	case CloseAbnormalClosure, CloseProtocolError:
		return false
	default:
		return true
	}
}

// ConnState is the channel state machine. Each method is the transition for
// one channel event.
type ConnState struct {
	status Status
}

// NewConnState returns a state machine in the closed state.
func NewConnState() *ConnState {
	return &ConnState{status: StatusClosed}
}

// Status returns the current status.
func (s *ConnState) Status() Status {
	return s.status
}

// Dial moves to connecting when a connection attempt starts.
func (s *ConnState) Dial() {
	s.status = StatusConnecting
}

// Opened moves to open after a successful handshake. Returns false if no
// attempt was in progress.
func (s *ConnState) Opened() bool {
	if s.status != StatusConnecting {
		return false
	}
	s.status = StatusOpen
	return true
}

// Failed moves to closed after a socket error. A failed channel is never
// reconnected.
func (s *ConnState) Failed() {
	s.status = StatusClosed
}

// Closed moves to closed after the channel shut down with code and reports
// whether one reconnect attempt should be scheduled.
func (s *ConnState) Closed(code int) bool {
	s.status = StatusClosed
	return ShouldReconnect(code)
}
