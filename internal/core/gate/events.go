package gate

import "time"

// State represents the gate mode.
type State string

const (
	StateOpen    State = "open"
	StateBlocked State = "blocked"
)

// Verdict is the per-click decision returned to the interception point.
type Verdict int

const (
	Admit Verdict = iota
	Deny
)

func (verdict Verdict) String() string {
	if verdict == Deny {
		return "deny"
	}
	return "admit"
}

// Button identifies the pressed mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
	ButtonX
)

// Click is a native button-down event.
type Click struct {
	DeviceTime uint32
	X          int
	Y          int
	Button     Button
}

// Rect is a screen rectangle in physical pixels.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Contains reports whether the point lies inside the rectangle.
func (rect Rect) Contains(x, y int) bool {
	return x >= rect.Left && x < rect.Right && y >= rect.Top && y < rect.Bottom
}

// ResolutionKind names how the notification surface was answered.
type ResolutionKind string

const (
	ResolutionRemindLater ResolutionKind = "remind_later"
	ResolutionAcknowledge ResolutionKind = "acknowledge"
	ResolutionClosed      ResolutionKind = "closed"
	// ResolutionExpired and ResolutionReconfigured are produced by the gate itself.
	ResolutionExpired      ResolutionKind = "expired"
	ResolutionReconfigured ResolutionKind = "reconfigured"
)

// Resolution is a result emitted by the notification surface.
type Resolution struct {
	Kind  ResolutionKind
	Delay time.Duration
}

// RemindLater requests a deferred unlock after delay.
func RemindLater(delay time.Duration) Resolution {
	return Resolution{Kind: ResolutionRemindLater, Delay: delay}
}

// Acknowledge requests an immediate unlock after an upgrade.
func Acknowledge() Resolution {
	return Resolution{Kind: ResolutionAcknowledge}
}

// Closed reports that the dialog was closed by the user.
func Closed() Resolution {
	return Resolution{Kind: ResolutionClosed}
}

// EventType defines the type of gate event.
type EventType string

const (
	EventCount       EventType = "count"
	EventStateChange EventType = "state_change"
	EventCountdown   EventType = "countdown"
)

// Event represents a gate update for observers.
type Event struct {
	Type       EventType
	State      State
	Count      int
	Limit      int
	EpisodeID  string
	Resolution ResolutionKind
	Remaining  time.Duration
	At         time.Time
}
