package physics

// TouchStatus distinguishes the start and the end of an overlap or contact.
type TouchStatus int

const (
	TouchFound TouchStatus = iota
	TouchLost
)

func (s TouchStatus) String() string {
	if s == TouchLost {
		return "lost"
	}
	return "found"
}

type TriggerPair struct {
	Trigger      string
	Other        string
	Status       TouchStatus
	OtherIsPlane bool
}

type ContactPair struct {
	A, B       string
	Status     TouchStatus
	MaxImpulse float64
}

// Sink receives notifications synchronously while the world simulates.
// Implementations must not mutate the world from these callbacks.
type Sink interface {
	OnTrigger(TriggerPair)
	OnContact(ContactPair)
}

// NopSink drops every notification.
type NopSink struct{}

func (NopSink) OnTrigger(TriggerPair) {}
func (NopSink) OnContact(ContactPair) {}
