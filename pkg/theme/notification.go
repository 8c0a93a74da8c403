package theme

// Phase is the lifecycle stage of a notification
type Phase string

const (
	PhaseVisible Phase = "visible"
	PhaseFading  Phase = "fading"
	PhaseRemoved Phase = "removed"
)

// Notification announces a theme switch. It is visible for the display
// duration, then fades, then is removed.
type Notification struct {
	ID    string `json:"id"`
	Theme Theme  `json:"theme"`
	Icon  string `json:"icon"`
	Text  string `json:"text"`
	Phase Phase  `json:"phase"`
}
