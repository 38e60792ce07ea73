package capture

// State tracks where a capture attempt is in the popup/download flow. Each
// attempt moves through the states in order and ends in exactly one of the
// three terminal states.
type State int

const (
	StateIdle State = iota
	StateAwaitingPopup
	StatePopupLoaded
	StateMenuOpened
	StateAwaitingDownload
	StateSaved
	StateTimedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPopup:
		return "awaiting-popup"
	case StatePopupLoaded:
		return "popup-loaded"
	case StateMenuOpened:
		return "menu-opened"
	case StateAwaitingDownload:
		return "awaiting-download"
	case StateSaved:
		return "saved"
	case StateTimedOut:
		return "timed-out"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
