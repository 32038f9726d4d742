package models

// Activity is an extracurricular offering and its current roster.
// MaxParticipants is advisory; signups beyond it are accepted.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Clone returns a copy that shares no participant storage with a.
func (a Activity) Clone() Activity {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)
	a.Participants = participants
	return a
}

// ActivityMap is the GET /activities response: activity name to activity.
type ActivityMap map[string]Activity

// MessageResponse is returned by successful signup and unregister calls.
type MessageResponse struct {
	Message string `json:"message"`
}
