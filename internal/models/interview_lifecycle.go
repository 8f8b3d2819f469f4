package models

// Action is an operation that moves an interview between statuses.
type Action string

const (
	ActionReserve        Action = "reserve"
	ActionDecline        Action = "decline"
	ActionAccept         Action = "accept"
	ActionTransfer       Action = "transfer"
	ActionStartTravel    Action = "start_travel"
	ActionStartRecording Action = "start_recording"
	ActionFinish         Action = "finish"
	ActionUploadVideo    Action = "upload_video"
	ActionCancel         Action = "cancel"
)

type transition struct {
	from []InterviewStatus
	to   InterviewStatus
}

var lifecycle = map[Action]transition{
	ActionReserve:        {from: []InterviewStatus{StatusScheduled}, to: StatusAllotted},
	ActionDecline:        {from: []InterviewStatus{StatusAllotted}, to: StatusScheduled},
	ActionAccept:         {from: []InterviewStatus{StatusScheduled, StatusAllotted}, to: StatusAccepted},
	ActionTransfer:       {from: []InterviewStatus{StatusAccepted}, to: StatusAccepted},
	ActionStartTravel:    {from: []InterviewStatus{StatusAccepted}, to: StatusOnTheWay},
	ActionStartRecording: {from: []InterviewStatus{StatusOnTheWay}, to: StatusInProgress},
	ActionFinish:         {from: []InterviewStatus{StatusInProgress}, to: StatusCompleted},
	ActionUploadVideo:    {from: []InterviewStatus{StatusCompleted}, to: StatusVideoUploaded},
	ActionCancel:         {from: []InterviewStatus{StatusScheduled, StatusAllotted, StatusAccepted}, to: StatusCancelled},
}

// CanTransition returns the target status of action when applied to an
// interview currently in status from.
func CanTransition(from InterviewStatus, action Action) (InterviewStatus, bool) {
	t, ok := lifecycle[action]
	if !ok {
		return "", false
	}
	for _, s := range t.from {
		if s == from {
			return t.to, true
		}
	}
	return "", false
}

// SourceStatuses returns the statuses from which action is allowed.
func SourceStatuses(action Action) []InterviewStatus {
	t, ok := lifecycle[action]
	if !ok {
		return nil
	}
	out := make([]InterviewStatus, len(t.from))
	copy(out, t.from)
	return out
}
