package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   InterviewStatus
		action Action
		want   InterviewStatus
		ok     bool
	}{
		{"reserve scheduled", StatusScheduled, ActionReserve, StatusAllotted, true},
		{"reserve allotted", StatusAllotted, ActionReserve, "", false},
		{"decline allotted", StatusAllotted, ActionDecline, StatusScheduled, true},
		{"accept scheduled", StatusScheduled, ActionAccept, StatusAccepted, true},
		{"accept allotted", StatusAllotted, ActionAccept, StatusAccepted, true},
		{"accept twice", StatusAccepted, ActionAccept, "", false},
		{"transfer accepted", StatusAccepted, ActionTransfer, StatusAccepted, true},
		{"transfer on the way", StatusOnTheWay, ActionTransfer, "", false},
		{"start travel", StatusAccepted, ActionStartTravel, StatusOnTheWay, true},
		{"start recording", StatusOnTheWay, ActionStartRecording, StatusInProgress, true},
		{"skip travel", StatusAccepted, ActionStartRecording, "", false},
		{"finish", StatusInProgress, ActionFinish, StatusCompleted, true},
		{"video", StatusCompleted, ActionUploadVideo, StatusVideoUploaded, true},
		{"video before finish", StatusInProgress, ActionUploadVideo, "", false},
		{"cancel accepted", StatusAccepted, ActionCancel, StatusCancelled, true},
		{"cancel started", StatusOnTheWay, ActionCancel, "", false},
		{"unknown action", StatusScheduled, Action("teleport"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanTransition(tt.from, tt.action)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceStatusesReturnsCopy(t *testing.T) {
	src := SourceStatuses(ActionCancel)
	src[0] = StatusCompleted

	_, ok := CanTransition(StatusScheduled, ActionCancel)
	assert.True(t, ok)
	assert.Nil(t, SourceStatuses(Action("nope")))
}

func TestInterviewStartedAndOpen(t *testing.T) {
	iv := &Interview{Status: StatusAccepted}
	assert.False(t, iv.Started())
	assert.True(t, iv.Open())

	iv.Status = StatusOnTheWay
	assert.True(t, iv.Started())

	iv.Status = StatusCancelled
	assert.False(t, iv.Open())
	assert.False(t, iv.Paid())
}
