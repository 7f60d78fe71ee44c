package workflow_test

import (
	"testing"

	"chunkmux/internal/workflow"
)

func TestNextFollowsPolicyTable(t *testing.T) {
	tests := []struct {
		from      workflow.State
		succeeded bool
		want      workflow.State
	}{
		{workflow.StateScanning, true, workflow.StateConcatenatingVideo},
		{workflow.StateScanning, false, workflow.StateFailed},
		{workflow.StateConcatenatingVideo, true, workflow.StateConcatenatingAudio},
		{workflow.StateConcatenatingVideo, false, workflow.StateFailed},
		{workflow.StateConcatenatingAudio, true, workflow.StateTranscodingAudio},
		{workflow.StateConcatenatingAudio, false, workflow.StateMuxing},
		{workflow.StateTranscodingAudio, true, workflow.StateMuxing},
		{workflow.StateTranscodingAudio, false, workflow.StateMuxing},
		{workflow.StateMuxing, true, workflow.StateDone},
		{workflow.StateMuxing, false, workflow.StateFailed},
		{workflow.StateDone, false, workflow.StateDone},
		{workflow.StateFailed, true, workflow.StateFailed},
		{workflow.State("bogus"), true, workflow.StateFailed},
	}
	for _, tt := range tests {
		if got := workflow.Next(tt.from, tt.succeeded); got != tt.want {
			t.Errorf("Next(%s, %v) = %s, want %s", tt.from, tt.succeeded, got, tt.want)
		}
	}
}

func TestMandatorySteps(t *testing.T) {
	mandatory := map[workflow.State]bool{
		workflow.StateScanning:           true,
		workflow.StateConcatenatingVideo: true,
		workflow.StateConcatenatingAudio: false,
		workflow.StateTranscodingAudio:   false,
		workflow.StateMuxing:             true,
	}
	for state, want := range mandatory {
		if got := workflow.Mandatory(state); got != want {
			t.Errorf("Mandatory(%s) = %v, want %v", state, got, want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	if !workflow.StateDone.Terminal() || !workflow.StateFailed.Terminal() {
		t.Fatal("done and failed must be terminal")
	}
	if workflow.StateMuxing.Terminal() {
		t.Fatal("muxing must not be terminal")
	}
}
