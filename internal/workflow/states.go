package workflow

// State is one node of the run state machine.
type State string

const (
	StateScanning           State = "scanning"
	StateConcatenatingVideo State = "concatenating_video"
	StateConcatenatingAudio State = "concatenating_audio"
	StateTranscodingAudio   State = "transcoding_audio"
	StateMuxing             State = "muxing"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Terminal reports whether the state ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// transition names the successor of a state for each step result. A skipped
// step follows onFailure.
type transition struct {
	onSuccess State
	onFailure State
}

// policy is the single source of truth for degrade-versus-abort decisions.
var policy = map[State]transition{
	StateScanning:           {onSuccess: StateConcatenatingVideo, onFailure: StateFailed},
	StateConcatenatingVideo: {onSuccess: StateConcatenatingAudio, onFailure: StateFailed},
	StateConcatenatingAudio: {onSuccess: StateTranscodingAudio, onFailure: StateMuxing},
	StateTranscodingAudio:   {onSuccess: StateMuxing, onFailure: StateMuxing},
	StateMuxing:             {onSuccess: StateDone, onFailure: StateFailed},
}

// Next returns the state that follows s given the step result. Unknown and
// terminal states lead to Failed and themselves respectively.
func Next(s State, succeeded bool) State {
	if s.Terminal() {
		return s
	}
	t, ok := policy[s]
	if !ok {
		return StateFailed
	}
	if succeeded {
		return t.onSuccess
	}
	return t.onFailure
}

// Mandatory reports whether a failure in s aborts the run.
func Mandatory(s State) bool {
	t, ok := policy[s]
	return ok && t.onFailure == StateFailed
}
