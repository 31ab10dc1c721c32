package studio

// State names the position of a run inside the generation workflow.
type State string

const (
	StateIdle                State = "idle"
	StateCheckingCredit      State = "checking_credit"
	StateGeneratingContent   State = "generating_content"
	StateGeneratingThumbnail State = "generating_thumbnail"
)

// Progress messages surfaced to the caller while a run is active. They are
// informational only and carry no control semantics.
const (
	MsgCheckingCredits = "Checking credits..."
	MsgOptimizing      = "Optimizing titles and hashtags..."
	MsgThumbnail       = "Creating your 3D viral thumbnail..."
)

// GenericFailure is the only error text ever shown to users; detail stays in
// the logs.
const GenericFailure = "Something went wrong. Please try again."

// Status is a snapshot of the workflow: exactly one of Running or Error is
// meaningful at a time, mirroring Idle / Running(message) / Failed(message).
type Status struct {
	State   State  `json:"state"`
	Running bool   `json:"running"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func statusIdle() Status {
	return Status{State: StateIdle}
}

func statusRunning(state State, message string) Status {
	return Status{State: state, Running: true, Message: message}
}

func statusFailed(message string) Status {
	return Status{State: StateIdle, Error: message}
}
