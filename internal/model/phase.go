package model

// SessionPhase represents the phase of the download session
type SessionPhase string

const (
	// PhaseIdle means no request is active and no track is previewed
	PhaseIdle SessionPhase = "Idle"

	// PhaseResolving means track metadata is being fetched
	PhaseResolving SessionPhase = "Resolving"

	// PhaseConfirming means metadata is shown and the user has not committed yet
	PhaseConfirming SessionPhase = "Confirming"

	// PhaseDownloading means the download request is in flight
	PhaseDownloading SessionPhase = "Downloading"

	// PhaseSucceeded means the file was saved successfully
	PhaseSucceeded SessionPhase = "Succeeded"

	// PhaseFailed means the last operation ended with an error
	PhaseFailed SessionPhase = "Failed"
)

// String returns the string representation of SessionPhase
func (sp SessionPhase) String() string {
	return string(sp)
}

// IsBusy returns true if a network request is in flight for this phase
func (sp SessionPhase) IsBusy() bool {
	return sp == PhaseResolving || sp == PhaseDownloading
}

// IsTerminal returns true if the phase is a terminal download outcome
func (sp SessionPhase) IsTerminal() bool {
	return sp == PhaseSucceeded || sp == PhaseFailed
}
