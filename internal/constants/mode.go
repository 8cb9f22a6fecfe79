package constants

// AssessMode selects how much the assessment asks for and returns.
type AssessMode string

const (
	// ModeIntrospective asks for full lists and yields a longer weekly plan
	// with reflection prompts.
	ModeIntrospective AssessMode = "introspective"

	// ModeRapid yields a three-item plan.
	ModeRapid AssessMode = "rapid"
)

// Valid returns true if the mode is a recognized value.
func (m AssessMode) Valid() bool {
	switch m {
	case ModeIntrospective, ModeRapid:
		return true
	}
	return false
}

// String returns the string representation of the mode.
func (m AssessMode) String() string {
	return string(m)
}

// Toggle returns the other mode.
func (m AssessMode) Toggle() AssessMode {
	if m == ModeRapid {
		return ModeIntrospective
	}
	return ModeRapid
}
