package domain

// Recognized property keys. Other keys are carried untouched.
const (
	// KeyIsInitial marks the Node where path enumeration starts (bool).
	// At most one Node in a Graph should carry it.
	KeyIsInitial = "is_initial"

	// KeyExpectedResult holds the assertion text for a step ending at the Node (string).
	KeyExpectedResult = "expected_result"

	// KeyInputData holds the input value for the step a Transition generates (string).
	KeyInputData = "input_data"
)

// Defaults applied when the editor does not supply a label.
const (
	DefaultNodeName = "New State"
	DefaultAction   = "Action"
)
