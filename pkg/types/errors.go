package types

import "fmt"

// MissionError reports why a mission ended abnormally and in which phase.
type MissionError struct {
	Phase   string
	Message string
	Err     error
}

func (e *MissionError) Error() string {
	return fmt.Sprintf("mission error in %s: %s: %v", e.Phase, e.Message, e.Err)
}

func (e *MissionError) Unwrap() error {
	return e.Err
}
