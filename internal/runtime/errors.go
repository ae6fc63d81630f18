package runtime

import "fmt"

// DeliveryError reports a send to an instance that has terminated.
type DeliveryError struct {
	Agent string
	ID    string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("agent %s (%s) is no longer running", e.Agent, e.ID)
}
