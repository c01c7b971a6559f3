package agent

import "fmt"

// Failure categorizes why an agent could not produce a normal reply.
type Failure int

const (
	FailureNone          Failure = iota
	FailureNoCredentials         // no API key configured
	FailureResponseShape         // backend answered with nothing readable
	FailureUpstream              // network or API error
	FailureInternal              // recovered panic or similar
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureNoCredentials:
		return "no_credentials"
	case FailureResponseShape:
		return "response_shape"
	case FailureUpstream:
		return "upstream"
	case FailureInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Outcome is what an agent returns across its boundary. Text is always
// safe to show or speak; Failure and Err keep the cause inspectable.
type Outcome struct {
	Text    string
	Failure Failure
	Err     error
}

// OK reports whether the outcome is a normal reply.
func (o Outcome) OK() bool { return o.Failure == FailureNone }

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
