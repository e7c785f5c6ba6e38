package svn

import (
	"fmt"
	"strings"
	"time"
)

// OutcomeKind classifies a single svn invocation
type OutcomeKind int

const (
	Success   OutcomeKind = iota // exit code 0
	Failure                      // non-zero exit code
	Exception                    // process could not start, I/O failed or timed out
)

// CompletedMarker is reported when svn succeeds without printing anything
const CompletedMarker = "operation completed successfully"

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failed"
	case Exception:
		return "error"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of running one svn sub-command against one path
type Outcome struct {
	Kind     OutcomeKind
	Message  string
	ExitCode int
	Duration time.Duration
}

// OK reports whether the command succeeded
func (o Outcome) OK() bool { return o.Kind == Success }

// String renders the outcome as a single log fragment, e.g. "success: At revision 12."
func (o Outcome) String() string {
	return o.Kind.String() + ": " + strings.TrimSpace(o.Message)
}

func succeeded(stdout string) Outcome {
	if strings.TrimSpace(stdout) == "" {
		stdout = CompletedMarker
	}
	return Outcome{Kind: Success, Message: stdout}
}

func failed(stderr string, code int) Outcome {
	return Outcome{Kind: Failure, Message: stderr, ExitCode: code}
}

func errored(err error) Outcome {
	return Outcome{Kind: Exception, Message: err.Error(), ExitCode: -1}
}
