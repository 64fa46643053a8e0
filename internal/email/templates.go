package email

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// BuildFailureBody renders "<message>: <stack trace>" for a failure report.
// The innermost stack recorded with github.com/pkg/errors is used; errors
// without one produce the message alone.
func BuildFailureBody(err error) string {
	if err == nil {
		return ""
	}

	var trace errors.StackTrace
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			trace = st.StackTrace()
		}
	}

	if len(trace) == 0 {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", err.Error(), strings.TrimSpace(fmt.Sprintf("%+v", trace)))
}
