package validation

import (
	"fmt"
	"io"
	"sort"
)

// Severity of a validation message. Any Error makes the run exit
// non-zero; Warnings are printed and the run proceeds.
type Severity int

const (
	// Warning flags a questionable construct that still renders.
	Warning Severity = iota

	// Error flags a construct that prevents rendering.
	Error
)

// String returns the severity name used in the diagnostic format.
func (s Severity) String() string {
	if s == Error {
		return "Error"
	}
	return "Warning"
}

// Message is one validation finding. The rendered form is stable:
//
//	Severity: (module) (code): text
type Message struct {
	Severity Severity
	Module   string
	Code     string
	Text     string
}

// String renders the message in the stable diagnostic format.
func (m Message) String() string {
	return fmt.Sprintf("%s: (%s) (%s): %s", m.Severity, m.Module, m.Code, m.Text)
}

// Sort orders messages by (module, code, text) so diff-based tests are
// robust against check execution order.
func Sort(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i], msgs[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Text < b.Text
	})
}

// HasErrors reports whether any message carries Error severity.
func HasErrors(msgs []Message) bool {
	for _, m := range msgs {
		if m.Severity == Error {
			return true
		}
	}
	return false
}

// Print writes each message on its own line.
func Print(w io.Writer, msgs []Message) {
	for _, m := range msgs {
		fmt.Fprintln(w, m)
	}
}

func warnf(module, code, format string, args ...any) Message {
	return Message{Severity: Warning, Module: module, Code: code, Text: fmt.Sprintf(format, args...)}
}

func errorf(module, code, format string, args ...any) Message {
	return Message{Severity: Error, Module: module, Code: code, Text: fmt.Sprintf(format, args...)}
}
