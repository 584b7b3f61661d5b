package notifications

import (
	"errors"
	"fmt"
	"io"

	"course-catalog-go/internal/apperrors"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
)

// Notifier reports outcomes to the person at the terminal.
type Notifier struct {
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{
		out: out,
	}
}

func (n *Notifier) Success(format string, args ...any) {
	fmt.Fprintln(n.out, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Error prints the user-facing message for err. The full chain goes to the
// debug log.
func (n *Notifier) Error(err error) {
	if err == nil {
		return
	}

	log.WithError(err).Debug("operation failed")
	fmt.Fprintln(n.out, errorStyle.Render("✗")+" "+Message(err))
}

// Message turns a failure into one sentence for the user.
func Message(err error) string {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return fmt.Sprintf("Something went wrong: %v", err)
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		return "Please check your input: " + appErr.Error()
	case apperrors.KindAuth:
		return "Authentication failed: " + appErr.Error()
	case apperrors.KindNotFound:
		return "Not found: " + appErr.Error()
	case apperrors.KindConflict:
		return "Could not complete the request: " + appErr.Error()
	case apperrors.KindTransport:
		if appErr.Cause != nil {
			return fmt.Sprintf("Network problem: %s: %v", appErr.Message, appErr.Cause)
		}
		return "Network problem: " + appErr.Error()
	default:
		return "The course service reported an error: " + appErr.Error()
	}
}
