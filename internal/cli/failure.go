package cli

import (
	"strings"

	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/pipeline"
)

// FormatError renders err for the terminal: the message, plus a hint when
// the error code suggests what to change.
func FormatError(err error) string {
	code := errors.GetCode(err)
	msg := iconError.String() + " " + err.Error()
	if code != "" {
		msg = iconError.String() + " " + errors.UserMessage(err) + StyleDim.Render(" ("+string(code)+")")
	}
	if hint := hintFor(code); hint != "" {
		msg += "\n  " + StyleDim.Render(hint)
	}
	return msg
}

func hintFor(code errors.Code) string {
	switch code {
	case errors.ErrCodeNoRoot:
		return "exactly one member must have no parent"
	case errors.ErrCodeEmptyTree:
		return "the source has no members"
	case errors.ErrCodeFileNotFound:
		return "check the source path"
	case errors.ErrCodeInvalidFormat:
		return "formats: " + strings.Join(pipeline.ValidFormats, ", ")
	}
	if code.Retryable() {
		return "run again with --verbose for details"
	}
	return ""
}
