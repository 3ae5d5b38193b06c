package cli

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/matzehuels/reftree/pkg/errors"
)

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "coded with hint",
			err:  fmt.Errorf("layout: %w", errors.New(errors.ErrCodeNoRoot, "no root among 4 members")),
			want: []string{"no root among 4 members", "(NO_ROOT)", "exactly one member must have no parent"},
		},
		{
			name: "format lists choices",
			err:  errors.New(errors.ErrCodeInvalidFormat, "invalid format: \"gif\""),
			want: []string{"INVALID_FORMAT", "svg, html, json, dot, png, pdf"},
		},
		{
			name: "plain error suggests verbose",
			err:  fmt.Errorf("write out.svg: disk full"),
			want: []string{"write out.svg: disk full", "--verbose"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ansi.Strip(FormatError(tt.err))
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestHintForValidationCodes(t *testing.T) {
	if got := hintFor(errors.ErrCodeInvalidNodeID); got != "" {
		t.Errorf("hintFor(INVALID_NODE_ID) = %q, want no hint", got)
	}
}
