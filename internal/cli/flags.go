package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// choiceFlag is a string flag restricted to a fixed set of values. Dashes
// are accepted for underscores so --intent get-ahead works.
type choiceFlag struct {
	value   string
	choices []string
	kind    string
}

var _ pflag.Value = (*choiceFlag)(nil)

func newChoiceFlag(kind string, choices ...string) *choiceFlag {
	return &choiceFlag{choices: choices, kind: kind}
}

func (f *choiceFlag) String() string { return f.value }

func (f *choiceFlag) Set(s string) error {
	v := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if !slices.Contains(f.choices, v) {
		return fmt.Errorf("must be one of %s", strings.Join(f.choices, ", "))
	}
	f.value = v
	return nil
}

func (f *choiceFlag) Type() string { return f.kind }
