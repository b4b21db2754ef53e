// file: internal/schema/name_rules.go
package schema

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

// MaxToolNameLength is the longest tool name MCP clients accept.
const MaxToolNameLength = 64

var toolNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateToolName checks that name is lower snake_case and short enough.
func ValidateToolName(name string) error {
	switch {
	case name == "":
		return errors.New("empty tool name")
	case len(name) > MaxToolNameLength:
		return errors.Newf("tool name %q exceeds %d characters", name, MaxToolNameLength)
	case !toolNamePattern.MatchString(name):
		return errors.WithHint(errors.Newf("invalid tool name %q", name),
			"Tool names start with a lowercase letter followed by lowercase letters, digits or underscores.")
	}
	return nil
}
