package prompts

import (
	_ "embed"
	"strings"
)

//go:embed system.txt
var SystemPromptTemplate string

//go:embed locator_policy.txt
var locatorPolicy string

// LocatorPolicyLines returns the fixed field-resolution policy, one directive per line.
func LocatorPolicyLines() []string {
	return strings.Split(strings.TrimRight(locatorPolicy, "\n"), "\n")
}
