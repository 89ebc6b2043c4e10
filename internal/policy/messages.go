package policy

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleVerb renders a verb for the start of a message, e.g. "rollout_restart"
// becomes "Rollout Restart". A Caser keeps internal state, so one is created
// per call.
func titleVerb(verb string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(verb, "_", " "))
}
