package reconcile

import (
	"regexp"
	"strings"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// slug derives the get-or-create key remote inventories expect for
// dependent objects (manufacturer, device-type, site, role, tenant):
// lowercase, runs of non-alphanumerics collapsed to one hyphen, then
// trimmed of leading/trailing hyphens
func slug(name string) string {
	s := nonAlnumRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
