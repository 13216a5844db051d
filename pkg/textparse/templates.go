package textparse

import (
	"fmt"
	"regexp"
	"strings"
)

// template is the bundled minimal template format: one regular expression
// with named capture groups, applied line-by-line against command output.
// Each matching line produces one Row keyed by the regex's group names.
// This stands in for a full vendor text-template library (none of which is
// present in the example corpus) while preserving the same two-stage
// contract: a template miss or a template that matches nothing returns
// (nil, nil), not an error.
type template struct {
	re *regexp.Regexp
}

func (t *template) apply(output string) []Row {
	var rows []Row
	names := t.re.SubexpNames()
	for _, line := range strings.Split(output, "\n") {
		m := t.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		row := make(Row, len(names))
		for i, name := range names {
			if i == 0 || name == "" {
				continue
			}
			row[name] = strings.TrimSpace(m[i])
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// parseTemplateDefinition compiles a template file's content. The bundled
// format is a single line containing the regular expression; blank lines
// and lines starting with '#' are ignored so a template file can carry a
// leading comment.
func parseTemplateDefinition(data []byte) (*template, error) {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			return nil, fmt.Errorf("compiling template: %w", err)
		}
		return &template{re: re}, nil
	}
	return nil, fmt.Errorf("empty template definition")
}

// builtinTemplates is the bundled library-equivalent template set, keyed by
// (templatePlatform, command). It intentionally covers only a handful of
// platform/command pairs — most combinations have no builtin template and
// fall straight through to the stage-2 regex fallback; a missing template
// is not an error.
type builtinTemplates struct {
	defs map[[2]string]*template
}

func newBuiltinTemplates() *builtinTemplates {
	b := &builtinTemplates{defs: map[[2]string]*template{}}
	b.register("cisco_ios", "show mac address-table",
		`^\s*(?P<vlan>\d+)\s+(?P<mac>[0-9a-fA-F.:]+)\s+(?P<type>\w+)\s+(?P<interface>\S+)\s*$`)
	b.register("cisco_nxos", "show mac address-table",
		`^\*?\s*(?P<vlan>\d+)\s+(?P<mac>[0-9a-fA-F.:]+)\s+(?P<type>\w+)\s+\S+\s+\S+\s+\S+\s+\S+\s+(?P<interface>\S+)\s*$`)
	return b
}

func (b *builtinTemplates) register(templatePlatform, command, pattern string) {
	b.defs[[2]string{templatePlatform, command}] = &template{re: regexp.MustCompile(pattern)}
}

// Parse implements TemplateParser.
func (b *builtinTemplates) Parse(templatePlatform, command, output string) ([]Row, error) {
	t, ok := b.defs[[2]string{templatePlatform, command}]
	if !ok {
		return nil, nil
	}
	return t.apply(output), nil
}
