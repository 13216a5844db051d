// Package textparse implements a two-stage parser facade: a pluggable
// template stage, falling back to per-domain regex parsing when no
// template is available or the template stage returns no rows. Output at
// this boundary is always []map[string]string ("untyped rows") — typed
// records are produced one layer up, in pkg/normalize, which keeps parser
// output as plain maps and normalizes immediately after.
//
// No vendor text-template library is wired in, so the "template stage" is
// expressed as a pluggable TemplateParser interface with a bundled minimal
// implementation (pkg/textparse/templates.go).
package textparse

import (
	"os"

	"github.com/fleetsync/fleetsync/pkg/platform"
)

// Row is one untyped parsed record.
type Row = map[string]string

// Domain names the kind of command output being parsed, selecting which
// regex fallback parser stage 2 uses.
type Domain string

const (
	DomainMACTable              Domain = "mac_table"
	DomainLLDPNeighbors         Domain = "lldp_neighbors"
	DomainCDPNeighbors          Domain = "cdp_neighbors"
	DomainInterfaces            Domain = "interfaces"
	DomainInterfaceStatus       Domain = "interface_status"
	DomainInterfaceDescriptions Domain = "interface_descriptions"
	DomainInventory             Domain = "inventory"
)

// TemplateParser is stage 1: a pluggable text-template engine. Parse must
// return (nil, nil) — not an error — when it has no template for
// (templatePlatform, command); that is how the facade knows to fall through
// to stage 2.
type TemplateParser interface {
	Parse(templatePlatform, command, output string) ([]Row, error)
}

// regexFallback is stage 2: one stricter per-domain parser.
type regexFallback func(output string) []Row

// Facade is the parser facade clients use. The zero value is not usable;
// construct with NewFacade.
type Facade struct {
	template  TemplateParser
	fallbacks map[Domain]regexFallback
}

// NewFacade builds a Facade with the bundled built-in template parser and
// the standard regex fallbacks for every domain.
func NewFacade() *Facade {
	return &Facade{
		template: newBuiltinTemplates(),
		fallbacks: map[Domain]regexFallback{
			DomainMACTable:              parseMACTableRegex,
			DomainLLDPNeighbors:         parseLLDPRegex,
			DomainCDPNeighbors:          parseCDPRegex,
			DomainInterfaces:            parseInterfacesRegex,
			DomainInterfaceStatus:       parseInterfaceStatusRegex,
			DomainInterfaceDescriptions: parseInterfaceDescriptionsRegex,
			DomainInventory:             parseInventoryRegex,
		},
	}
}

// WithTemplateParser overrides the template stage, e.g. to plug in a real
// vendor text-template library in a deployment that has one available.
func (f *Facade) WithTemplateParser(t TemplateParser) *Facade {
	f.template = t
	return f
}

// Parse runs the two-stage facade for one command's raw output.
func (f *Facade) Parse(templatePlatform, command string, domain Domain, output string) ([]Row, error) {
	if path, ok := platform.CustomTemplate(templatePlatform, command); ok {
		if rows, err := parseCustomTemplateFile(path, output); err != nil {
			return nil, err
		} else if len(rows) > 0 {
			return rows, nil
		}
		// An empty result from a registered custom template still falls
		// through to stage 2, same as a library miss.
	} else if f.template != nil {
		rows, err := f.template.Parse(templatePlatform, command, output)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}

	fallback, ok := f.fallbacks[domain]
	if !ok {
		return nil, nil
	}
	return fallback(output), nil
}

// parseCustomTemplateFile loads a custom template override from disk. The
// bundled format is identical to the builtin templates' line-oriented
// regex definitions (see templates.go); a missing file degrades to "no
// rows", not an error.
func parseCustomTemplateFile(path, output string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	tmpl, err := parseTemplateDefinition(data)
	if err != nil {
		return nil, nil
	}
	return tmpl.apply(output), nil
}
