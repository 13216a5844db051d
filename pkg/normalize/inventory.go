package normalize

import (
	"strings"

	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// NormalizeInventory converts parser-facade "show inventory" rows into
// InventoryItem records, classifying each by name/description keywords
// since vendors don't expose a dedicated component-type field.
func NormalizeInventory(rows []textparse.Row, device string) []model.InventoryItem {
	out := make([]model.InventoryItem, 0, len(rows))
	for _, row := range rows {
		serial := strings.TrimSpace(row["serial"])
		if serial == "" {
			continue
		}
		out = append(out, model.InventoryItem{
			Device:        device,
			ComponentType: classifyComponent(row["name"], row["description"]),
			Name:          strings.TrimSpace(row["name"]),
			Serial:        serial,
			PartID:        strings.TrimSpace(row["part_id"]),
			Description:   strings.TrimSpace(row["description"]),
		})
	}
	return out
}

func classifyComponent(name, description string) model.ComponentType {
	text := strings.ToLower(name + " " + description)
	switch {
	case strings.Contains(text, "sfp") || strings.Contains(text, "gbic") || strings.Contains(text, "transceiver"):
		return model.ComponentSFP
	case strings.Contains(text, "power supply") || strings.Contains(text, "psu"):
		return model.ComponentPSU
	case strings.Contains(text, "fan"):
		return model.ComponentFan
	case strings.Contains(text, "module") || strings.Contains(text, "linecard") || strings.Contains(text, "supervisor"):
		return model.ComponentModule
	default:
		return model.ComponentOther
	}
}
