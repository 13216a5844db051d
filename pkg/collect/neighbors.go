package collect

import (
	"context"

	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/model"
	"github.com/fleetsync/fleetsync/pkg/normalize"
	"github.com/fleetsync/fleetsync/pkg/textparse"
)

// Neighbors collects LLDP and CDP neighbor tables (when the platform speaks
// both — e.g. Junos has no CDP command) and merges them, CDP as base, per
// the merge rule.
func Neighbors(ctx context.Context, devices []*fleetdevice.Device, opts Options) ([]model.NeighborRecord, []DeviceError) {
	facade := opts.facadeOrDefault()
	return runPerDevice(ctx, devices, opts.maxWorkersOrDefault(), func(ctx context.Context, dev *fleetdevice.Device) ([]model.NeighborRecord, error) {
		rd := resolve(dev)
		cmds := rd.entry.Commands
		outputs, err := openAndSend(ctx, dev, opts.Credentials, opts.SSH, opts.Cache, cmds.LLDPNeighbors, cmds.CDPNeighbors)
		if err != nil {
			return nil, err
		}

		var lldpRecs, cdpRecs []model.NeighborRecord
		if cmds.LLDPNeighbors != "" {
			lldpRows, err := facade.Parse(rd.entry.TemplatePlatform, cmds.LLDPNeighbors, textparse.DomainLLDPNeighbors, outputs[0])
			if err != nil {
				return nil, err
			}
			lldpRecs = normalize.NormalizeLLDP(lldpRows, normalize.NeighborOptions{DeviceHostname: dev.Hostname})
		}
		if cmds.CDPNeighbors != "" {
			cdpRows, err := facade.Parse(rd.entry.TemplatePlatform, cmds.CDPNeighbors, textparse.DomainCDPNeighbors, outputs[1])
			if err != nil {
				return nil, err
			}
			cdpRecs = normalize.NormalizeCDP(cdpRows, normalize.NeighborOptions{DeviceHostname: dev.Hostname})
		}

		return normalize.MergeNeighbors(cdpRecs, lldpRecs), nil
	})
}
