package manager

import (
	"modeld/internal/registry"
	"modeld/pkg/types"
)

// selectVariant returns the first (lowest-priority-index) variant whose
// required devices are all online, or nil if none qualify. Priority is
// positional in the catalogue's declared order, not a map key, per the
// spec's redesign of the source's dict-iteration-order variant selection.
func selectVariant(def *types.ModelDef, devices *registry.DeviceRegistry) *types.LaunchVariant {
	for i := range def.Variants {
		v := &def.Variants[i]
		if allOnline(v.RequiredDevices, devices) {
			return v
		}
	}
	return nil
}

func allOnline(names []string, devices *registry.DeviceRegistry) bool {
	if devices == nil {
		return len(names) == 0
	}
	for _, name := range names {
		if !devices.Online(name) {
			return false
		}
	}
	return true
}
