package manager

import (
	"fmt"
	"os"

	"modeld/internal/config"
	"modeld/internal/registry"
)

// SanityReport describes the outcome of validating a catalogue's launch
// scripts and device references before the controller starts serving.
type SanityReport struct {
	ModelsChecked int      `json:"models_checked"`
	MissingBinary []string `json:"missing_binary,omitempty"`
	OfflineOnly   []string `json:"offline_only,omitempty"`
}

// OK reports whether every model has at least one variant with an existing
// launch script and at least one device online.
func (r SanityReport) OK() bool {
	return len(r.MissingBinary) == 0 && len(r.OfflineOnly) == 0
}

// SanityCheck validates that every catalogued model has a runnable variant:
// its launch script exists on disk, and at least one variant's required
// devices are currently online. It does not mutate any state and is safe
// to call at any time, including before the controller is constructed.
func SanityCheck(cat *config.Catalogue, devices *registry.DeviceRegistry) SanityReport {
	var r SanityReport
	for i := range cat.Models {
		mdl := &cat.Models[i]
		r.ModelsChecked++

		hasScript := false
		for _, v := range mdl.Variants {
			if _, err := os.Stat(v.LaunchScript); err == nil {
				hasScript = true
				break
			}
		}
		if !hasScript {
			r.MissingBinary = append(r.MissingBinary, mdl.Name)
			continue
		}

		if selectVariant(mdl, devices) == nil {
			r.OfflineOnly = append(r.OfflineOnly, mdl.Name)
		}
	}
	return r
}

// String renders a one-line human summary, used in startup logging.
func (r SanityReport) String() string {
	return fmt.Sprintf("sanity: %d models checked, %d missing launch script, %d with no device online",
		r.ModelsChecked, len(r.MissingBinary), len(r.OfflineOnly))
}
