package registry

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"modeld/pkg/types"
)

func init() {
	RegisterDeviceKind("host", newHostDevice)
}

// hostDevice reports the machine's own RAM and CPU as a device, grounded in
// takuphilchan-offgrid-llm's gopsutil-based resource monitor.
type hostDevice struct {
	name string
}

func newHostDevice(name string, _ map[string]any) (DeviceAdapter, error) {
	return &hostDevice{name: name}, nil
}

func (h *hostDevice) Name() string { return h.name }

func (h *hostDevice) Online() bool {
	_, err := mem.VirtualMemory()
	return err == nil
}

func (h *hostDevice) Snapshot() types.DeviceSnapshot {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return types.DeviceSnapshot{Kind: "host", MemoryKind: "ram"}
	}
	util := 0.0
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		util = pct[0]
	}
	return types.DeviceSnapshot{
		Kind:        "host",
		MemoryKind:  "ram",
		TotalMB:     int(vm.Total / 1024 / 1024),
		FreeMB:      int((vm.Total - vm.Used) / 1024 / 1024),
		UsedMB:      int(vm.Used / 1024 / 1024),
		UtilPercent: util,
	}
}
