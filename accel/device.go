package accel

import (
	"fmt"
	"runtime"

	"github.com/katalvlaran/lvlbfs/fault"
)

// DeviceType is the device class used by Select.
type DeviceType uint8

const (
	// TypeGPU is a wide device: many compute units.
	TypeGPU DeviceType = iota
	// TypeCPU is a narrow device with a single compute unit.
	TypeCPU
)

// String returns "gpu" or "cpu".
func (t DeviceType) String() string {
	if t == TypeCPU {
		return "cpu"
	}

	return "gpu"
}

// DefaultMaxGroupSize is the largest work-group a host device accepts.
const DefaultMaxGroupSize = 1024

// Device describes one compute device.
type Device struct {
	// Index is the position in the enumeration that produced the Device.
	Index int
	Name  string
	Type  DeviceType
	// ComputeUnits bounds how many work-groups execute at once.
	ComputeUnits int
	// MaxGroupSize bounds Range.Local.
	MaxGroupSize int
	// MemoryLimit is the allocation budget in bytes; 0 means unbounded.
	MemoryLimit int64
}

// String renders "host-gpu (gpu, 8 units)".
func (d Device) String() string {
	return fmt.Sprintf("%s (%s, %d units)", d.Name, d.Type, d.ComputeUnits)
}

// Devices enumerates the host platform: a GPU-class device spanning every
// schedulable processor, then a CPU-class device with one compute unit.
func Devices() []Device {
	return []Device{
		{
			Index:        0,
			Name:         "host-gpu",
			Type:         TypeGPU,
			ComputeUnits: runtime.GOMAXPROCS(0),
			MaxGroupSize: DefaultMaxGroupSize,
		},
		{
			Index:        1,
			Name:         "host-cpu",
			Type:         TypeCPU,
			ComputeUnits: 1,
			MaxGroupSize: DefaultMaxGroupSize,
		},
	}
}

// Select returns the index-th device of the requested class.
// No matching device is a fault.Config error.
func Select(devices []Device, preferCPU bool, index int) (Device, error) {
	want := TypeGPU
	if preferCPU {
		want = TypeCPU
	}
	if index < 0 {
		return Device{}, fault.Configf("select-device", "negative device index %d", index)
	}
	seen := 0
	for _, d := range devices {
		if d.Type != want {
			continue
		}
		if seen == index {
			return d, nil
		}
		seen++
	}

	return Device{}, fault.Configf("select-device", "no %s device at index %d (%d available)", want, index, seen)
}
