package device

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Kind identifies the compute device class inference runs on.
type Kind string

const (
	CPU  Kind = "cpu"
	CUDA Kind = "cuda"
)

// Device describes the process-wide compute device. It is selected once
// at startup and never changes for the lifetime of the process.
type Device struct {
	Kind Kind
	Name string
	// FP16 is true when the device supports half precision inference.
	FP16 bool

	slots int64
}

// GPUAvailable reports whether an accelerator backs this device.
func (d Device) GPUAvailable() bool {
	return d.Kind == CUDA
}

// Slots returns how many inference calls may run on this device at once.
// A single accelerator always gets one slot.
func (d Device) Slots() int64 {
	return d.slots
}

func (d Device) String() string {
	return string(d.Kind)
}

// Select probes the host and returns the device descriptor. Mode "auto"
// prefers an accelerator when one is present; "cpu" and "cuda" force the
// choice. cpuSlots bounds concurrent inference for CPU-only deployments.
func Select(mode string, cpuSlots int) (Device, error) {
	if cpuSlots < 1 {
		cpuSlots = 1
	}

	switch mode {
	case "", "auto":
		if name, ok := probeCUDA(); ok {
			return Device{Kind: CUDA, Name: name, FP16: true, slots: 1}, nil
		}
		return Device{Kind: CPU, Name: "cpu", slots: int64(cpuSlots)}, nil
	case "cpu":
		return Device{Kind: CPU, Name: "cpu", slots: int64(cpuSlots)}, nil
	case "cuda":
		name, ok := probeCUDA()
		if !ok {
			name = "cuda"
		}
		return Device{Kind: CUDA, Name: name, FP16: true, slots: 1}, nil
	default:
		return Device{}, fmt.Errorf("unknown device mode %q (want auto, cpu or cuda)", mode)
	}
}

// probeCUDA asks nvidia-smi for the first GPU name. Any failure is
// treated as "no accelerator present".
func probeCUDA() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader").Output()
	if err != nil {
		return "", false
	}

	name := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if name == "" {
		return "", false
	}
	return name, true
}
