package device

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind distinguishes accelerators from the general-purpose processor.
type Kind string

const (
	KindAccelerator Kind = "accelerator"
	KindCPU         Kind = "cpu"
)

// Preference values accepted in configuration.
const (
	PreferAuto = "auto"
	PreferGPU  = "gpu"
	PreferCPU  = "cpu"
)

// Device is the compute target selected for inference.
type Device struct {
	Kind    Kind   `json:"kind"`
	Backend string `json:"backend"` // cuda, vulkan, metal, cpu
	Name    string `json:"name,omitempty"`
}

// CPU is the general-purpose fallback.
var CPU = Device{Kind: KindCPU, Backend: "cpu", Name: runtime.GOARCH}

// IsAccelerator reports whether inference may use a GPU.
func (d Device) IsAccelerator() bool {
	return d.Kind == KindAccelerator
}

func (d Device) String() string {
	return d.Backend
}

// Probe looks for one kind of accelerator and reports whether it found it.
type Probe func() (Device, bool)

// Detector runs the probes once per process and caches the answer.
type Detector struct {
	preference string
	probes     []Probe
	logger     *zap.Logger

	once   sync.Once
	device Device
}

// NewDetector builds a detector with the default probe order:
// CUDA, discrete GPU via sysfs, Apple Metal.
func NewDetector(preference string, logger *zap.Logger) *Detector {
	return NewDetectorWithProbes(preference, logger, ProbeCUDA, ProbeSysfsGPU, ProbeMetal)
}

// NewDetectorWithProbes builds a detector with explicit probes.
func NewDetectorWithProbes(preference string, logger *zap.Logger, probes ...Probe) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	preference = strings.ToLower(strings.TrimSpace(preference))
	if preference == "" {
		preference = PreferAuto
	}
	return &Detector{
		preference: preference,
		probes:     probes,
		logger:     logger,
	}
}

// Device returns the selected device. Probing happens on the first call only.
func (d *Detector) Device() Device {
	d.once.Do(func() {
		d.device = d.detect()
		d.logger.Info("compute device selected",
			zap.String("backend", d.device.Backend),
			zap.String("kind", string(d.device.Kind)),
			zap.String("name", d.device.Name),
			zap.String("preference", d.preference),
		)
	})
	return d.device
}

func (d *Detector) detect() Device {
	if d.preference == PreferCPU {
		return CPU
	}
	for _, probe := range d.probes {
		if dev, ok := probe(); ok {
			return dev
		}
	}
	if d.preference == PreferGPU {
		d.logger.Warn("gpu requested but none detected, falling back to cpu")
	}
	return CPU
}

// ProbeCUDA asks nvidia-smi for the first visible GPU.
func ProbeCUDA() (Device, bool) {
	path, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return Device{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--query-gpu=name", "--format=csv,noheader").Output()
	if err != nil {
		return Device{}, false
	}
	name := firstLine(string(out))
	if name == "" {
		return Device{}, false
	}
	return Device{Kind: KindAccelerator, Backend: "cuda", Name: name}, true
}

// ProbeSysfsGPU scans /sys/class/drm for a discrete GPU that reports VRAM.
func ProbeSysfsGPU() (Device, bool) {
	return probeDRM("/sys/class/drm")
}

func probeDRM(root string) (Device, bool) {
	cards, err := filepath.Glob(filepath.Join(root, "card[0-9]*"))
	if err != nil {
		return Device{}, false
	}

	for _, card := range cards {
		// Skip connector nodes (cardN-HDMI-A-1)
		if strings.Contains(filepath.Base(card), "-") {
			continue
		}

		deviceDir := filepath.Join(card, "device")
		vram, err := readSysfsInt(filepath.Join(deviceDir, "mem_info_vram_total"))
		if err != nil || vram == 0 {
			continue
		}

		name := "GPU"
		if driverLink, err := os.Readlink(filepath.Join(deviceDir, "driver")); err == nil {
			name = filepath.Base(driverLink)
		}
		return Device{Kind: KindAccelerator, Backend: "vulkan", Name: name}, true
	}

	return Device{}, false
}

// ProbeMetal reports Apple silicon, where whisper.cpp uses Metal by default.
func ProbeMetal() (Device, bool) {
	if runtime.GOOS == "darwin" && runtime.GOARCH == "arm64" {
		return Device{Kind: KindAccelerator, Backend: "metal", Name: "apple-silicon"}, true
	}
	return Device{}, false
}

func readSysfsInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
