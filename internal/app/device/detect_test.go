package device

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_ProbesOnce(t *testing.T) {
	var calls atomic.Int32
	probe := func() (Device, bool) {
		calls.Add(1)
		return Device{Kind: KindAccelerator, Backend: "cuda", Name: "Fake RTX"}, true
	}

	d := NewDetectorWithProbes(PreferAuto, nil, probe)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "cuda", d.Device().Backend)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, d.Device().IsAccelerator())
}

func TestDetector_FallsBackToCPU(t *testing.T) {
	none := func() (Device, bool) { return Device{}, false }

	for _, pref := range []string{PreferAuto, PreferGPU, ""} {
		d := NewDetectorWithProbes(pref, nil, none, none)
		assert.Equal(t, CPU, d.Device(), "preference %q", pref)
	}
}

func TestDetector_CPUPreferenceSkipsProbes(t *testing.T) {
	called := false
	probe := func() (Device, bool) {
		called = true
		return Device{Kind: KindAccelerator, Backend: "cuda"}, true
	}

	d := NewDetectorWithProbes("CPU", nil, probe)

	assert.Equal(t, KindCPU, d.Device().Kind)
	assert.False(t, called)
}

func TestDetector_FirstMatchingProbeWins(t *testing.T) {
	none := func() (Device, bool) { return Device{}, false }
	vulkan := func() (Device, bool) { return Device{Kind: KindAccelerator, Backend: "vulkan"}, true }
	metal := func() (Device, bool) { return Device{Kind: KindAccelerator, Backend: "metal"}, true }

	d := NewDetectorWithProbes(PreferAuto, nil, none, vulkan, metal)
	assert.Equal(t, "vulkan", d.Device().String())
}

func TestProbeDRM(t *testing.T) {
	root := t.TempDir()

	// integrated card without VRAM info
	require.NoError(t, os.MkdirAll(filepath.Join(root, "card0", "device"), 0o755))
	// connector node must be ignored
	require.NoError(t, os.MkdirAll(filepath.Join(root, "card1-HDMI-A-1", "device"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "card1-HDMI-A-1", "device", "mem_info_vram_total"), []byte("1\n"), 0o644))

	_, ok := probeDRM(root)
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "card2", "device"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "card2", "device", "mem_info_vram_total"), []byte("8589934592\n"), 0o644))

	dev, ok := probeDRM(root)
	require.True(t, ok)
	assert.Equal(t, "vulkan", dev.Backend)
	assert.Equal(t, KindAccelerator, dev.Kind)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "NVIDIA GeForce RTX 4090", firstLine("NVIDIA GeForce RTX 4090\nNVIDIA GeForce RTX 3090\n"))
	assert.Equal(t, "", firstLine("  \n"))
}
