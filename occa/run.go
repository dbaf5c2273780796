//go:build occa

package occa

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
	log "github.com/sirupsen/logrus"
)

// backends are tried in order by NewDevice when no properties are given
var backends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// Device runs batch kernels on one OCCA device
type Device struct {
	device *gocca.OCCADevice
}

// NewDevice opens a device from OCCA JSON properties, or the first working
// parallel backend when props is empty
func NewDevice(props string) (*Device, error) {
	if props != "" {
		device, err := gocca.NewDevice(props)
		if err != nil {
			return nil, fmt.Errorf("creating device %s: %w", props, err)
		}
		return &Device{device: device}, nil
	}
	for _, p := range backends {
		device, err := gocca.NewDevice(p)
		if err == nil {
			log.Debugf("created %s device", device.Mode())
			return &Device{device: device}, nil
		}
	}
	return nil, fmt.Errorf("no OCCA backend available")
}

func (d *Device) Mode() string { return d.device.Mode() }

func (d *Device) Free() { d.device.Free() }

func (d *Device) build(src, name string) (*gocca.OCCAKernel, error) {
	var (
		k   *gocca.OCCAKernel
		err error
	)
	if d.device.Mode() == "OpenMP" {
		// OpenMP builds do not get -O3 by default
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		k, err = d.device.BuildKernelFromString(src, name, props)
	} else {
		k, err = d.device.BuildKernelFromString(src, name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if k == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}
	return k, nil
}

// Run builds the kernel name from src and evaluates it on every cell of b.
// The result holds one element tensor per cell.
func (d *Device) Run(src, name string, l Layout, b *Batch) ([][]float64, error) {
	if b.K == 0 {
		return nil, nil
	}
	k, err := d.build(src, name)
	if err != nil {
		return nil, err
	}
	defer k.Free()

	// Empty arrays still need a valid device pointer
	W := b.W
	if len(W) == 0 {
		W = []float64{0}
	}
	F := b.F
	if len(F) == 0 {
		F = []int32{0}
	}
	AK := make([]float64, b.K*l.Size)

	wMem := d.device.Malloc(int64(len(W)*8), unsafe.Pointer(&W[0]), nil)
	defer wMem.Free()
	xMem := d.device.Malloc(int64(len(b.X)*8), unsafe.Pointer(&b.X[0]), nil)
	defer xMem.Free()
	fMem := d.device.Malloc(int64(len(F)*4), unsafe.Pointer(&F[0]), nil)
	defer fMem.Free()
	aMem := d.device.Malloc(int64(len(AK)*8), nil, nil)
	defer aMem.Free()

	if err := k.RunWithArgs(int32(b.K), wMem, xMem, fMem, aMem); err != nil {
		return nil, fmt.Errorf("kernel execution failed: %w", err)
	}
	d.device.Finish()
	aMem.CopyTo(unsafe.Pointer(&AK[0]), int64(len(AK)*8))
	log.Debugf("%s: %d cells on %s", name, b.K, d.device.Mode())
	return l.Split(AK), nil
}
