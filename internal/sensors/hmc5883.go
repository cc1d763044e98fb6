// Package sensors holds the hardware-backed sample sources. Only the
// magnetometer lives here; the GPS receiver is serial and handled by the
// GPS producer directly.
package sensors

import (
	"errors"
	"fmt"
	"io/fs"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/target_navigator/internal/nav"
	"github.com/relabs-tech/target_navigator/internal/orientation"
)

// HMC5883L register map (datasheet table 2).
const (
	regConfigA = 0x00 // sample averaging + output rate
	regConfigB = 0x01 // gain
	regMode    = 0x02 // operating mode
	regDataX   = 0x03 // six data bytes follow: X, Z, Y, MSB first
	regIDA     = 0x0A // identification, reads "H43"
)

const (
	cfgA8Avg15Hz  = 0x70 // 8-sample averaging, 15 Hz output
	cfgBGain1_3Ga = 0x20 // +/-1.3 Gauss range
	modeContinous = 0x00
)

// HMC5883 drives an HMC5883L magnetometer over I2C with raw register access
// and serves as the compass-only orientation source.
type HMC5883 struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// NewHMC5883 opens the I2C bus, verifies the chip identification, and puts
// the device into continuous measurement mode. Open failures are wrapped in
// nav.ErrPermissionDenied or nav.ErrSourceUnavailable so the caller can tell
// a settings problem from missing hardware.
func NewHMC5883(busName string, addr uint16) (*HMC5883, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %v", nav.ErrSourceUnavailable, err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: i2c bus %q: %v", nav.ErrPermissionDenied, busName, err)
		}
		return nil, fmt.Errorf("%w: i2c bus %q: %v", nav.ErrSourceUnavailable, busName, err)
	}

	m := &HMC5883{bus: bus, dev: i2c.Dev{Bus: bus, Addr: addr}}

	id := make([]byte, 3)
	if err := m.dev.Tx([]byte{regIDA}, id); err != nil {
		bus.Close()
		return nil, fmt.Errorf("%w: magnetometer id read: %v", nav.ErrSourceUnavailable, err)
	}
	if string(id) != "H43" {
		bus.Close()
		return nil, fmt.Errorf("%w: unexpected magnetometer id %q at 0x%X", nav.ErrSourceUnavailable, id, addr)
	}

	for _, w := range [][2]byte{
		{regConfigA, cfgA8Avg15Hz},
		{regConfigB, cfgBGain1_3Ga},
		{regMode, modeContinous},
	} {
		if err := m.dev.Tx([]byte{w[0], w[1]}, nil); err != nil {
			bus.Close()
			return nil, fmt.Errorf("%w: magnetometer reg 0x%02X write: %v", nav.ErrSourceUnavailable, w[0], err)
		}
	}

	return m, nil
}

// Sense reads one magnetic vector. The device orders the axes X, Z, Y in its
// data registers.
func (m *HMC5883) Sense() (orientation.MagneticVector, error) {
	raw := make([]byte, 6)
	if err := m.dev.Tx([]byte{regDataX}, raw); err != nil {
		return orientation.MagneticVector{}, fmt.Errorf("magnetometer read: %w", err)
	}

	x := int16(uint16(raw[0])<<8 | uint16(raw[1]))
	z := int16(uint16(raw[2])<<8 | uint16(raw[3]))
	y := int16(uint16(raw[4])<<8 | uint16(raw[5]))

	return orientation.MagneticVector{
		X: float64(x),
		Y: float64(y),
		Z: float64(z),
	}, nil
}

// Close releases the I2C bus. Safe to call more than once.
func (m *HMC5883) Close() error {
	if m.bus == nil {
		return nil
	}
	err := m.bus.Close()
	m.bus = nil
	return err
}
