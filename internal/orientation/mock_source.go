// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock orientation source that sweeps the heading
// slowly around the compass with a gentle wobble on the tilt axes, so every
// binary can run without hardware.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := time.Since(m.start).Seconds()

	// ~30 deg/s sweep on the compass axis, expressed in radians.
	return Sample{
		Alpha: math.Mod(elapsed*30, 360) * math.Pi / 180.0,
		Beta:  (8 * math.Sin(elapsed*0.7)) * math.Pi / 180.0,
		Gamma: (5 * math.Cos(elapsed)) * math.Pi / 180.0,
	}, nil
}
