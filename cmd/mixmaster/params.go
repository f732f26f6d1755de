package main

import (
	mixmaster "github.com/tphakala/go-audio-mixmaster"
)

// ChainFlags are the four chain settings shared by every command.
type ChainFlags struct {
	Gain   float64 `default:"1" env:"MIXMASTER_GAIN" help:"Linear output gain (0 to 2)"`
	LowEQ  float64 `name:"low-eq" default:"0" env:"MIXMASTER_LOW_EQ" help:"Low shelf gain at 200 Hz in dB (-12 to 12)"`
	MidEQ  float64 `name:"mid-eq" default:"0" env:"MIXMASTER_MID_EQ" help:"Mid peak gain at 1 kHz in dB (-12 to 12)"`
	HighEQ float64 `name:"high-eq" default:"0" env:"MIXMASTER_HIGH_EQ" help:"High shelf gain at 3 kHz in dB (-12 to 12)"`
}

// params returns the flags as validated chain params.
func (f ChainFlags) params() (mixmaster.Params, error) {
	p := mixmaster.Params{Gain: f.Gain, LowEQ: f.LowEQ, MidEQ: f.MidEQ, HighEQ: f.HighEQ}
	if err := p.Validate(); err != nil {
		return mixmaster.Params{}, err
	}
	return p, nil
}
