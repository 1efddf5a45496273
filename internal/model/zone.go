package model

import "strings"

// ZoneState is the on/off state of an irrigation zone.
type ZoneState string

const (
	ZoneOn  ZoneState = "on"
	ZoneOff ZoneState = "off"
)

// ParseZoneState maps "on" (any case) to ZoneOn; anything else is off.
func ParseZoneState(s string) ZoneState {
	if strings.EqualFold(strings.TrimSpace(s), string(ZoneOn)) {
		return ZoneOn
	}
	return ZoneOff
}

// Next returns the opposite state.
func (s ZoneState) Next() ZoneState {
	if s == ZoneOn {
		return ZoneOff
	}
	return ZoneOn
}

// Upper is the label form ("ON" / "OFF").
func (s ZoneState) Upper() string { return strings.ToUpper(string(s)) }

// Zone describes one addressable output channel on the device.
type Zone struct {
	ID    string    `yaml:"id" json:"id"`
	Name  string    `yaml:"name,omitempty" json:"name,omitempty"`
	State ZoneState `yaml:"state,omitempty" json:"state,omitempty"`
}
