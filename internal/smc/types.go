package smc

import (
	"fmt"
)

// Key identifies a single SMC register. Keys are exactly four printable
// ASCII characters, e.g. "TC0P" or "F0Ac".
type Key string

// ParseKey validates a raw string as an SMC key
func ParseKey(s string) (Key, error) {
	if len(s) != 4 {
		return "", errFactory.WithData(ErrInvalidKey, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return "", errFactory.WithData(ErrInvalidKey, s)
		}
	}

	return Key(s), nil
}

// TypeTag is the four-character encoding tag the controller reports
// alongside a raw read, e.g. "flt ", "fp5b", "sp78", "ui16".
type TypeTag string

// RawReading is the unmodified result of reading one key at one instant
type RawReading struct {
	Key  Key
	Type TypeTag
	Data []byte
}

// Size returns the byte length the controller reported for this reading
func (r RawReading) Size() int {
	return len(r.Data)
}

// Unit classifies a sensor value into its physical dimension
type Unit int

const (
	Temperature Unit = iota // degrees Celsius
	Power                   // watts
	Voltage                 // volts
	Current                 // amperes
	RotationSpeed           // revolutions per minute
)

func (u Unit) String() string {
	switch u {
	case Temperature:
		return "temperature"
	case Power:
		return "power"
	case Voltage:
		return "voltage"
	case Current:
		return "current"
	case RotationSpeed:
		return "fan_speed"
	default:
		return "unknown"
	}
}

// Symbol returns the unit suffix used when rendering a value
func (u Unit) Symbol() string {
	switch u {
	case Temperature:
		return "°C"
	case Power:
		return "W"
	case Voltage:
		return "V"
	case Current:
		return "A"
	case RotationSpeed:
		return "RPM"
	default:
		return ""
	}
}

// TypedValue is a decoded sensor value in its natural physical unit.
// It is only ever produced by Decode.
type TypedValue struct {
	unit  Unit
	value float64
}

// Celsius builds a temperature value
func Celsius(v float64) TypedValue {
	return TypedValue{unit: Temperature, value: v}
}

// Watts builds a power value
func Watts(v float64) TypedValue {
	return TypedValue{unit: Power, value: v}
}

// Volts builds a voltage value
func Volts(v float64) TypedValue {
	return TypedValue{unit: Voltage, value: v}
}

// Amperes builds a current value
func Amperes(v float64) TypedValue {
	return TypedValue{unit: Current, value: v}
}

// RPM builds a rotation speed value
func RPM(v float64) TypedValue {
	return TypedValue{unit: RotationSpeed, value: v}
}

// Unit returns the physical dimension of the value
func (v TypedValue) Unit() Unit {
	return v.unit
}

// Float returns the numeric value in the unit's natural scale
func (v TypedValue) Float() float64 {
	return v.value
}

func (v TypedValue) String() string {
	return fmt.Sprintf("%.2f%s", v.value, v.unit.Symbol())
}
