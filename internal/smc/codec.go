package smc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Scale factors for sensors that report integer milli-units
const milliPerUnit = 1000.0

// Decode interprets a raw reading against its controller-declared type tag
// and wraps the result in the physical unit the sensor catalog declares for
// the key. The catalog's unit is authoritative: the encoding is chosen by
// the type tag alone, never guessed from the payload length. Unrecognized
// tags fail with a decode error instead of a silently misread value.
func Decode(raw RawReading, unit Unit) (TypedValue, error) {
	scalar, integral, err := decodeScalar(raw)
	if err != nil {
		return TypedValue{}, err
	}

	// Voltage and current registers on most boards report integer
	// millivolts/milliamps. Fixed-point and float encodings are already
	// in natural units.
	if integral {
		switch unit {
		case Voltage, Current:
			scalar /= milliPerUnit
		}
	}

	switch unit {
	case Temperature:
		return Celsius(scalar), nil
	case Power:
		return Watts(scalar), nil
	case Voltage:
		return Volts(scalar), nil
	case Current:
		return Amperes(scalar), nil
	case RotationSpeed:
		return RPM(scalar), nil
	default:
		return TypedValue{}, errFactory.WithData(ErrDecodeFailed, fmt.Sprintf("unknown unit %d", unit))
	}
}

// decodeScalar converts the payload to a float64 according to the type tag.
// The second return reports whether the encoding was a plain integer, which
// decides milli-unit scaling for voltage/current sensors.
func decodeScalar(raw RawReading) (float64, bool, error) {
	tag := raw.Type
	data := raw.Data

	switch tag {
	case "flt ":
		// IEEE-754 float32 in SMC native (little-endian) byte order
		if len(data) != 4 {
			return 0, false, decodeErr(raw)
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data))), false, nil

	case "flag":
		if len(data) < 1 {
			return 0, false, decodeErr(raw)
		}
		if data[0] != 0 {
			return 1, true, nil
		}
		return 0, true, nil

	case "ui8 ":
		if len(data) != 1 {
			return 0, false, decodeErr(raw)
		}
		return float64(data[0]), true, nil
	case "ui16":
		if len(data) != 2 {
			return 0, false, decodeErr(raw)
		}
		return float64(binary.BigEndian.Uint16(data)), true, nil
	case "ui32":
		if len(data) != 4 {
			return 0, false, decodeErr(raw)
		}
		return float64(binary.BigEndian.Uint32(data)), true, nil
	case "ui64":
		if len(data) != 8 {
			return 0, false, decodeErr(raw)
		}
		return float64(binary.BigEndian.Uint64(data)), true, nil

	case "si8 ":
		if len(data) != 1 {
			return 0, false, decodeErr(raw)
		}
		return float64(int8(data[0])), true, nil
	case "si16":
		if len(data) != 2 {
			return 0, false, decodeErr(raw)
		}
		return float64(int16(binary.BigEndian.Uint16(data))), true, nil
	case "si32":
		if len(data) != 4 {
			return 0, false, decodeErr(raw)
		}
		return float64(int32(binary.BigEndian.Uint32(data))), true, nil
	case "si64":
		if len(data) != 8 {
			return 0, false, decodeErr(raw)
		}
		return float64(int64(binary.BigEndian.Uint64(data))), true, nil

	case "hex_":
		switch len(data) {
		case 1:
			return float64(data[0]), true, nil
		case 2:
			return float64(binary.BigEndian.Uint16(data)), true, nil
		case 4:
			return float64(binary.BigEndian.Uint32(data)), true, nil
		case 8:
			return float64(binary.BigEndian.Uint64(data)), true, nil
		default:
			return 0, false, decodeErr(raw)
		}
	}

	// fpXY / spXY fixed-point families: X integer bits, Y fractional bits,
	// both hex digits in the tag itself.
	if len(tag) == 4 && (tag[0] == 'f' || tag[0] == 's') && tag[1] == 'p' {
		intBits, ok1 := hexDigit(tag[2])
		fracBits, ok2 := hexDigit(tag[3])
		if !ok1 || !ok2 || len(data) != 2 {
			return 0, false, decodeErr(raw)
		}
		scale := float64(uint16(1) << fracBits)
		if tag[0] == 'f' {
			// unsigned: X + Y == 16
			if intBits+fracBits != 16 {
				return 0, false, decodeErr(raw)
			}
			return float64(binary.BigEndian.Uint16(data)) / scale, false, nil
		}
		// signed: X + Y == 15 (one bit for the sign)
		if intBits+fracBits != 15 {
			return 0, false, decodeErr(raw)
		}
		return float64(int16(binary.BigEndian.Uint16(data))) / scale, false, nil
	}

	return 0, false, decodeErr(raw)
}

func decodeErr(raw RawReading) error {
	return errFactory.WithData(ErrDecodeFailed,
		fmt.Sprintf("key %s type %q size %d", raw.Key, string(raw.Type), len(raw.Data)))
}

func hexDigit(c byte) (uint, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint(c - '0'), true
	case c >= 'a' && c <= 'f':
		return uint(c-'a') + 10, true
	default:
		return 0, false
	}
}
