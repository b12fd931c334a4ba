package sampler

import (
	"time"

	"codeberg.org/nyblom/macstats/internal/logger"
	"codeberg.org/nyblom/macstats/internal/platform"
	"codeberg.org/nyblom/macstats/internal/smc"
)

// KeyReader is the single controller primitive the sampler needs
type KeyReader interface {
	ReadKey(key smc.Key) (smc.RawReading, error)
}

// Snapshot is one point-in-time set of successfully read and decoded
// sensor values. A key missing from Values means its read or decode
// failed this cycle, never that the value was zero.
type Snapshot struct {
	Time   time.Time
	Values map[smc.Key]smc.TypedValue
}

// GroupFilter selects which sensor groups a cycle collects
type GroupFilter struct {
	CPUTemp    bool
	GPUTemp    bool
	SystemTemp bool
	Power      bool
	Fans       bool
}

// AllGroups enables every sensor group
func AllGroups() GroupFilter {
	return GroupFilter{CPUTemp: true, GPUTemp: true, SystemTemp: true, Power: true, Fans: true}
}

// Enabled reports whether the filter admits the given descriptor
func (f GroupFilter) Enabled(desc platform.Descriptor) bool {
	switch desc.Unit {
	case smc.Temperature:
		switch desc.Group {
		case platform.GroupCPU:
			return f.CPUTemp
		case platform.GroupGPU:
			return f.GPUTemp
		default:
			return f.SystemTemp
		}
	case smc.Power, smc.Voltage, smc.Current:
		return f.Power
	case smc.RotationSpeed:
		return f.Fans
	default:
		return false
	}
}

// Sampler polls the active sensor set and assembles best-effort snapshots
type Sampler struct {
	conn KeyReader
	reg  *platform.Registry
}

func New(conn KeyReader, reg *platform.Registry) *Sampler {
	return &Sampler{conn: conn, reg: reg}
}

// Sample reads every enabled active sensor once. A failed read or decode
// drops that key from the snapshot and the cycle continues; one bad
// sensor never aborts a cycle.
func (s *Sampler) Sample(filter GroupFilter) Snapshot {
	snapshot := Snapshot{
		Time:   time.Now(),
		Values: make(map[smc.Key]smc.TypedValue),
	}

	for _, desc := range s.reg.Sensors() {
		if !filter.Enabled(desc) {
			continue
		}

		raw, err := s.conn.ReadKey(desc.Key)
		if err != nil {
			logger.Debug().
				Str("key", string(desc.Key)).
				Str("name", desc.Name).
				Err(err).
				Msg("Sensor read failed, skipping")
			continue
		}

		value, err := smc.Decode(raw, desc.Unit)
		if err != nil {
			logger.Debug().
				Str("key", string(desc.Key)).
				Str("type", string(raw.Type)).
				Err(err).
				Msg("Sensor decode failed, skipping")
			continue
		}

		snapshot.Values[desc.Key] = value
	}

	return snapshot
}
