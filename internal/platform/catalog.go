package platform

import (
	"codeberg.org/nyblom/macstats/internal/smc"
)

// Group classifies a sensor by the component it belongs to
type Group int

const (
	GroupCPU Group = iota
	GroupGPU
	GroupSystem
	GroupSensor
)

func (g Group) String() string {
	switch g {
	case GroupCPU:
		return "cpu"
	case GroupGPU:
		return "gpu"
	case GroupSystem:
		return "system"
	case GroupSensor:
		return "sensor"
	default:
		return "unknown"
	}
}

// Descriptor describes one catalog sensor: its SMC key, what it measures
// and which platforms expose it. The same key can carry a different
// meaning on a different generation, so descriptors are only ever resolved
// through a Registry built for a detected platform.
type Descriptor struct {
	Key       smc.Key
	Name      string
	Group     Group
	Unit      smc.Unit
	Platforms []Platform
	// Average marks multi-instance sensors (per-core temperatures) that
	// dashboards typically aggregate. Sampling still reports each
	// instance individually.
	Average bool
}

// catalog is the static sensor table, loaded once and never mutated
var catalog = []Descriptor{
	// Universal temperature sensors
	{Key: "TC0D", Name: "CPU diode", Group: GroupCPU, Unit: smc.Temperature, Platforms: All()},
	{Key: "TC0F", Name: "CPU diode filtered", Group: GroupCPU, Unit: smc.Temperature, Platforms: All()},
	{Key: "TC0P", Name: "CPU proximity", Group: GroupCPU, Unit: smc.Temperature, Platforms: All()},
	{Key: "TCGC", Name: "GPU Intel Graphics", Group: GroupGPU, Unit: smc.Temperature, Platforms: All()},
	{Key: "TG0P", Name: "GPU proximity", Group: GroupGPU, Unit: smc.Temperature, Platforms: All()},
	{Key: "TGDD", Name: "GPU AMD Radeon", Group: GroupGPU, Unit: smc.Temperature, Platforms: All()},

	// Intel-only sensors
	{Key: "Th1H", Name: "Heatpipe 1", Group: GroupSensor, Unit: smc.Temperature, Platforms: []Platform{Intel}},
	{Key: "Th2H", Name: "Heatpipe 2", Group: GroupSensor, Unit: smc.Temperature, Platforms: []Platform{Intel}},
	{Key: "Ts0P", Name: "Palm rest 1", Group: GroupSystem, Unit: smc.Temperature, Platforms: []Platform{Intel}},
	{Key: "Ts1P", Name: "Palm rest 2", Group: GroupSystem, Unit: smc.Temperature, Platforms: []Platform{Intel}},

	// M1 generation CPU cores
	{Key: "Tp09", Name: "CPU efficiency core 1", Group: GroupCPU, Unit: smc.Temperature, Platforms: M1Gen(), Average: true},
	{Key: "Tp0T", Name: "CPU efficiency core 2", Group: GroupCPU, Unit: smc.Temperature, Platforms: M1Gen(), Average: true},
	{Key: "Tp01", Name: "CPU performance core 1", Group: GroupCPU, Unit: smc.Temperature, Platforms: M1Gen(), Average: true},
	{Key: "Tp05", Name: "CPU performance core 2", Group: GroupCPU, Unit: smc.Temperature, Platforms: M1Gen(), Average: true},

	// M1 generation GPU
	{Key: "Tg05", Name: "GPU 1", Group: GroupGPU, Unit: smc.Temperature, Platforms: M1Gen(), Average: true},
	{Key: "Tg0D", Name: "GPU 2", Group: GroupGPU, Unit: smc.Temperature, Platforms: M1Gen(), Average: true},

	// M2 generation CPU cores
	{Key: "Tp1h", Name: "CPU efficiency core 1", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp1t", Name: "CPU efficiency core 2", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp1p", Name: "CPU efficiency core 3", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp1l", Name: "CPU efficiency core 4", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp01", Name: "CPU performance core 1", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp05", Name: "CPU performance core 2", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp09", Name: "CPU performance core 3", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp0D", Name: "CPU performance core 4", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp0X", Name: "CPU performance core 5", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp0b", Name: "CPU performance core 6", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp0f", Name: "CPU performance core 7", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tp0j", Name: "CPU performance core 8", Group: GroupCPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},

	// M2 generation GPU
	{Key: "Tg0f", Name: "GPU 1", Group: GroupGPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},
	{Key: "Tg0j", Name: "GPU 2", Group: GroupGPU, Unit: smc.Temperature, Platforms: M2Gen(), Average: true},

	// M3 generation CPU cores
	{Key: "Te05", Name: "CPU efficiency core 1", Group: GroupCPU, Unit: smc.Temperature, Platforms: M3Gen(), Average: true},
	{Key: "Te0L", Name: "CPU efficiency core 2", Group: GroupCPU, Unit: smc.Temperature, Platforms: M3Gen(), Average: true},
	{Key: "Tf04", Name: "CPU performance core 1", Group: GroupCPU, Unit: smc.Temperature, Platforms: M3Gen(), Average: true},
	{Key: "Tf09", Name: "CPU performance core 2", Group: GroupCPU, Unit: smc.Temperature, Platforms: M3Gen(), Average: true},

	// M3 generation GPU
	{Key: "Tf14", Name: "GPU 1", Group: GroupGPU, Unit: smc.Temperature, Platforms: M3Gen(), Average: true},
	{Key: "Tf18", Name: "GPU 2", Group: GroupGPU, Unit: smc.Temperature, Platforms: M3Gen(), Average: true},

	// M4 generation CPU cores
	{Key: "Te05", Name: "CPU efficiency core 1", Group: GroupCPU, Unit: smc.Temperature, Platforms: M4Gen(), Average: true},
	{Key: "Te0S", Name: "CPU efficiency core 2", Group: GroupCPU, Unit: smc.Temperature, Platforms: M4Gen(), Average: true},
	{Key: "Tp01", Name: "CPU performance core 1", Group: GroupCPU, Unit: smc.Temperature, Platforms: M4Gen(), Average: true},
	{Key: "Tp05", Name: "CPU performance core 2", Group: GroupCPU, Unit: smc.Temperature, Platforms: M4Gen(), Average: true},

	// M4 generation GPU, split by variant
	{Key: "Tg0G", Name: "GPU 1", Group: GroupGPU, Unit: smc.Temperature, Platforms: []Platform{M4}, Average: true},
	{Key: "Tg1U", Name: "GPU 1", Group: GroupGPU, Unit: smc.Temperature, Platforms: []Platform{M4Pro, M4Max, M4Ultra}, Average: true},

	// Power sensors
	{Key: "PCPC", Name: "CPU Package", Group: GroupCPU, Unit: smc.Power, Platforms: All()},
	{Key: "PCPT", Name: "CPU Package total", Group: GroupCPU, Unit: smc.Power, Platforms: All()},
	{Key: "PG0R", Name: "GPU 1", Group: GroupGPU, Unit: smc.Power, Platforms: All()},
	{Key: "PDTR", Name: "DC In", Group: GroupSensor, Unit: smc.Power, Platforms: All()},
	{Key: "PSTR", Name: "System Total", Group: GroupSensor, Unit: smc.Power, Platforms: All()},

	// DC In rail
	{Key: "VD0R", Name: "DC In", Group: GroupSensor, Unit: smc.Voltage, Platforms: All()},
	{Key: "ID0R", Name: "DC In", Group: GroupSensor, Unit: smc.Current, Platforms: All()},

	// Fans. Fanless machines simply do not expose the keys; the sampler
	// skips them like any other absent sensor.
	{Key: "F0Ac", Name: "Fan 1", Group: GroupSensor, Unit: smc.RotationSpeed, Platforms: All()},
	{Key: "F1Ac", Name: "Fan 2", Group: GroupSensor, Unit: smc.RotationSpeed, Platforms: All()},
}

// Catalog returns the full static sensor table
func Catalog() []Descriptor {
	return catalog
}

// Registry resolves sensors relative to one detected platform. The active
// set is fixed at construction and is always a strict subset of the
// catalog.
type Registry struct {
	platform Platform
	active   []Descriptor
	byKey    map[smc.Key]Descriptor
}

// NewRegistry filters the catalog down to the sensors the given platform
// exposes
func NewRegistry(p Platform) *Registry {
	r := &Registry{
		platform: p,
		byKey:    make(map[smc.Key]Descriptor),
	}

	for _, desc := range catalog {
		if !contains(desc.Platforms, p) {
			continue
		}
		r.active = append(r.active, desc)
		r.byKey[desc.Key] = desc
	}

	return r
}

// Platform returns the platform this registry was built for
func (r *Registry) Platform() Platform {
	return r.platform
}

// Sensors returns the active descriptor set for this platform
func (r *Registry) Sensors() []Descriptor {
	return r.active
}

// HasSensor reports whether the platform exposes the given key
func (r *Registry) HasSensor(key smc.Key) bool {
	_, ok := r.byKey[key]
	return ok
}

// Resolve looks up the descriptor for a key on this platform
func (r *Registry) Resolve(key smc.Key) (Descriptor, bool) {
	desc, ok := r.byKey[key]
	return desc, ok
}
