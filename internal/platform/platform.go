package platform

import (
	"strings"
)

// Platform identifies the CPU architecture and, for Apple silicon, the
// generation and performance tier. The set is closed: detection always
// classifies into exactly one of these values.
type Platform int

const (
	Intel Platform = iota
	M1
	M1Pro
	M1Max
	M1Ultra
	M2
	M2Pro
	M2Max
	M2Ultra
	M3
	M3Pro
	M3Max
	M3Ultra
	M4
	M4Pro
	M4Max
	M4Ultra
)

var platformNames = map[Platform]string{
	Intel:   "intel",
	M1:      "m1",
	M1Pro:   "m1_pro",
	M1Max:   "m1_max",
	M1Ultra: "m1_ultra",
	M2:      "m2",
	M2Pro:   "m2_pro",
	M2Max:   "m2_max",
	M2Ultra: "m2_ultra",
	M3:      "m3",
	M3Pro:   "m3_pro",
	M3Max:   "m3_max",
	M3Ultra: "m3_ultra",
	M4:      "m4",
	M4Pro:   "m4_pro",
	M4Max:   "m4_max",
	M4Ultra: "m4_ultra",
}

func (p Platform) String() string {
	if name, ok := platformNames[p]; ok {
		return name
	}

	return "unknown"
}

// IsIntel reports whether this is an Intel-based machine
func (p Platform) IsIntel() bool {
	return p == Intel
}

// IsAppleSilicon reports whether this is any M-series chip
func (p Platform) IsAppleSilicon() bool {
	return !p.IsIntel()
}

// Generation returns the M-series generation number, 0 for Intel
func (p Platform) Generation() int {
	switch p {
	case M1, M1Pro, M1Max, M1Ultra:
		return 1
	case M2, M2Pro, M2Max, M2Ultra:
		return 2
	case M3, M3Pro, M3Max, M3Ultra:
		return 3
	case M4, M4Pro, M4Max, M4Ultra:
		return 4
	default:
		return 0
	}
}

// Named platform groupings. Sensor membership in the catalog is expressed
// through these sets, never through string matching.

// All returns every supported platform
func All() []Platform {
	all := []Platform{Intel}
	return append(all, AppleSilicon()...)
}

// AppleSilicon returns every M-series platform
func AppleSilicon() []Platform {
	var out []Platform
	out = append(out, M1Gen()...)
	out = append(out, M2Gen()...)
	out = append(out, M3Gen()...)
	out = append(out, M4Gen()...)
	return out
}

// M1Gen returns the M1 generation variants
func M1Gen() []Platform {
	return []Platform{M1, M1Pro, M1Max, M1Ultra}
}

// M2Gen returns the M2 generation variants
func M2Gen() []Platform {
	return []Platform{M2, M2Pro, M2Max, M2Ultra}
}

// M3Gen returns the M3 generation variants
func M3Gen() []Platform {
	return []Platform{M3, M3Pro, M3Max, M3Ultra}
}

// M4Gen returns the M4 generation variants
func M4Gen() []Platform {
	return []Platform{M4, M4Pro, M4Max, M4Ultra}
}

// Detect classifies a CPU brand string into a platform. Detection is a
// pure function: the same string always yields the same platform.
// Brand strings that match nothing known fall back to M1, matching the
// behavior sensor consumers have come to rely on.
func Detect(brand string) Platform {
	brand = strings.ToLower(brand)

	switch {
	case strings.Contains(brand, "apple m1"):
		return tier(brand, M1, M1Pro, M1Max, M1Ultra)
	case strings.Contains(brand, "apple m2"):
		return tier(brand, M2, M2Pro, M2Max, M2Ultra)
	case strings.Contains(brand, "apple m3"):
		return tier(brand, M3, M3Pro, M3Max, M3Ultra)
	case strings.Contains(brand, "apple m4"):
		return tier(brand, M4, M4Pro, M4Max, M4Ultra)
	case strings.Contains(brand, "intel"):
		return Intel
	default:
		return M1
	}
}

func tier(brand string, base, pro, max, ultra Platform) Platform {
	switch {
	case strings.Contains(brand, "ultra"):
		return ultra
	case strings.Contains(brand, "max"):
		return max
	case strings.Contains(brand, "pro"):
		return pro
	default:
		return base
	}
}

func contains(set []Platform, p Platform) bool {
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}

	return false
}
