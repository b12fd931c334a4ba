package platform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/nyblom/macstats/internal/platform"
)

func TestRegistryActiveSetIsCatalogSubset(t *testing.T) {
	for _, p := range platform.All() {
		reg := platform.NewRegistry(p)

		assert.LessOrEqual(t, len(reg.Sensors()), len(platform.Catalog()))
		for _, desc := range reg.Sensors() {
			assert.Contains(t, desc.Platforms, p,
				"sensor %s active on %s without membership", desc.Key, p)
		}
	}
}

func TestRegistryFiltersByPlatform(t *testing.T) {
	m2 := platform.NewRegistry(platform.M2)

	assert.True(t, m2.HasSensor("Tp01"))
	assert.True(t, m2.HasSensor("Tg0f"))
	assert.True(t, m2.HasSensor("PSTR"))
	assert.False(t, m2.HasSensor("Th1H"), "Intel heatpipe sensor must not be active on M2")
	assert.False(t, m2.HasSensor("Te05"), "M3 efficiency core key must not be active on M2")

	intel := platform.NewRegistry(platform.Intel)

	assert.True(t, intel.HasSensor("Th1H"))
	assert.True(t, intel.HasSensor("Ts0P"))
	assert.False(t, intel.HasSensor("Tp01"))
}

func TestSameKeyResolvesPerGeneration(t *testing.T) {
	// Tp09 is an efficiency core on M1 hardware but a performance core
	// on M2 hardware; the registry must resolve per platform
	m1 := platform.NewRegistry(platform.M1)
	m2 := platform.NewRegistry(platform.M2Pro)

	descM1, ok := m1.Resolve("Tp09")
	require.True(t, ok)
	descM2, ok := m2.Resolve("Tp09")
	require.True(t, ok)

	assert.Equal(t, "CPU efficiency core 1", descM1.Name)
	assert.Equal(t, "CPU performance core 3", descM2.Name)
}

func TestResolveUnknownKey(t *testing.T) {
	reg := platform.NewRegistry(platform.M3)

	_, ok := reg.Resolve("ZZZZ")
	assert.False(t, ok)
}

func TestRegistryPlatform(t *testing.T) {
	reg := platform.NewRegistry(platform.M4Pro)

	assert.Equal(t, platform.M4Pro, reg.Platform())
	assert.True(t, reg.HasSensor("Tg1U"))
	assert.False(t, reg.HasSensor("Tg0G"), "base M4 GPU key must not be active on M4 Pro")
}

func TestCatalogDescriptorsAreWellFormed(t *testing.T) {
	for _, desc := range platform.Catalog() {
		assert.Len(t, string(desc.Key), 4, "key %q must be four characters", desc.Key)
		assert.NotEmpty(t, desc.Name)
		assert.NotEmpty(t, desc.Platforms)
	}
}
