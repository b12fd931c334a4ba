package platform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/nyblom/macstats/internal/platform"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		brand string
		want  platform.Platform
	}{
		{"Apple M1", platform.M1},
		{"Apple M1 Pro", platform.M1Pro},
		{"Apple M1 Max", platform.M1Max},
		{"Apple M1 Ultra", platform.M1Ultra},
		{"Apple M2", platform.M2},
		{"Apple M2 Pro", platform.M2Pro},
		{"Apple M2 Max", platform.M2Max},
		{"Apple M3", platform.M3},
		{"Apple M3 Max", platform.M3Max},
		{"Apple M4", platform.M4},
		{"Apple M4 Pro", platform.M4Pro},
		{"Intel(R) Core(TM) i9-9980HK CPU @ 2.40GHz", platform.Intel},
		{"Intel(R) Core(TM) i5-8257U CPU @ 1.40GHz", platform.Intel},
	}

	for _, tt := range tests {
		t.Run(tt.brand, func(t *testing.T) {
			assert.Equal(t, tt.want, platform.Detect(tt.brand))
		})
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	brand := "Apple M2 Pro"

	first := platform.Detect(brand)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, platform.Detect(brand))
	}
}

func TestDetectUnknownBrandFallsBack(t *testing.T) {
	// Unrecognized hardware still yields a usable platform
	got := platform.Detect("Qualcomm Snapdragon X Elite")

	assert.Equal(t, platform.M1, got)
	assert.True(t, got.IsAppleSilicon())
}

func TestGeneration(t *testing.T) {
	assert.Equal(t, 0, platform.Intel.Generation())
	assert.Equal(t, 1, platform.M1Ultra.Generation())
	assert.Equal(t, 2, platform.M2Max.Generation())
	assert.Equal(t, 3, platform.M3Pro.Generation())
	assert.Equal(t, 4, platform.M4.Generation())
}

func TestPlatformPredicates(t *testing.T) {
	assert.True(t, platform.Intel.IsIntel())
	assert.False(t, platform.Intel.IsAppleSilicon())
	assert.True(t, platform.M3Pro.IsAppleSilicon())
	assert.False(t, platform.M3Pro.IsIntel())
}

func TestPlatformString(t *testing.T) {
	assert.Equal(t, "intel", platform.Intel.String())
	assert.Equal(t, "m1", platform.M1.String())
	assert.Equal(t, "m2_pro", platform.M2Pro.String())
	assert.Equal(t, "m4_ultra", platform.M4Ultra.String())
}

func TestPlatformSets(t *testing.T) {
	assert.Len(t, platform.All(), 17)
	assert.Len(t, platform.AppleSilicon(), 16)
	assert.Len(t, platform.M1Gen(), 4)
	assert.Len(t, platform.M4Gen(), 4)

	assert.NotContains(t, platform.AppleSilicon(), platform.Intel)
	assert.Contains(t, platform.M2Gen(), platform.M2Max)
	assert.NotContains(t, platform.M2Gen(), platform.M3)
}
