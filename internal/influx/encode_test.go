package influx_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/nyblom/macstats/internal/influx"
	"codeberg.org/nyblom/macstats/internal/platform"
	"codeberg.org/nyblom/macstats/internal/sampler"
	"codeberg.org/nyblom/macstats/internal/smc"
)

func snapshotAt(ts time.Time, values map[smc.Key]smc.TypedValue) sampler.Snapshot {
	return sampler.Snapshot{Time: ts, Values: values}
}

func TestEncodePerCoreSensor(t *testing.T) {
	reg := platform.NewRegistry(platform.M2)
	ts := time.Unix(1700000000, 0)
	snap := snapshotAt(ts, map[smc.Key]smc.TypedValue{
		"Tp01": smc.Celsius(42.3),
	})

	points := influx.Encode(snap, reg, influx.EncodeConfig{
		Prefix:   "mac",
		Hostname: "my-macbook-m2",
	})
	require.Len(t, points, 1)

	want := fmt.Sprintf(
		"mac_cpu_temperature,host=my-macbook-m2,core=performance_1,type=performance value=42.3 %d",
		ts.UnixNano())
	assert.Equal(t, want, points[0].MarshalLine())
}

func TestEncodeNamedSensor(t *testing.T) {
	reg := platform.NewRegistry(platform.M2)
	ts := time.Unix(1700000000, 0)
	snap := snapshotAt(ts, map[smc.Key]smc.TypedValue{
		"PSTR": smc.Watts(28.5),
	})

	points := influx.Encode(snap, reg, influx.EncodeConfig{
		Prefix:   "mac",
		Hostname: "studio",
	})
	require.Len(t, points, 1)

	want := fmt.Sprintf(
		"mac_sensor_power,host=studio,sensor=system_total value=28.5 %d",
		ts.UnixNano())
	assert.Equal(t, want, points[0].MarshalLine())
}

func TestEncodeIsDeterministic(t *testing.T) {
	reg := platform.NewRegistry(platform.M2)
	ts := time.Unix(1700000000, 500)
	snap := snapshotAt(ts, map[smc.Key]smc.TypedValue{
		"Tp01": smc.Celsius(51.5),
		"Tp05": smc.Celsius(49.25),
		"Tp1h": smc.Celsius(38),
		"PSTR": smc.Watts(31),
		"F0Ac": smc.RPM(1200),
		"VD0R": smc.Volts(12.2),
	})
	cfg := influx.EncodeConfig{
		Prefix:   "mac",
		Hostname: "studio",
		Tags:     map[string]string{"rack": "a1", "dc": "home"},
	}

	first := influx.Lines(influx.Encode(snap, reg, cfg))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, influx.Lines(influx.Encode(snap, reg, cfg)))
	}
}

func TestEncodeTagOrdering(t *testing.T) {
	reg := platform.NewRegistry(platform.M2)
	snap := snapshotAt(time.Unix(1, 0), map[smc.Key]smc.TypedValue{
		"Tp01": smc.Celsius(40),
	})

	points := influx.Encode(snap, reg, influx.EncodeConfig{
		Prefix:   "mac",
		Hostname: "h",
		Tags:     map[string]string{"zone": "z", "env": "prod"},
	})
	require.Len(t, points, 1)

	// host first, then discriminators, then custom tags sorted by key
	keys := make([]string, len(points[0].Tags))
	for i, tag := range points[0].Tags {
		keys[i] = tag.Key
	}
	assert.Equal(t, []string{"host", "core", "type", "env", "zone"}, keys)
}

func TestEncodeEscapesSpecialCharacters(t *testing.T) {
	reg := platform.NewRegistry(platform.M2)
	snap := snapshotAt(time.Unix(1, 0), map[smc.Key]smc.TypedValue{
		"PSTR": smc.Watts(10),
	})

	points := influx.Encode(snap, reg, influx.EncodeConfig{
		Prefix:   "mac",
		Hostname: "my mac,pro=1",
	})
	require.Len(t, points, 1)

	line := points[0].MarshalLine()
	assert.Contains(t, line, `host=my\ mac\,pro\=1`)
	assert.True(t, strings.HasSuffix(line, " value=10 1000000000"))
}

func TestEncodeSkipsUnknownKeys(t *testing.T) {
	reg := platform.NewRegistry(platform.M2)
	snap := snapshotAt(time.Unix(1, 0), map[smc.Key]smc.TypedValue{
		"Th1H": smc.Celsius(40), // Intel-only, not in the M2 active set
		"Tp05": smc.Celsius(44),
	})

	points := influx.Encode(snap, reg, influx.EncodeConfig{Prefix: "mac", Hostname: "h"})

	require.Len(t, points, 1)
	assert.Contains(t, points[0].MarshalLine(), "core=performance_2")
}

func TestEncodeWithoutPrefix(t *testing.T) {
	reg := platform.NewRegistry(platform.Intel)
	snap := snapshotAt(time.Unix(1, 0), map[smc.Key]smc.TypedValue{
		"F0Ac": smc.RPM(2400),
	})

	points := influx.Encode(snap, reg, influx.EncodeConfig{Hostname: "imac"})
	require.Len(t, points, 1)

	assert.Equal(t, "sensor_fan_speed", points[0].Measurement)
	assert.Equal(t, "sensor_fan_speed,host=imac,sensor=fan_1 value=2400 1000000000",
		points[0].MarshalLine())
}

func TestLinesJoinsPoints(t *testing.T) {
	reg := platform.NewRegistry(platform.M2)
	snap := snapshotAt(time.Unix(2, 0), map[smc.Key]smc.TypedValue{
		"Tp01": smc.Celsius(40),
		"PSTR": smc.Watts(20),
	})

	payload := influx.Lines(influx.Encode(snap, reg, influx.EncodeConfig{Prefix: "mac", Hostname: "h"}))

	lines := strings.Split(payload, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "mac_cpu_temperature,"))
	assert.True(t, strings.HasPrefix(lines[1], "mac_sensor_power,"))
}
