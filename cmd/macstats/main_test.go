package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/nyblom/macstats/internal/platform"
	"codeberg.org/nyblom/macstats/internal/smc"
)

// fakeTransport serves an ordered key table from memory
type fakeTransport struct {
	keys       []smc.Key
	unreadable map[smc.Key]bool
}

func (f *fakeTransport) ReadKey(key smc.Key) (smc.RawReading, error) {
	if f.unreadable[key] {
		return smc.RawReading{}, assert.AnError
	}

	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, math.Float32bits(46.5))

	return smc.RawReading{Key: key, Type: "flt ", Data: data}, nil
}

func (f *fakeTransport) KeyCount() (uint32, error) {
	return uint32(len(f.keys)), nil
}

func (f *fakeTransport) KeyByIndex(index uint32) (smc.Key, error) {
	return f.keys[index], nil
}

func (f *fakeTransport) Close() error {
	return nil
}

func TestProbeListsEveryKey(t *testing.T) {
	transport := &fakeTransport{keys: []smc.Key{"#KEY", "Tp01", "PSTR", "RPlt"}}
	conn := smc.NewConn(transport)
	defer conn.Close()
	reg := platform.NewRegistry(platform.M2)

	var out bytes.Buffer
	require.NoError(t, probe(conn, reg, &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "platform m2, 4 keys", lines[0])

	// Catalog keys carry their resolved name and decoded value
	assert.Contains(t, out.String(), "Tp01")
	assert.Contains(t, out.String(), "CPU performance core 1 = 46.50°C")
	assert.Contains(t, out.String(), "System Total = 46.50W")

	// Unknown keys are still listed with their reported type and size
	assert.Contains(t, out.String(), "RPlt  flt   4")
}

func TestProbeMarksUnreadableKeys(t *testing.T) {
	transport := &fakeTransport{
		keys:       []smc.Key{"Tp01", "Tp05"},
		unreadable: map[smc.Key]bool{"Tp05": true},
	}
	conn := smc.NewConn(transport)
	defer conn.Close()
	reg := platform.NewRegistry(platform.M2)

	var out bytes.Buffer
	require.NoError(t, probe(conn, reg, &out))

	assert.Contains(t, out.String(), "Tp05  <unreadable>")
	assert.Contains(t, out.String(), "CPU performance core 1")
}
