package influx

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/nyblom/macstats/internal/platform"
	"codeberg.org/nyblom/macstats/internal/sampler"
)

// Tag is one key=value pair. Tags are kept as an ordered slice, not a
// map, so identical snapshots always serialize byte-identically.
type Tag struct {
	Key   string
	Value string
}

// Point is one metric point in line-protocol terms: a measurement, an
// ordered tag set, a single "value" field and a nanosecond timestamp.
type Point struct {
	Measurement string
	Tags        []Tag
	Value       float64
	Timestamp   int64
}

// EncodeConfig carries the encoder inputs that come from configuration
type EncodeConfig struct {
	Prefix   string
	Hostname string
	Tags     map[string]string
}

var coreNamePattern = regexp.MustCompile(`^CPU (performance|efficiency) core (\d+)$`)

// Encode turns a snapshot into an ordered sequence of points. Measurement
// names are <prefix>_<group>_<unit>; every point carries the host tag
// first, then descriptor discriminators, then the configured global tags
// in sorted order. Output is deterministic for identical inputs.
func Encode(snap sampler.Snapshot, reg *platform.Registry, cfg EncodeConfig) []Point {
	timestamp := snap.Time.UnixNano()

	globalTags := make([]Tag, 0, len(cfg.Tags))
	for key, value := range cfg.Tags {
		globalTags = append(globalTags, Tag{Key: key, Value: value})
	}
	sort.Slice(globalTags, func(i, j int) bool { return globalTags[i].Key < globalTags[j].Key })

	points := make([]Point, 0, len(snap.Values))
	for key, value := range snap.Values {
		desc, ok := reg.Resolve(key)
		if !ok {
			// Snapshot keys are always drawn from the active set;
			// an unresolvable key would be a programming error.
			continue
		}

		measurement := desc.Group.String() + "_" + value.Unit().String()
		if cfg.Prefix != "" {
			measurement = cfg.Prefix + "_" + measurement
		}

		tags := make([]Tag, 0, 3+len(globalTags))
		tags = append(tags, Tag{Key: "host", Value: cfg.Hostname})
		tags = append(tags, discriminatorTags(desc)...)
		tags = append(tags, globalTags...)

		points = append(points, Point{
			Measurement: measurement,
			Tags:        tags,
			Value:       value.Float(),
			Timestamp:   timestamp,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Measurement != points[j].Measurement {
			return points[i].Measurement < points[j].Measurement
		}
		return tagString(points[i].Tags) < tagString(points[j].Tags)
	})

	return points
}

// discriminatorTags derives the per-sensor tags from the descriptor.
// Per-core sensors get core=<tier>_<n> plus a type tag; everything else
// is identified by its snake-cased sensor name.
func discriminatorTags(desc platform.Descriptor) []Tag {
	if m := coreNamePattern.FindStringSubmatch(desc.Name); m != nil {
		tier := m[1]
		return []Tag{
			{Key: "core", Value: tier + "_" + m[2]},
			{Key: "type", Value: tier},
		}
	}

	return []Tag{{Key: "sensor", Value: snakeCase(desc.Name)}}
}

func snakeCase(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

func tagString(tags []Tag) string {
	var b strings.Builder
	for _, tag := range tags {
		b.WriteByte(',')
		b.WriteString(escapeTag(tag.Key))
		b.WriteByte('=')
		b.WriteString(escapeTag(tag.Value))
	}

	return b.String()
}

// MarshalLine renders the point in InfluxDB line protocol:
// measurement,tag=value[,tag=value...] value=<num> <timestamp_ns>
func (p Point) MarshalLine() string {
	var b strings.Builder
	b.WriteString(escapeMeasurement(p.Measurement))
	b.WriteString(tagString(p.Tags))
	b.WriteString(" value=")
	b.WriteString(strconv.FormatFloat(p.Value, 'g', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(p.Timestamp, 10))

	return b.String()
}

// Lines joins points into one line-protocol payload
func Lines(points []Point) string {
	lines := make([]string, len(points))
	for i, p := range points {
		lines[i] = p.MarshalLine()
	}

	return strings.Join(lines, "\n")
}

var tagEscaper = strings.NewReplacer(",", `\,`, " ", `\ `, "=", `\=`)

var measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}

func escapeMeasurement(s string) string {
	return measurementEscaper.Replace(s)
}
