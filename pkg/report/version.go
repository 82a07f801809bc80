package report

import (
	"encoding/json"
	"fmt"
	"math"
)

// Version is an I/O schema version.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

var (
	V3_0 = Version{Major: 3, Minor: 0}
	V4_0 = Version{Major: 4, Minor: 0}
	V4_1 = Version{Major: 4, Minor: 1}

	// Latest is the version every payload is upgraded to.
	Latest = V4_1
)

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less reports whether v precedes o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// Supported reports whether a schema is known for v.
func (v Version) Supported() bool {
	_, ok := schemaFor(v)
	return ok
}

// VersionOf extracts the schema version a payload is tagged with.
func VersionOf(data Data) (Version, error) {
	raw, ok := data[versionKey]
	if !ok {
		return Version{}, fmt.Errorf("%w: missing %q", ErrInvalid, versionKey)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Version{}, fmt.Errorf("%w: %q is not an object", ErrInvalid, versionKey)
	}
	if len(obj) != 2 {
		return Version{}, fmt.Errorf("%w: %q must hold exactly major and minor", ErrInvalid, versionKey)
	}
	major, ok := toInt(obj["major"])
	if !ok {
		return Version{}, fmt.Errorf("%w: invalid major version", ErrInvalid)
	}
	minor, ok := toInt(obj["minor"])
	if !ok {
		return Version{}, fmt.Errorf("%w: invalid minor version", ErrInvalid)
	}
	return Version{Major: major, Minor: minor}, nil
}

func (v Version) value() map[string]any {
	return map[string]any{"major": v.Major, "minor": v.Minor}
}

// toInt accepts the integer representations produced by encoding/json and by
// payloads built in Go code.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, n >= 0
	case int64:
		return int(n), n >= 0
	case float64:
		if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < 0 {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
