package report

import (
	"fmt"
	"strings"
)

// Upgrade returns a copy of data upgraded to Latest. The input is left
// untouched. Data must be valid under its own schema version.
func Upgrade(data Data) (Data, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	out := data.Clone()
	if err := upgrade(out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpgradeInPlace upgrades data to Latest, mutating it.
func UpgradeInPlace(data Data) error {
	if err := Validate(data); err != nil {
		return err
	}
	return upgrade(data)
}

func upgrade(data Data) error {
	v, err := VersionOf(data)
	if err != nil {
		return err
	}
	start := -1
	for i, s := range schemas {
		if s.version == v {
			start = i
			break
		}
	}
	if start < 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
	for _, s := range schemas[start+1:] {
		s.upgrade(data)
		data[versionKey] = s.version.value()
	}
	return nil
}

// upgradeV3toV4 turns revisions into checkouts. Object IDs are kept, so
// links between objects survive the rename.
func upgradeV3toV4(data Data) {
	if revisions, ok := data["revisions"]; ok {
		for _, raw := range revisions.([]any) {
			obj := raw.(map[string]any)
			if t, ok := obj["discovery_time"]; ok {
				obj["start_time"] = t
				delete(obj, "discovery_time")
			}
			if _, ok := obj["git_commit_hash"]; !ok {
				id := obj["id"].(string)
				if hash, _, _ := strings.Cut(id, "+"); hash != "" {
					obj["git_commit_hash"] = hash
				}
			}
		}
		data["checkouts"] = revisions
		delete(data, "revisions")
	}
	if builds, ok := data["builds"]; ok {
		for _, raw := range builds.([]any) {
			obj := raw.(map[string]any)
			obj["checkout_id"] = obj["revision_id"]
			delete(obj, "revision_id")
		}
	}
}
