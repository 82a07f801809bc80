package report

import (
	"fmt"
	"slices"
	"sort"
)

const versionKey = "version"

type kind int

const (
	kindString kind = iota
	kindNumber
	kindBool
	kindObject
)

type field struct {
	kind     kind
	required bool
	enum     []string
}

type collection map[string]field

type schema struct {
	version     Version
	collections map[string]collection
	// upgrade converts data valid under the previous schema into this one.
	upgrade func(Data)
}

var (
	idFields = collection{
		"id":     {kind: kindString, required: true},
		"origin": {kind: kindString, required: true},
		"misc":   {kind: kindObject},
	}

	statusesV3 = []string{"ERROR", "FAIL", "PASS", "DONE", "SKIP"}
	statusesV4 = []string{"ERROR", "FAIL", "PASS", "DONE", "SKIP", "MISS"}
)

func with(base collection, extra collection) collection {
	c := make(collection, len(base)+len(extra))
	for k, v := range base {
		c[k] = v
	}
	for k, v := range extra {
		c[k] = v
	}
	return c
}

var schemas = []*schema{
	{
		version: V3_0,
		collections: map[string]collection{
			"revisions": with(idFields, collection{
				"tree_name":          {kind: kindString},
				"git_repository_url": {kind: kindString},
				"git_commit_hash":    {kind: kindString},
				"patchset_hash":      {kind: kindString},
				"discovery_time":     {kind: kindString},
				"valid":              {kind: kindBool},
			}),
			"builds": with(idFields, collection{
				"revision_id":  {kind: kindString, required: true},
				"architecture": {kind: kindString},
				"config_name":  {kind: kindString},
				"start_time":   {kind: kindString},
				"duration":     {kind: kindNumber},
				"valid":        {kind: kindBool},
			}),
			"tests": with(idFields, collection{
				"build_id":   {kind: kindString, required: true},
				"path":       {kind: kindString},
				"status":     {kind: kindString, enum: statusesV3},
				"waived":     {kind: kindBool},
				"start_time": {kind: kindString},
				"duration":   {kind: kindNumber},
			}),
		},
	},
	{
		version:     V4_0,
		collections: v4Collections(false),
		upgrade:     upgradeV3toV4,
	},
	{
		version:     V4_1,
		collections: v4Collections(true),
		upgrade:     func(Data) {},
	},
}

func v4Collections(withIssues bool) map[string]collection {
	c := map[string]collection{
		"checkouts": with(idFields, collection{
			"tree_name":          {kind: kindString},
			"git_repository_url": {kind: kindString},
			"git_commit_hash":    {kind: kindString},
			"patchset_hash":      {kind: kindString},
			"start_time":         {kind: kindString},
			"valid":              {kind: kindBool},
		}),
		"builds": with(idFields, collection{
			"checkout_id":  {kind: kindString, required: true},
			"architecture": {kind: kindString},
			"config_name":  {kind: kindString},
			"start_time":   {kind: kindString},
			"duration":     {kind: kindNumber},
			"valid":        {kind: kindBool},
		}),
		"tests": with(idFields, collection{
			"build_id":   {kind: kindString, required: true},
			"path":       {kind: kindString},
			"status":     {kind: kindString, enum: statusesV4},
			"waived":     {kind: kindBool},
			"start_time": {kind: kindString},
			"duration":   {kind: kindNumber},
		}),
	}
	if withIssues {
		c["issues"] = with(idFields, collection{
			"report_url":     {kind: kindString},
			"report_subject": {kind: kindString},
			"comment":        {kind: kindString},
		})
		c["incidents"] = with(idFields, collection{
			"issue_id": {kind: kindString, required: true},
			"build_id": {kind: kindString},
			"test_id":  {kind: kindString},
			"present":  {kind: kindBool},
			"comment":  {kind: kindString},
		})
	}
	return c
}

func schemaFor(v Version) (*schema, bool) {
	for _, s := range schemas {
		if s.version == v {
			return s, true
		}
	}
	return nil, false
}

// Versions lists the supported schema versions, oldest first.
func Versions() []Version {
	vs := make([]Version, len(schemas))
	for i, s := range schemas {
		vs[i] = s.version
	}
	return vs
}

// Validate checks data against the schema of the version it is tagged with.
// Any supported version is accepted.
func Validate(data Data) error {
	v, err := VersionOf(data)
	if err != nil {
		return err
	}
	s, ok := schemaFor(v)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
	return s.validate(data)
}

// ValidateLatest checks data against the Latest schema.
func ValidateLatest(data Data) error {
	v, err := VersionOf(data)
	if err != nil {
		return err
	}
	if v != Latest {
		return fmt.Errorf("%w: version %s, expected %s", ErrInvalid, v, Latest)
	}
	return Validate(data)
}

func (s *schema) validate(data Data) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		if name == versionKey {
			continue
		}
		coll, ok := s.collections[name]
		if !ok {
			return fmt.Errorf("%w: unknown collection %q for schema %s", ErrInvalid, name, s.version)
		}
		objs, ok := data[name].([]any)
		if !ok {
			return fmt.Errorf("%w: collection %q is not an array", ErrInvalid, name)
		}
		for i, raw := range objs {
			obj, ok := raw.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s[%d] is not an object", ErrInvalid, name, i)
			}
			if err := coll.validate(obj); err != nil {
				return fmt.Errorf("%w: %s[%d]: %v", ErrInvalid, name, i, err)
			}
		}
	}
	return nil
}

func (c collection) validate(obj map[string]any) error {
	for name, f := range c {
		if _, ok := obj[name]; !ok && f.required {
			return fmt.Errorf("missing required field %q", name)
		}
	}
	for name, value := range obj {
		f, ok := c[name]
		if !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		if !f.accepts(value) {
			return fmt.Errorf("invalid value for field %q", name)
		}
	}
	return nil
}

func (f field) accepts(v any) bool {
	switch f.kind {
	case kindString:
		s, ok := v.(string)
		if !ok {
			return false
		}
		if f.enum != nil && !slices.Contains(f.enum, s) {
			return false
		}
		return s != "" || !f.required
	case kindNumber:
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case kindBool:
		_, ok := v.(bool)
		return ok
	case kindObject:
		_, ok := v.(map[string]any)
		return ok
	}
	return false
}
