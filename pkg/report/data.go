package report

// Data is a report payload decoded from JSON. Collections hold []any of
// map[string]any, the shapes encoding/json produces.
type Data map[string]any

// Object is a single report object, such as a build or a test.
type Object = map[string]any

// New returns an empty report tagged with the Latest version.
func New() Data {
	return Data{versionKey: Latest.value()}
}

// Objects returns the objects of the named collection.
func (d Data) Objects(name string) []Object {
	raw, _ := d[name].([]any)
	objs := make([]Object, 0, len(raw))
	for _, r := range raw {
		if obj, ok := r.(map[string]any); ok {
			objs = append(objs, obj)
		}
	}
	return objs
}

// Add appends objects to the named collection.
func (d Data) Add(name string, objs ...Object) {
	if len(objs) == 0 {
		return
	}
	raw, _ := d[name].([]any)
	for _, obj := range objs {
		raw = append(raw, obj)
	}
	d[name] = raw
}

// Count returns the number of objects across all collections.
func (d Data) Count() int {
	n := 0
	for k, v := range d {
		if k == versionKey {
			continue
		}
		if objs, ok := v.([]any); ok {
			n += len(objs)
		}
	}
	return n
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	return Data(cloneValue(map[string]any(d)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// ID returns the "id" field of an object.
func ID(obj Object) string {
	id, _ := obj["id"].(string)
	return id
}
