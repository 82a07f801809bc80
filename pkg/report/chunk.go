package report

// Chunks splits data into reports holding at most n objects each, keeping
// collection order (parents first) and the version tag. With n == 0 the
// whole report is returned as one chunk. An empty report yields a single
// empty chunk.
func Chunks(data Data, n int) []Data {
	version := data[versionKey]
	if n <= 0 || data.Count() <= n {
		return []Data{data}
	}

	var chunks []Data
	cur := Data{versionKey: version}
	size := 0
	for _, name := range orderedCollections(data) {
		for _, obj := range data.Objects(name) {
			if size == n {
				chunks = append(chunks, cur)
				cur = Data{versionKey: version}
				size = 0
			}
			cur.Add(name, obj)
			size++
		}
	}
	if size > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}

func orderedCollections(data Data) []string {
	names := make([]string, 0, len(data))
	seen := make(map[string]bool)
	for _, name := range Collections {
		if _, ok := data[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	for name := range data {
		if name != versionKey && !seen[name] {
			names = append(names, name)
		}
	}
	return names
}
