package report

// Relation links objects of a child collection to a parent collection
// through an identifier field of the child.
type Relation struct {
	Child  string
	Parent string
	Field  string
}

// Collections lists the Latest collection names, parents before children.
var Collections = []string{"checkouts", "builds", "tests", "issues", "incidents"}

var relations = []Relation{
	{Child: "builds", Parent: "checkouts", Field: "checkout_id"},
	{Child: "tests", Parent: "builds", Field: "build_id"},
	{Child: "incidents", Parent: "issues", Field: "issue_id"},
	{Child: "incidents", Parent: "builds", Field: "build_id"},
	{Child: "incidents", Parent: "tests", Field: "test_id"},
}

// Relations returns the Latest schema object relations.
func Relations() []Relation {
	out := make([]Relation, len(relations))
	copy(out, relations)
	return out
}

// ParentRelations returns the relations where name is the child.
func ParentRelations(name string) []Relation {
	var out []Relation
	for _, r := range relations {
		if r.Child == name {
			out = append(out, r)
		}
	}
	return out
}

// ChildRelations returns the relations where name is the parent.
func ChildRelations(name string) []Relation {
	var out []Relation
	for _, r := range relations {
		if r.Parent == name {
			out = append(out, r)
		}
	}
	return out
}
