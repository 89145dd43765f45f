package topology

// Profile is the folding key: everything an operator needs to tell two
// disk populations apart, minus the bay identifier. Disks that differ
// only by slot fold into one summary line.
type Profile struct {
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
	Rev    string `json:"rev"`
	Paths  int    `json:"paths"`
}

// Folded is one summary entry: a profile and the units sharing it.
type Folded struct {
	Profile Profile        `json:"profile"`
	Units   []*LogicalUnit `json:"units"`
}

// Fold compresses a group's units by profile. Entries appear in order
// of the first unit carrying the profile; expanding every entry back
// yields the group's exact unit multiset.
func Fold(g *Group) []Folded {
	index := make(map[Profile]int)
	var folded []Folded

	for _, lu := range g.Units {
		a := lu.Attrs()
		key := Profile{Vendor: a.Vendor, Model: a.Model, Rev: a.Rev, Paths: len(lu.Paths)}
		i, ok := index[key]
		if !ok {
			i = len(folded)
			index[key] = i
			folded = append(folded, Folded{Profile: key})
		}
		folded[i].Units = append(folded[i].Units, lu)
	}

	return folded
}
