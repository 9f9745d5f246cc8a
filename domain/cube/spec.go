package cube

// SpecEntry selects one or more members of a single dimension by name.
type SpecEntry struct {
	Dimension string
	Values    []string
}

// Spec is an ordered compact selection over a cube: one entry per dimension
// the caller cares about, each carrying one or more member names.
type Spec []SpecEntry

// Entry builds a SpecEntry; a single value stands for a one-element list.
func Entry(dimension string, values ...string) SpecEntry {
	return SpecEntry{Dimension: dimension, Values: values}
}

// Dimensions returns the dimension names of the spec in entry order.
func (s Spec) Dimensions() []string {
	names := make([]string, len(s))
	for i, entry := range s {
		names[i] = entry.Dimension
	}
	return names
}

// Expand returns the cartesian product of the spec: one Selection per
// combination of member choices. An entry with an empty value list yields
// zero selections; that is a documented edge case, not an error.
func (s Spec) Expand() []Selection {
	if len(s) == 0 {
		return nil
	}

	total := 1
	for _, entry := range s {
		total *= len(entry.Values)
	}
	if total == 0 {
		return nil
	}

	selections := make([]Selection, 0, total)
	indices := make([]int, len(s))
	for {
		selection := make(Selection, len(s))
		for i, entry := range s {
			selection[entry.Dimension] = entry.Values[indices[i]]
		}
		selections = append(selections, selection)

		// Odometer increment, last entry varies fastest.
		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(s[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return selections
		}
	}
}
