package cube

import (
	"fmt"
	"time"
)

const (
	// CoordinateSlots is the fixed number of non-time dimension slots in a
	// provider coordinate. Slots for unselected dimensions hold SentinelMember.
	CoordinateSlots = 10

	// SentinelMember fills coordinate slots for dimensions the selection
	// leaves unspecified.
	SentinelMember = "0"

	// CoordinateDelimiter joins the member ids of a coordinate.
	CoordinateDelimiter = "."

	// TitleDelimiter separates member names inside a series title.
	TitleDelimiter = ";"
)

// ProductID identifies a cube (statistical table) at the provider.
type ProductID int

// Dimension is one axis of a cube. Position is 1-based and fixed by the
// provider; it determines both the coordinate slot and the token order
// inside series titles.
type Dimension struct {
	Name     string
	Position int
	Members  map[string]string // member name -> member id
}

// Metadata is a cube's dimension catalogue. It is fetched fresh per
// retrieval call and never persisted.
type Metadata struct {
	ProductID  ProductID
	Dimensions map[string]Dimension // keyed by dimension name
}

// Validate checks the catalogue invariants: positions are unique, 1-based
// and fit inside the coordinate slots, and dimension names match their keys.
func (m Metadata) Validate() error {
	seen := make(map[int]string, len(m.Dimensions))
	for name, dim := range m.Dimensions {
		if dim.Name != name {
			return fmt.Errorf("dimension %q keyed under %q", dim.Name, name)
		}
		if dim.Position < 1 || dim.Position > CoordinateSlots {
			return fmt.Errorf("dimension %q has position %d outside 1..%d", name, dim.Position, CoordinateSlots)
		}
		if other, dup := seen[dim.Position]; dup {
			return fmt.Errorf("dimensions %q and %q share position %d", other, name, dim.Position)
		}
		seen[dim.Position] = name
	}
	return nil
}

// Positions returns the dimension-name to position map used to order
// output columns.
func (m Metadata) Positions() map[string]int {
	positions := make(map[string]int, len(m.Dimensions))
	for name, dim := range m.Dimensions {
		positions[name] = dim.Position
	}
	return positions
}

// Selection maps each chosen dimension name to exactly one member name.
// Dimensions absent from the map are unselected.
type Selection map[string]string

// Coordinate is the fixed-width positional encoding of a Selection: one
// member id per dimension position, dot-joined, sentinel-padded.
type Coordinate string

// Vector is one resolved time series: an opaque identifier plus the title
// string the provider uses to encode the selected member names.
type Vector struct {
	ID    int64
	Title string
}

// Observation is one (reference period, value) data point of a vector.
type Observation struct {
	RefPeriod time.Time
	Value     float64
}
