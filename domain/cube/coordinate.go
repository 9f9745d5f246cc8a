package cube

import "strings"

// DropReason explains why a selection contributed no coordinate.
type DropReason string

const (
	DropUnknownDimension DropReason = "unknown_dimension"
	DropUnknownMember    DropReason = "unknown_member"
)

// DroppedSelection records one selection that failed to resolve against the
// catalogue, with the offending dimension/member pair.
type DroppedSelection struct {
	Selection Selection
	Dimension string
	Member    string
	Reason    DropReason
}

// BuildResult is the typed outcome of coordinate building. Coordinates keep
// the order of the selections that survived resolution; callers must not
// assume index correspondence with the input once Dropped is non-empty.
// Positions is always populated from the catalogue, even when every
// selection dropped, so callers can still order output columns.
type BuildResult struct {
	Coordinates []Coordinate
	Positions   map[string]int
	Dropped     []DroppedSelection
}

// BuildCoordinates maps each selection to a fixed-width positional
// coordinate using the catalogue. A selection naming a dimension or member
// the cube does not have is dropped as a whole and reported in Dropped
// rather than aborting the batch.
func BuildCoordinates(meta Metadata, selections []Selection) BuildResult {
	result := BuildResult{Positions: meta.Positions()}

	for _, selection := range selections {
		slots := make([]string, CoordinateSlots)
		for i := range slots {
			slots[i] = SentinelMember
		}

		dropped := false
		for dimName, memberName := range selection {
			dim, ok := meta.Dimensions[dimName]
			if !ok {
				result.Dropped = append(result.Dropped, DroppedSelection{
					Selection: selection,
					Dimension: dimName,
					Reason:    DropUnknownDimension,
				})
				dropped = true
				break
			}
			memberID, ok := dim.Members[memberName]
			if !ok {
				result.Dropped = append(result.Dropped, DroppedSelection{
					Selection: selection,
					Dimension: dimName,
					Member:    memberName,
					Reason:    DropUnknownMember,
				})
				dropped = true
				break
			}
			slots[dim.Position-1] = memberID
		}
		if dropped {
			continue
		}

		result.Coordinates = append(result.Coordinates, Coordinate(strings.Join(slots, CoordinateDelimiter)))
	}

	return result
}
