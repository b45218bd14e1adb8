package predictor

import (
	"strconv"
	"strings"
)

// ParseDoorID extracts ward, block and door numbers from a structured door
// identifier of the form WARD-BLOCK-DOOR, optionally suffixed with
// "/building". Any malformed identifier (wrong arity, non-numeric part,
// empty string) yields the defaults (1, 1, 1) rather than failing the
// request; the defaulting is explicit here at the boundary so tests can
// assert on it directly.
func ParseDoorID(id string) (ward, block, door int) {
	ward, block, door = 1, 1, 1
	if id == "" {
		return ward, block, door
	}

	head, _, _ := strings.Cut(id, "/")
	parts := strings.Split(head, "-")
	if len(parts) != 3 {
		return ward, block, door
	}

	w, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	d, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return ward, block, door
	}
	return w, b, d
}
