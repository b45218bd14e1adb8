package predictor

import "testing"

func TestParseDoorID(t *testing.T) {
	cases := []struct {
		name  string
		id    string
		ward  int
		block int
		door  int
	}{
		{"well_formed", "12-4-356", 12, 4, 356},
		{"with_building_suffix", "12-4-356/2A", 12, 4, 356},
		{"plain_text", "abc", 1, 1, 1},
		{"empty", "", 1, 1, 1},
		{"wrong_arity_short", "12-4", 1, 1, 1},
		{"wrong_arity_long", "12-4-356-9", 1, 1, 1},
		{"non_numeric_part", "12-x-356", 1, 1, 1},
		{"only_separator", "--", 1, 1, 1},
		{"suffix_only", "/2A", 1, 1, 1},
		{"spaces_tolerated", " 12 - 4 - 356 ", 12, 4, 356},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ward, block, door := ParseDoorID(c.id)
			if ward != c.ward || block != c.block || door != c.door {
				t.Errorf("ParseDoorID(%q) = (%d, %d, %d), want (%d, %d, %d)",
					c.id, ward, block, door, c.ward, c.block, c.door)
			}
		})
	}
}
