package bonk

import "strings"

// Input is the bitmask of held controls sent with each move.
type Input uint32

const (
	InputLeft    Input = 1 << iota // 1
	InputRight                     // 2
	InputUp                        // 4
	InputDown                      // 8
	InputHeavy                     // 16
	InputSpecial                   // 32

	InputNone Input = 0
	InputAll        = InputLeft | InputRight | InputUp | InputDown | InputHeavy | InputSpecial
)

// Has reports whether every flag in mask is held.
func (i Input) Has(mask Input) bool { return i&mask == mask }

// With returns the input with mask added.
func (i Input) With(mask Input) Input { return i | mask }

// Without returns the input with mask cleared.
func (i Input) Without(mask Input) Input { return i &^ mask }

func (i Input) String() string {
	if i == InputNone {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		mask Input
		name string
	}{
		{InputLeft, "left"},
		{InputRight, "right"},
		{InputUp, "up"},
		{InputDown, "down"},
		{InputHeavy, "heavy"},
		{InputSpecial, "special"},
	} {
		if i.Has(f.mask) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}
