package bonk

import "fmt"

// Mode is a playable game mode. Engine selects the physics engine code
// sent in game settings ("ga"), Code the mode code ("mo").
type Mode struct {
	Engine string
	Code   string
	ID     int
}

var (
	ModeNone        = Mode{"", "", 0}
	ModeClassic     = Mode{"b", "b", 1}
	ModeSimple      = Mode{"b", "bs", 2}
	ModeArrows      = Mode{"b", "ar", 3}
	ModeDeathArrows = Mode{"b", "ard", 4}
	ModeGrapple     = Mode{"b", "sp", 5}
	ModeVTOL        = Mode{"b", "v", 6}
	ModeFootball    = Mode{"f", "f", 7}
)

// Modes lists every known mode in id order.
var Modes = []Mode{
	ModeNone, ModeClassic, ModeSimple, ModeArrows,
	ModeDeathArrows, ModeGrapple, ModeVTOL, ModeFootball,
}

// ModeFromCode resolves a mode by its wire code.
func ModeFromCode(code string) (Mode, error) {
	for _, m := range Modes {
		if m.Code == code {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("bonk: invalid mode code %q", code)
}

// ModeFromID resolves a mode by its numeric id.
func ModeFromID(id int) (Mode, error) {
	for _, m := range Modes {
		if m.ID == id {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("bonk: invalid mode id %d", id)
}

func (m Mode) String() string {
	if m.Code == "" {
		return "none"
	}
	return m.Code
}
