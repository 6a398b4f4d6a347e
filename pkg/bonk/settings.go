package bonk

import (
	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

// SettingsVersion is the current key-bind settings format version.
const SettingsVersion = 6

// Settings holds a player's key binds and client toggles. The binary
// format has evolved through six versions; decoding accepts all of them,
// encoding always writes the current one.
type Settings struct {
	Version int

	Up1, Up2, Up3             uint16
	Down1, Down2, Down3       uint16
	Left1, Left2, Left3       uint16
	Right1, Right2, Right3    uint16
	Heavy1, Heavy2, Heavy3    uint16
	Special1, Special2, Special3 uint16

	Filter  bool
	Stats   bool
	Help    bool
	Quality int
}

// DefaultSettings returns the client's stock binds and toggles.
func DefaultSettings() Settings {
	return Settings{
		Version: SettingsVersion,
		Up1:     38, Down1: 40, Left1: 37, Right1: 39, Heavy1: 88, Special1: 90,
		Up2: 87, Down2: 83, Left2: 65, Right2: 68, Heavy2: 16, Special2: 89,
		Up3: 999, Down3: 999, Left3: 999, Right3: 999, Heavy3: 32, Special3: 999,
		Filter:  true,
		Help:    true,
		Quality: 3,
	}
}

// DecodeSettings reads settings from a big-endian buffer, honoring the
// version gates of every historical format revision.
func DecodeSettings(b *bytebuf.ByteBuffer) (Settings, error) {
	s := DefaultSettings()
	v, err := b.ReadUint16()
	if err != nil {
		return s, err
	}
	s.Version = int(v)

	if s.Version >= 1 {
		for _, dst := range []*uint16{
			&s.Up1, &s.Up2, &s.Down1, &s.Down2, &s.Left1, &s.Left2,
			&s.Right1, &s.Right2, &s.Heavy1, &s.Heavy2, &s.Special1, &s.Special2,
		} {
			if *dst, err = b.ReadUint16(); err != nil {
				return s, err
			}
		}
	}
	if s.Version >= 2 {
		f, err := b.ReadUint8()
		if err != nil {
			return s, err
		}
		s.Filter = f == 1
	}
	if s.Version >= 3 {
		f, err := b.ReadUint8()
		if err != nil {
			return s, err
		}
		s.Stats = f == 1
	}
	if s.Version >= 3 && s.Version <= 5 {
		// Quality was a single high/low flag before version 6.
		f, err := b.ReadUint8()
		if err != nil {
			return s, err
		}
		if f == 1 {
			s.Quality = 3
		} else {
			s.Quality = 2
		}
	}
	if s.Version >= 4 {
		f, err := b.ReadUint8()
		if err != nil {
			return s, err
		}
		s.Help = f == 1
	}
	if s.Version >= 3 {
		for _, dst := range []*uint16{
			&s.Up3, &s.Down3, &s.Left3, &s.Right3, &s.Heavy3, &s.Special3,
		} {
			if *dst, err = b.ReadUint16(); err != nil {
				return s, err
			}
		}
	}
	if s.Version >= 6 {
		q, err := b.ReadUint16()
		if err != nil {
			return s, err
		}
		s.Quality = int(q)
	}
	return s, nil
}

// Encode writes the settings in the current format version.
func (s Settings) Encode() *bytebuf.ByteBuffer {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteUint16(SettingsVersion)
	for _, v := range []uint16{
		s.Up1, s.Up2, s.Down1, s.Down2, s.Left1, s.Left2,
		s.Right1, s.Right2, s.Heavy1, s.Heavy2, s.Special1, s.Special2,
	} {
		b.WriteUint16(v)
	}
	b.WriteBool(s.Filter)
	b.WriteBool(s.Stats)
	b.WriteBool(s.Help)
	for _, v := range []uint16{
		s.Up3, s.Down3, s.Left3, s.Right3, s.Heavy3, s.Special3,
	} {
		b.WriteUint16(v)
	}
	b.WriteUint16(uint16(s.Quality))
	return b
}
