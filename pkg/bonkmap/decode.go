package bonkmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

// ErrFutureVersion marks a map written by a newer client than this
// package understands.
var ErrFutureVersion = errors.New("bonkmap: future map version")

// Inherited fixture properties are stored as the largest float64.
const inheritSentinel = math.MaxFloat64

// DecodeDatabase decodes a map from its lz-string database form.
func DecodeDatabase(encoded string) (*Map, error) {
	b, err := bytebuf.FromBase64(encoded, bytebuf.BigEndian, bytebuf.Transform{LZCompressed: true})
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Decode reads a map from its binary form.
func Decode(b *bytebuf.ByteBuffer) (*Map, error) {
	m := New()

	v, err := b.ReadInt16()
	if err != nil {
		return nil, err
	}
	m.Version = int(v)
	if m.Version > bonk.MapVersion {
		return nil, fmt.Errorf("%w: %d", ErrFutureVersion, m.Version)
	}

	if err := m.decodeProperties(b); err != nil {
		return nil, err
	}
	if err := m.decodeMetadata(b); err != nil {
		return nil, err
	}
	if err := m.decodePhysics(b); err != nil {
		return nil, err
	}
	if err := m.decodeSpawns(b); err != nil {
		return nil, err
	}
	if err := m.decodeCapZones(b); err != nil {
		return nil, err
	}
	if err := m.decodeJoints(b); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map) decodeProperties(b *bytebuf.ByteBuffer) error {
	var err error
	if m.Properties.RespawnOnDeath, err = b.ReadBool(); err != nil {
		return err
	}
	if m.Properties.PlayersDontCollide, err = b.ReadBool(); err != nil {
		return err
	}
	if m.Version >= 3 {
		pq, err := b.ReadInt16()
		if err != nil {
			return err
		}
		m.Properties.ComplexPhysics = pq == 2
	}
	if m.Version >= 4 && m.Version <= 12 {
		gd, err := b.ReadInt16()
		if err != nil {
			return err
		}
		m.Properties.GridSize = float64(gd)
	} else if m.Version >= 13 {
		gd, err := b.ReadFloat32()
		if err != nil {
			return err
		}
		m.Properties.GridSize = float64(gd)
	}
	if m.Version >= 9 {
		if m.Properties.PlayersCanFly, err = b.ReadBool(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) decodeMetadata(b *bytebuf.ByteBuffer) error {
	md := &m.Metadata
	var err error
	if md.OriginalName, err = b.ReadUTF(); err != nil {
		return err
	}
	if md.OriginalAuthor, err = b.ReadUTF(); err != nil {
		return err
	}
	if md.OriginalDatabaseID, err = b.ReadUint32(); err != nil {
		return err
	}
	odv, err := b.ReadInt16()
	if err != nil {
		return err
	}
	md.OriginalDatabaseVersion = int(odv)
	if md.Name, err = b.ReadUTF(); err != nil {
		return err
	}
	if md.Author, err = b.ReadUTF(); err != nil {
		return err
	}

	if m.Version >= 10 {
		up, err := b.ReadUint32()
		if err != nil {
			return err
		}
		down, err := b.ReadUint32()
		if err != nil {
			return err
		}
		md.VotesUp, md.VotesDown = &up, &down
	}
	if m.Version >= 4 {
		n, err := b.ReadInt16()
		if err != nil {
			return err
		}
		md.Contributors = make([]string, 0, n)
		for i := int16(0); i < n; i++ {
			c, err := b.ReadUTF()
			if err != nil {
				return err
			}
			md.Contributors = append(md.Contributors, c)
		}
	}
	if m.Version >= 5 {
		code, err := b.ReadUTF()
		if err != nil {
			return err
		}
		if md.Mode, err = bonk.ModeFromCode(code); err != nil {
			return err
		}
		id, err := b.ReadInt32()
		if err != nil {
			return err
		}
		md.DatabaseID = int(id)
	}
	if m.Version >= 7 {
		if md.Published, err = b.ReadBool(); err != nil {
			return err
		}
	}
	if m.Version >= 8 {
		dbv, err := b.ReadInt32()
		if err != nil {
			return err
		}
		md.DatabaseVersion = int(dbv)
	}
	return nil
}

func readVec(b *bytebuf.ByteBuffer) (Vec, error) {
	x, err := b.ReadFloat64()
	if err != nil {
		return Vec{}, err
	}
	y, err := b.ReadFloat64()
	if err != nil {
		return Vec{}, err
	}
	return Vec{x, y}, nil
}

func (m *Map) decodePhysics(b *bytebuf.ByteBuffer) error {
	ph := &m.Physics
	ppm, err := b.ReadInt16()
	if err != nil {
		return err
	}
	ph.PPM = float64(ppm)

	broCount, err := b.ReadInt16()
	if err != nil {
		return err
	}
	ph.BRO = make([]int, 0, broCount)
	for i := int16(0); i < broCount; i++ {
		v, err := b.ReadInt16()
		if err != nil {
			return err
		}
		ph.BRO = append(ph.BRO, int(v))
	}

	if err := m.decodeShapes(b); err != nil {
		return err
	}
	if err := m.decodeFixtures(b); err != nil {
		return err
	}
	return m.decodeBodies(b)
}

func (m *Map) decodeShapes(b *bytebuf.ByteBuffer) error {
	count, err := b.ReadInt16()
	if err != nil {
		return err
	}
	for i := int16(0); i < count; i++ {
		id, err := b.ReadInt16()
		if err != nil {
			return err
		}
		var shape Shape
		switch id {
		case 1:
			var s BoxShape
			if s.Width, err = b.ReadFloat64(); err != nil {
				return err
			}
			if s.Height, err = b.ReadFloat64(); err != nil {
				return err
			}
			if s.Position, err = readVec(b); err != nil {
				return err
			}
			if s.Angle, err = b.ReadFloat64(); err != nil {
				return err
			}
			if s.Shrink, err = b.ReadBool(); err != nil {
				return err
			}
			shape = s
		case 2:
			var s CircleShape
			if s.Radius, err = b.ReadFloat64(); err != nil {
				return err
			}
			if s.Position, err = readVec(b); err != nil {
				return err
			}
			if s.Shrink, err = b.ReadBool(); err != nil {
				return err
			}
			shape = s
		case 3:
			var s PolygonShape
			if s.Scale, err = b.ReadFloat64(); err != nil {
				return err
			}
			if s.Angle, err = b.ReadFloat64(); err != nil {
				return err
			}
			if s.Position, err = readVec(b); err != nil {
				return err
			}
			n, err := b.ReadInt16()
			if err != nil {
				return err
			}
			s.Vertices = make([]Vec, 0, n)
			for j := int16(0); j < n; j++ {
				v, err := readVec(b)
				if err != nil {
					return err
				}
				s.Vertices = append(s.Vertices, v)
			}
			shape = s
		default:
			return fmt.Errorf("bonkmap: invalid shape id %d", id)
		}
		m.Physics.Shapes = append(m.Physics.Shapes, shape)
	}
	return nil
}

// readInherited reads a float64 that may be the inherit sentinel.
func readInherited(b *bytebuf.ByteBuffer) (*float64, error) {
	v, err := b.ReadFloat64()
	if err != nil {
		return nil, err
	}
	if v == inheritSentinel {
		return nil, nil
	}
	return &v, nil
}

func (m *Map) decodeFixtures(b *bytebuf.ByteBuffer) error {
	count, err := b.ReadInt16()
	if err != nil {
		return err
	}
	for i := int16(0); i < count; i++ {
		var f Fixture
		id, err := b.ReadInt16()
		if err != nil {
			return err
		}
		f.ShapeID = int(id)
		if f.Name, err = b.ReadUTF(); err != nil {
			return err
		}
		if f.Friction, err = readInherited(b); err != nil {
			return err
		}

		fp, err := b.ReadInt16()
		if err != nil {
			return err
		}
		switch fp {
		case 1:
			v := false
			f.FrictionPlayers = &v
		case 2:
			v := true
			f.FrictionPlayers = &v
		}

		if f.Restitution, err = readInherited(b); err != nil {
			return err
		}
		if f.Density, err = readInherited(b); err != nil {
			return err
		}
		if f.Color, err = b.ReadUint32(); err != nil {
			return err
		}
		if f.Death, err = b.ReadBool(); err != nil {
			return err
		}
		if f.NoPhysics, err = b.ReadBool(); err != nil {
			return err
		}
		if m.Version >= 11 {
			if f.NoGrapple, err = b.ReadBool(); err != nil {
				return err
			}
		}
		if m.Version >= 12 {
			ig, err := b.ReadBool()
			if err != nil {
				return err
			}
			f.InnerGrapple = &ig
		}
		m.Physics.Fixtures = append(m.Physics.Fixtures, f)
	}
	return nil
}

func (m *Map) decodeBodies(b *bytebuf.ByteBuffer) error {
	count, err := b.ReadInt16()
	if err != nil {
		return err
	}
	for i := int16(0); i < count; i++ {
		var body Body
		bt, err := b.ReadUTF()
		if err != nil {
			return err
		}
		body.Shape.Type = BodyType(bt)
		if body.Shape.Name, err = b.ReadUTF(); err != nil {
			return err
		}
		if body.Position, err = readVec(b); err != nil {
			return err
		}
		if body.Angle, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Shape.Friction, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Shape.FrictionPlayers, err = b.ReadBool(); err != nil {
			return err
		}
		if body.Shape.Restitution, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Shape.Density, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.LinearVelocity, err = readVec(b); err != nil {
			return err
		}
		if body.AngularVelocity, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Shape.LinearDamping, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Shape.AngularDamping, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Shape.FixedRotation, err = b.ReadBool(); err != nil {
			return err
		}
		if body.Shape.AntiTunnel, err = b.ReadBool(); err != nil {
			return err
		}
		if body.Force.X, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Force.Y, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Force.Torque, err = b.ReadFloat64(); err != nil {
			return err
		}
		if body.Force.Relative, err = b.ReadBool(); err != nil {
			return err
		}
		cg, err := b.ReadInt16()
		if err != nil {
			return err
		}
		body.Shape.CollideGroup = int(cg)

		for _, flag := range []CollideFlag{CollideA, CollideB, CollideC, CollideD} {
			on, err := b.ReadBool()
			if err != nil {
				return err
			}
			if on {
				body.Shape.CollideMask |= flag
			}
		}
		if m.Version >= 2 {
			on, err := b.ReadBool()
			if err != nil {
				return err
			}
			if on {
				body.Shape.CollideMask |= CollidePlayers
			}
		}

		if m.Version >= 14 {
			if body.ForceZone.Enabled, err = b.ReadBool(); err != nil {
				return err
			}
			if body.ForceZone.Enabled {
				if body.ForceZone.Force, err = readVec(b); err != nil {
					return err
				}
				if body.ForceZone.PushPlayers, err = b.ReadBool(); err != nil {
					return err
				}
				if body.ForceZone.PushBodies, err = b.ReadBool(); err != nil {
					return err
				}
				if body.ForceZone.PushArrows, err = b.ReadBool(); err != nil {
					return err
				}
				if m.Version >= 15 {
					fzt, err := b.ReadInt16()
					if err != nil {
						return err
					}
					body.ForceZone.Type = ForceZoneType(fzt)
					if body.ForceZone.CenterForce, err = b.ReadFloat64(); err != nil {
						return err
					}
				}
			}
		}

		n, err := b.ReadInt16()
		if err != nil {
			return err
		}
		body.Fixtures = make([]int, 0, n)
		for j := int16(0); j < n; j++ {
			fi, err := b.ReadInt16()
			if err != nil {
				return err
			}
			body.Fixtures = append(body.Fixtures, int(fi))
		}
		m.Physics.Bodies = append(m.Physics.Bodies, body)
	}
	return nil
}

func (m *Map) decodeSpawns(b *bytebuf.ByteBuffer) error {
	count, err := b.ReadInt16()
	if err != nil {
		return err
	}
	for i := int16(0); i < count; i++ {
		var s Spawn
		if s.Position, err = readVec(b); err != nil {
			return err
		}
		if s.Velocity, err = readVec(b); err != nil {
			return err
		}
		pr, err := b.ReadInt16()
		if err != nil {
			return err
		}
		s.Priority = int(pr)
		if s.Red, err = b.ReadBool(); err != nil {
			return err
		}
		if s.FFA, err = b.ReadBool(); err != nil {
			return err
		}
		if s.Blue, err = b.ReadBool(); err != nil {
			return err
		}
		if s.Green, err = b.ReadBool(); err != nil {
			return err
		}
		if s.Yellow, err = b.ReadBool(); err != nil {
			return err
		}
		if s.Name, err = b.ReadUTF(); err != nil {
			return err
		}
		m.Spawns = append(m.Spawns, s)
	}
	return nil
}

func (m *Map) decodeCapZones(b *bytebuf.ByteBuffer) error {
	count, err := b.ReadInt16()
	if err != nil {
		return err
	}
	for i := int16(0); i < count; i++ {
		var cz CaptureZone
		if cz.Name, err = b.ReadUTF(); err != nil {
			return err
		}
		if cz.Seconds, err = b.ReadFloat64(); err != nil {
			return err
		}
		id, err := b.ReadInt16()
		if err != nil {
			return err
		}
		cz.ShapeID = int(id)
		if m.Version >= 6 {
			ct, err := b.ReadInt16()
			if err != nil {
				return err
			}
			cz.Type = CaptureType(ct)
		}
		m.CapZones = append(m.CapZones, cz)
	}
	return nil
}

func (m *Map) decodeJoints(b *bytebuf.ByteBuffer) error {
	count, err := b.ReadInt16()
	if err != nil {
		return err
	}
	for i := int16(0); i < count; i++ {
		id, err := b.ReadInt16()
		if err != nil {
			return err
		}
		var joint Joint
		var props *JointProps
		switch id {
		case 1:
			j := &RevoluteJoint{}
			if j.FromAngle, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.ToAngle, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.TurnForce, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.MotorSpeed, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.EnableLimit, err = b.ReadBool(); err != nil {
				return err
			}
			if j.EnableMotor, err = b.ReadBool(); err != nil {
				return err
			}
			if j.Pivot, err = readVec(b); err != nil {
				return err
			}
			joint, props = j, &j.JointProps
		case 2:
			j := &DistanceJoint{}
			if j.Softness, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.Damping, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.Pivot, err = readVec(b); err != nil {
				return err
			}
			if j.Attach, err = readVec(b); err != nil {
				return err
			}
			joint, props = j, &j.JointProps
		case 3:
			j := &PistonJoint{}
			if j.Position, err = readVec(b); err != nil {
				return err
			}
			if j.Angle, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.Force, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.PL, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.PU, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.Length, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.Speed, err = b.ReadFloat64(); err != nil {
				return err
			}
			joint, props = j, &j.JointProps
		case 4:
			j := &SpringJoint{}
			if j.Position, err = readVec(b); err != nil {
				return err
			}
			if j.Force, err = b.ReadFloat64(); err != nil {
				return err
			}
			if j.Length, err = b.ReadFloat64(); err != nil {
				return err
			}
			joint, props = j, &j.JointProps
		case 5:
			j := &GearJoint{}
			if j.Name, err = b.ReadUTF(); err != nil {
				return err
			}
			if j.Ratio, err = b.ReadFloat64(); err != nil {
				return err
			}
			ja, err := b.ReadInt16()
			if err != nil {
				return err
			}
			jb, err := b.ReadInt16()
			if err != nil {
				return err
			}
			j.JointA, j.JointB = int(ja), int(jb)
			joint = j
		default:
			return fmt.Errorf("bonkmap: invalid joint id %d", id)
		}

		if props != nil {
			sa, err := b.ReadInt16()
			if err != nil {
				return err
			}
			sb, err := b.ReadInt16()
			if err != nil {
				return err
			}
			props.ShapeA, props.ShapeB = int(sa), int(sb)
			if props.CollideConnected, err = b.ReadBool(); err != nil {
				return err
			}
			if props.BreakForce, err = b.ReadFloat64(); err != nil {
				return err
			}
			if props.DrawLine, err = b.ReadBool(); err != nil {
				return err
			}
		}
		m.Physics.Joints = append(m.Physics.Joints, joint)
	}
	return nil
}
