package bonkmap

import (
	"fmt"

	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

// EncodeDatabase encodes the map into its lz-string database form.
func (m *Map) EncodeDatabase() (string, error) {
	b, err := m.Encode()
	if err != nil {
		return "", err
	}
	return b.ToBase64(bytebuf.Transform{LZCompressed: true})
}

// Encode writes the map in its binary form, honoring the same version
// gates the decoder reads with.
func (m *Map) Encode() (*bytebuf.ByteBuffer, error) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteInt16(int16(m.Version))

	m.encodeProperties(b)
	m.encodeMetadata(b)
	m.encodePhysics(b)
	m.encodeSpawns(b)
	m.encodeCapZones(b)
	if err := m.encodeJoints(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (m *Map) encodeProperties(b *bytebuf.ByteBuffer) {
	b.WriteBool(m.Properties.RespawnOnDeath)
	b.WriteBool(m.Properties.PlayersDontCollide)
	if m.Version >= 3 {
		if m.Properties.ComplexPhysics {
			b.WriteInt16(2)
		} else {
			b.WriteInt16(1)
		}
	}
	if m.Version >= 4 && m.Version <= 12 {
		b.WriteInt16(int16(m.Properties.GridSize))
	} else if m.Version >= 13 {
		b.WriteFloat32(float32(m.Properties.GridSize))
	}
	if m.Version >= 9 {
		b.WriteBool(m.Properties.PlayersCanFly)
	}
}

func (m *Map) encodeMetadata(b *bytebuf.ByteBuffer) {
	md := &m.Metadata
	b.WriteUTF(md.OriginalName)
	b.WriteUTF(md.OriginalAuthor)
	b.WriteUint32(md.OriginalDatabaseID)
	b.WriteInt16(int16(md.OriginalDatabaseVersion))
	b.WriteUTF(md.Name)
	b.WriteUTF(md.Author)

	if m.Version >= 10 {
		var up, down uint32
		if md.VotesUp != nil {
			up = *md.VotesUp
		}
		if md.VotesDown != nil {
			down = *md.VotesDown
		}
		b.WriteUint32(up)
		b.WriteUint32(down)
	}
	if m.Version >= 4 {
		b.WriteInt16(int16(len(md.Contributors)))
		for _, c := range md.Contributors {
			b.WriteUTF(c)
		}
	}
	if m.Version >= 5 {
		b.WriteUTF(md.Mode.Code)
		b.WriteInt32(int32(md.DatabaseID))
	}
	if m.Version >= 7 {
		b.WriteBool(md.Published)
	}
	if m.Version >= 8 {
		b.WriteInt32(int32(md.DatabaseVersion))
	}
}

func writeVec(b *bytebuf.ByteBuffer, v Vec) {
	b.WriteFloat64(v.X)
	b.WriteFloat64(v.Y)
}

// writeInherited writes a nilable float64 using the inherit sentinel.
func writeInherited(b *bytebuf.ByteBuffer, v *float64) {
	if v == nil {
		b.WriteFloat64(inheritSentinel)
		return
	}
	b.WriteFloat64(*v)
}

func (m *Map) encodePhysics(b *bytebuf.ByteBuffer) {
	ph := &m.Physics
	b.WriteInt16(int16(ph.PPM))

	b.WriteInt16(int16(len(ph.BRO)))
	for _, v := range ph.BRO {
		b.WriteInt16(int16(v))
	}

	b.WriteInt16(int16(len(ph.Shapes)))
	for _, shape := range ph.Shapes {
		b.WriteInt16(shape.shapeID())
		switch s := shape.(type) {
		case BoxShape:
			b.WriteFloat64(s.Width)
			b.WriteFloat64(s.Height)
			writeVec(b, s.Position)
			b.WriteFloat64(s.Angle)
			b.WriteBool(s.Shrink)
		case CircleShape:
			b.WriteFloat64(s.Radius)
			writeVec(b, s.Position)
			b.WriteBool(s.Shrink)
		case PolygonShape:
			b.WriteFloat64(s.Scale)
			b.WriteFloat64(s.Angle)
			writeVec(b, s.Position)
			b.WriteInt16(int16(len(s.Vertices)))
			for _, v := range s.Vertices {
				writeVec(b, v)
			}
		}
	}

	b.WriteInt16(int16(len(ph.Fixtures)))
	for _, f := range ph.Fixtures {
		b.WriteInt16(int16(f.ShapeID))
		b.WriteUTF(f.Name)
		writeInherited(b, f.Friction)
		switch {
		case f.FrictionPlayers == nil:
			b.WriteInt16(0)
		case !*f.FrictionPlayers:
			b.WriteInt16(1)
		default:
			b.WriteInt16(2)
		}
		writeInherited(b, f.Restitution)
		writeInherited(b, f.Density)
		b.WriteUint32(f.Color)
		b.WriteBool(f.Death)
		b.WriteBool(f.NoPhysics)
		if m.Version >= 11 {
			b.WriteBool(f.NoGrapple)
		}
		if m.Version >= 12 {
			b.WriteBool(f.InnerGrapple != nil && *f.InnerGrapple)
		}
	}

	b.WriteInt16(int16(len(ph.Bodies)))
	for _, body := range ph.Bodies {
		b.WriteUTF(string(body.Shape.Type))
		b.WriteUTF(body.Shape.Name)
		writeVec(b, body.Position)
		b.WriteFloat64(body.Angle)
		b.WriteFloat64(body.Shape.Friction)
		b.WriteBool(body.Shape.FrictionPlayers)
		b.WriteFloat64(body.Shape.Restitution)
		b.WriteFloat64(body.Shape.Density)
		writeVec(b, body.LinearVelocity)
		b.WriteFloat64(body.AngularVelocity)
		b.WriteFloat64(body.Shape.LinearDamping)
		b.WriteFloat64(body.Shape.AngularDamping)
		b.WriteBool(body.Shape.FixedRotation)
		b.WriteBool(body.Shape.AntiTunnel)
		b.WriteFloat64(body.Force.X)
		b.WriteFloat64(body.Force.Y)
		b.WriteFloat64(body.Force.Torque)
		b.WriteBool(body.Force.Relative)
		b.WriteInt16(int16(body.Shape.CollideGroup))
		for _, flag := range []CollideFlag{CollideA, CollideB, CollideC, CollideD} {
			b.WriteBool(body.Shape.CollideMask&flag != 0)
		}
		if m.Version >= 2 {
			b.WriteBool(body.Shape.CollideMask&CollidePlayers != 0)
		}
		if m.Version >= 14 {
			b.WriteBool(body.ForceZone.Enabled)
			if body.ForceZone.Enabled {
				writeVec(b, body.ForceZone.Force)
				b.WriteBool(body.ForceZone.PushPlayers)
				b.WriteBool(body.ForceZone.PushBodies)
				b.WriteBool(body.ForceZone.PushArrows)
				if m.Version >= 15 {
					b.WriteInt16(int16(body.ForceZone.Type))
					b.WriteFloat64(body.ForceZone.CenterForce)
				}
			}
		}
		b.WriteInt16(int16(len(body.Fixtures)))
		for _, fi := range body.Fixtures {
			b.WriteInt16(int16(fi))
		}
	}
}

func (m *Map) encodeSpawns(b *bytebuf.ByteBuffer) {
	b.WriteInt16(int16(len(m.Spawns)))
	for _, s := range m.Spawns {
		writeVec(b, s.Position)
		writeVec(b, s.Velocity)
		b.WriteInt16(int16(s.Priority))
		b.WriteBool(s.Red)
		b.WriteBool(s.FFA)
		b.WriteBool(s.Blue)
		b.WriteBool(s.Green)
		b.WriteBool(s.Yellow)
		b.WriteUTF(s.Name)
	}
}

func (m *Map) encodeCapZones(b *bytebuf.ByteBuffer) {
	b.WriteInt16(int16(len(m.CapZones)))
	for _, cz := range m.CapZones {
		b.WriteUTF(cz.Name)
		b.WriteFloat64(cz.Seconds)
		b.WriteInt16(int16(cz.ShapeID))
		if m.Version >= 6 {
			b.WriteInt16(int16(cz.Type))
		}
	}
}

func (m *Map) encodeJoints(b *bytebuf.ByteBuffer) error {
	b.WriteInt16(int16(len(m.Physics.Joints)))
	for _, joint := range m.Physics.Joints {
		b.WriteInt16(joint.jointID())
		var props *JointProps
		switch j := joint.(type) {
		case *RevoluteJoint:
			b.WriteFloat64(j.FromAngle)
			b.WriteFloat64(j.ToAngle)
			b.WriteFloat64(j.TurnForce)
			b.WriteFloat64(j.MotorSpeed)
			b.WriteBool(j.EnableLimit)
			b.WriteBool(j.EnableMotor)
			writeVec(b, j.Pivot)
			props = &j.JointProps
		case *DistanceJoint:
			b.WriteFloat64(j.Softness)
			b.WriteFloat64(j.Damping)
			writeVec(b, j.Pivot)
			writeVec(b, j.Attach)
			props = &j.JointProps
		case *PistonJoint:
			writeVec(b, j.Position)
			b.WriteFloat64(j.Angle)
			b.WriteFloat64(j.Force)
			b.WriteFloat64(j.PL)
			b.WriteFloat64(j.PU)
			b.WriteFloat64(j.Length)
			b.WriteFloat64(j.Speed)
			props = &j.JointProps
		case *SpringJoint:
			writeVec(b, j.Position)
			b.WriteFloat64(j.Force)
			b.WriteFloat64(j.Length)
			props = &j.JointProps
		case *GearJoint:
			b.WriteUTF(j.Name)
			b.WriteFloat64(j.Ratio)
			b.WriteInt16(int16(j.JointA))
			b.WriteInt16(int16(j.JointB))
		default:
			return fmt.Errorf("bonkmap: cannot encode joint %T", joint)
		}
		if props != nil {
			b.WriteInt16(int16(props.ShapeA))
			b.WriteInt16(int16(props.ShapeB))
			b.WriteBool(props.CollideConnected)
			b.WriteFloat64(props.BreakForce)
			b.WriteBool(props.DrawLine)
		}
	}
	return nil
}
