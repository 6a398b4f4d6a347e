package bonkmap

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

func ptrF(v float64) *float64 { return &v }
func ptrB(v bool) *bool       { return &v }

// fullMap builds a current-version map exercising every section.
func fullMap() *Map {
	m := New()
	m.Version = bonk.MapVersion

	up, down := uint32(12), uint32(3)
	m.Metadata = Metadata{
		Name:                    "test arena",
		Author:                  "someone",
		DatabaseID:              4321,
		DatabaseVersion:         2,
		OriginalName:            "base",
		OriginalAuthor:          "else",
		OriginalDatabaseID:      99,
		OriginalDatabaseVersion: 1,
		Published:               true,
		Contributors:            []string{"helper"},
		Mode:                    bonk.ModeClassic,
		VotesUp:                 &up,
		VotesDown:               &down,
	}
	m.Properties = Properties{
		GridSize:           12.5,
		PlayersDontCollide: true,
		RespawnOnDeath:     true,
		PlayersCanFly:      true,
		ComplexPhysics:     true,
	}
	m.Physics = Physics{
		PPM: 12,
		BRO: []int{2, 0, 1},
		Shapes: []Shape{
			BoxShape{Width: 100, Height: 20, Position: Vec{1, 2}, Angle: 0.5, Shrink: true},
			CircleShape{Radius: 30, Position: Vec{-5, 0}},
			PolygonShape{Scale: 2, Angle: 1, Position: Vec{3, 4}, Vertices: []Vec{{0, 0}, {10, 0}, {5, 8}}},
		},
		Fixtures: []Fixture{
			{
				ShapeID: 0, Name: "floor",
				Friction: ptrF(0.4), FrictionPlayers: ptrB(true),
				Restitution: ptrF(0.1), Density: ptrF(0.3),
				Color: 0xFF8800, Death: false, NoPhysics: false,
				NoGrapple: true, InnerGrapple: ptrB(false),
			},
			{
				ShapeID: 1, Name: "lava",
				Death: true, InnerGrapple: ptrB(true),
			},
		},
		Bodies: []Body{
			{
				Position:        Vec{10, 20},
				LinearVelocity:  Vec{1, -1},
				Angle:           0.25,
				AngularVelocity: 2,
				Fixtures:        []int{0, 1},
				Shape: BodyShape{
					Type: BodyStatic, Name: "ground",
					Density: 0.3, Restitution: 0.8, Friction: 0.3,
					CollideMask:  CollideAll,
					CollideGroup: 1,
				},
				Force: BodyForce{X: 0.5, Y: -9.8, Torque: 1, Relative: true},
				ForceZone: ForceZone{
					Enabled: true, Type: ForceZoneCenterPull,
					Force: Vec{0, -5}, PushPlayers: true, PushBodies: true,
					CenterForce: 7,
				},
			},
			{
				Fixtures: []int{},
				Shape: BodyShape{
					Type: BodyDynamic, Name: "crate",
					CollideMask: CollideA | CollidePlayers, CollideGroup: 2,
				},
			},
		},
		Joints: []Joint{
			&RevoluteJoint{
				FromAngle: -1, ToAngle: 1, TurnForce: 5, MotorSpeed: 2,
				EnableLimit: true, EnableMotor: true, Pivot: Vec{1, 1},
				JointProps: JointProps{ShapeA: 0, ShapeB: 1, CollideConnected: true, BreakForce: 10, DrawLine: true},
			},
			&DistanceJoint{
				Softness: 0.5, Damping: 0.7, Pivot: Vec{0, 0}, Attach: Vec{5, 5},
				JointProps: JointProps{ShapeA: 1, ShapeB: 0, BreakForce: 3},
			},
			&PistonJoint{
				Position: Vec{2, 2}, Angle: 1.5, Force: 4, Length: 10, Speed: 2,
				JointProps: JointProps{ShapeA: 0, ShapeB: 1, DrawLine: true},
			},
			&SpringJoint{
				Position: Vec{3, 3}, Force: 8, Length: 6,
				JointProps: JointProps{ShapeA: 1, ShapeB: 1},
			},
			&GearJoint{Name: "gears", Ratio: 1.5, JointA: 0, JointB: 1},
		},
	}
	m.Spawns = []Spawn{
		{Name: "mid", Position: Vec{0, -10}, Velocity: Vec{0, 1}, Priority: 5, FFA: true, Red: true, Blue: true},
		{Name: "side", Position: Vec{40, 0}, Green: true, Yellow: true},
	}
	m.CapZones = []CaptureZone{
		{Name: "goal", Seconds: 3.5, ShapeID: 2, Type: CaptureInstantBlue},
	}
	return m
}

func TestBinaryRoundTripCurrentVersion(t *testing.T) {
	m := fullMap()
	b, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, m)
	}
}

func TestBinaryRoundTripOldVersions(t *testing.T) {
	for _, version := range []int{1, 2, 5, 9, 12, 13} {
		m := New()
		m.Version = version
		m.Properties.RespawnOnDeath = true
		m.Metadata.OriginalName = "old"
		m.Metadata.Name = "legacy map"
		m.Metadata.Author = "author"
		if version >= 4 {
			m.Metadata.Contributors = []string{}
		}
		if version >= 5 {
			m.Metadata.Mode = bonk.ModeGrapple
			m.Metadata.DatabaseID = 7
		}
		if version >= 10 {
			up, down := uint32(1), uint32(0)
			m.Metadata.VotesUp, m.Metadata.VotesDown = &up, &down
		}
		if version >= 4 && version <= 12 {
			m.Properties.GridSize = 30
		}
		m.Physics.PPM = 12
		m.Physics.BRO = []int{}
		m.Physics.Fixtures = []Fixture{{ShapeID: 0, Name: "plain"}}
		if version >= 12 {
			m.Physics.Fixtures[0].InnerGrapple = ptrB(false)
		}
		m.Physics.Shapes = []Shape{CircleShape{Radius: 10}}

		b, err := m.Encode()
		if err != nil {
			t.Fatalf("v%d Encode: %v", version, err)
		}
		got, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
		if err != nil {
			t.Fatalf("v%d Decode: %v", version, err)
		}
		if !reflect.DeepEqual(got, m) {
			t.Errorf("v%d round trip mismatch:\n got %+v\nwant %+v", version, got, m)
		}
	}
}

func TestFutureVersionRejected(t *testing.T) {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteInt16(int16(bonk.MapVersion + 1))
	_, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if !errors.Is(err, ErrFutureVersion) {
		t.Errorf("future version error = %v", err)
	}
}

// v1Prefix writes the fixed part of an empty version 1 map up to the
// shape section.
func v1Prefix() *bytebuf.ByteBuffer {
	b := bytebuf.New(bytebuf.BigEndian)
	b.WriteInt16(1)    // version
	b.WriteBool(false) // respawn on death
	b.WriteBool(false) // players don't collide
	b.WriteUTF("")     // original name
	b.WriteUTF("")     // original author
	b.WriteUint32(0)   // original database id
	b.WriteInt16(0)    // original database version
	b.WriteUTF("")     // name
	b.WriteUTF("")     // author
	b.WriteInt16(12)   // ppm
	b.WriteInt16(0)    // bro
	return b
}

func TestInvalidShapeID(t *testing.T) {
	b := v1Prefix()
	b.WriteInt16(1) // one shape
	b.WriteInt16(9) // unknown id
	if _, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian)); err == nil {
		t.Error("invalid shape id decoded")
	}
}

func TestInvalidJointID(t *testing.T) {
	b := v1Prefix()
	b.WriteInt16(0) // shapes
	b.WriteInt16(0) // fixtures
	b.WriteInt16(0) // bodies
	b.WriteInt16(0) // spawns
	b.WriteInt16(0) // capture zones
	b.WriteInt16(1) // one joint
	b.WriteInt16(9) // unknown id
	if _, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian)); err == nil {
		t.Error("invalid joint id decoded")
	}
}

func TestInheritSentinel(t *testing.T) {
	m := New()
	m.Version = bonk.MapVersion
	m.Metadata.Contributors = []string{}
	m.Physics.BRO = []int{}
	m.Physics.Fixtures = []Fixture{{
		ShapeID: 0, Name: "inherit", InnerGrapple: ptrB(false),
	}}

	b, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatal(err)
	}
	f := got.Physics.Fixtures[0]
	if f.Friction != nil || f.Restitution != nil || f.Density != nil || f.FrictionPlayers != nil {
		t.Errorf("inherited fields survived round trip: %+v", f)
	}

	// The sentinel is the exact max float64.
	m.Physics.Fixtures[0].Friction = ptrF(math.MaxFloat64)
	b, err = m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err = Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatal(err)
	}
	if got.Physics.Fixtures[0].Friction != nil {
		t.Error("max float64 friction not treated as inherited")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m := fullMap()
	// SN, FS and ZP only exist in the JSON form.
	m.Physics.Fixtures[0].SN = ptrB(true)
	m.Physics.Fixtures[1].ZP = func() *int { v := 2; return &v }()
	m.Physics.Bodies[0].Name = "named body"

	got, err := FromJSON(m.ToJSON())
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("json round trip mismatch:\n got %+v\nwant %+v", got, m)
	}
}

func TestFromJSONBadMode(t *testing.T) {
	data := fullMap().ToJSON()
	data["m"].(map[string]any)["mo"] = "nope"
	if _, err := FromJSON(data); err == nil {
		t.Error("bad mode code accepted")
	}
}

func TestDatabaseEncoding(t *testing.T) {
	m := fullMap()
	encoded, err := m.EncodeDatabase()
	if err != nil {
		t.Fatalf("EncodeDatabase: %v", err)
	}
	got, err := DecodeDatabase(encoded)
	if err != nil {
		t.Fatalf("DecodeDatabase: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Error("database round trip mismatch")
	}
}

func TestDefaultMap(t *testing.T) {
	m, err := DefaultMap()
	if err != nil {
		t.Fatalf("DefaultMap: %v", err)
	}
	if m.Version < 1 || m.Version > bonk.MapVersion {
		t.Errorf("default map version = %d", m.Version)
	}
	// The stock map must survive its own re-encoding.
	b, err := m.Encode()
	if err != nil {
		t.Fatal(err)
	}
	again, err := Decode(bytebuf.NewReader(b.Bytes(), bytebuf.BigEndian))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, m) {
		t.Error("default map round trip mismatch")
	}

	// Two calls share no state.
	other, err := DefaultMap()
	if err != nil {
		t.Fatal(err)
	}
	other.Metadata.Name = "mutated"
	if m.Metadata.Name == "mutated" {
		t.Error("DefaultMap returns shared state")
	}
}
