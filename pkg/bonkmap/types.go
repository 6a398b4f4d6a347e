// Package bonkmap implements the versioned binary map format of bonk.io,
// its lz-string database encoding and the JSON form exchanged in game
// settings. Fifteen format revisions are readable; encoding honors the
// version gates so a decoded map re-encodes byte for byte.
package bonkmap

import (
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

// Vec is a 2D point or vector.
type Vec struct {
	X, Y float64
}

// Map is a complete level: metadata, world properties, physics objects,
// spawns and capture zones.
type Map struct {
	Version    int
	Metadata   Metadata
	Properties Properties
	Physics    Physics
	Spawns     []Spawn
	CapZones   []CaptureZone
}

// Metadata describes a map's database entry. The original_* fields point
// at the map this one was remixed from. VotesUp and VotesDown are nil for
// maps that predate vote counts (format version 10).
type Metadata struct {
	Name   string
	Author string

	DatabaseID      int
	DatabaseVersion int

	OriginalName            string
	OriginalAuthor          string
	OriginalDatabaseID      uint32
	OriginalDatabaseVersion int

	Published    bool
	Contributors []string
	Date         string
	AuthorID     int
	Mode         bonk.Mode

	VotesUp   *uint32
	VotesDown *uint32
}

// Properties are the world-level physics toggles.
type Properties struct {
	GridSize           float64
	PlayersDontCollide bool
	RespawnOnDeath     bool
	PlayersCanFly      bool
	ComplexPhysics     bool
}

// Physics holds every physical object of a map.
type Physics struct {
	PPM      float64
	BRO      []int
	Shapes   []Shape
	Fixtures []Fixture
	Bodies   []Body
	Joints   []Joint
}

// Shape is one collision geometry. Concrete types are BoxShape,
// CircleShape and PolygonShape.
type Shape interface {
	shapeID() int16
}

type BoxShape struct {
	Width    float64
	Height   float64
	Position Vec
	Angle    float64
	Shrink   bool
}

type CircleShape struct {
	Radius   float64
	Position Vec
	Shrink   bool
}

type PolygonShape struct {
	Scale    float64
	Angle    float64
	Position Vec
	Vertices []Vec
}

func (BoxShape) shapeID() int16     { return 1 }
func (CircleShape) shapeID() int16  { return 2 }
func (PolygonShape) shapeID() int16 { return 3 }

// Fixture binds a shape to surface properties. Friction, Restitution and
// Density are nil when the fixture inherits its body's value; the binary
// form marks that with a max-float sentinel. InnerGrapple is nil below
// format version 12. SN, FS and ZP only occur in the JSON form.
type Fixture struct {
	ShapeID         int
	Name            string
	Friction        *float64
	FrictionPlayers *bool
	Restitution     *float64
	Density         *float64
	Color           uint32
	Death           bool
	NoPhysics       bool
	NoGrapple       bool
	InnerGrapple    *bool

	SN *bool
	FS *bool
	ZP *int
}

// BodyType distinguishes static geometry from dynamic bodies.
type BodyType string

const (
	BodyDynamic BodyType = "d"
	BodyStatic  BodyType = "s"
)

// CollideFlag is the bitmask of collision layers a body interacts with.
type CollideFlag uint8

const (
	CollideA CollideFlag = 1 << iota
	CollideB
	CollideC
	CollideD
	CollidePlayers

	CollideNone CollideFlag = 0
	CollideAll              = CollideA | CollideB | CollideC | CollideD | CollidePlayers
)

// BodyShape carries the material and collision settings of a body.
type BodyShape struct {
	Type BodyType
	Name string

	Density     float64
	Restitution float64
	Friction    float64

	LinearDamping  float64
	AngularDamping float64
	FixedRotation  bool

	FrictionPlayers bool
	AntiTunnel      bool

	CollideMask  CollideFlag
	CollideGroup int
}

// BodyForce is a constant force applied to a body each step.
type BodyForce struct {
	X        float64
	Y        float64
	Torque   float64
	Relative bool
}

// ForceZoneType selects how a force zone pushes.
type ForceZoneType int16

const (
	ForceZoneAbsolute   ForceZoneType = 0
	ForceZoneRelative   ForceZoneType = 1
	ForceZoneCenterPush ForceZoneType = 2
	ForceZoneCenterPull ForceZoneType = 3
)

// ForceZone turns a body into a region that pushes whatever enters it.
// Only present from format version 14; Type and CenterForce from 15.
type ForceZone struct {
	Enabled     bool
	Type        ForceZoneType
	Force       Vec
	PushPlayers bool
	PushBodies  bool
	PushArrows  bool
	CenterForce float64
}

// Body is one rigid body with its attached fixtures.
type Body struct {
	Name string

	Position        Vec
	LinearVelocity  Vec
	Angle           float64
	AngularVelocity float64

	Fixtures  []int
	Shape     BodyShape
	Force     BodyForce
	ForceZone ForceZone
}

// Spawn is a spawn point with per-team availability.
type Spawn struct {
	Name     string
	Position Vec
	Velocity Vec
	Priority int

	Red    bool
	FFA    bool
	Blue   bool
	Green  bool
	Yellow bool
}

// CaptureType selects what capturing a zone does.
type CaptureType int16

const (
	CaptureNormal        CaptureType = 0
	CaptureInstantRed    CaptureType = 1
	CaptureInstantBlue   CaptureType = 2
	CaptureInstantGreen  CaptureType = 3
	CaptureInstantYellow CaptureType = 4
)

// CaptureZone is a win condition region tied to a shape.
type CaptureZone struct {
	Name    string
	Seconds float64
	ShapeID int
	Type    CaptureType
}

// Joint is one physical constraint between bodies. Concrete types are
// RevoluteJoint, DistanceJoint, PistonJoint, SpringJoint and GearJoint.
type Joint interface {
	jointID() int16
}

// JointProps is the common tail every non-gear joint carries.
type JointProps struct {
	ShapeA           int
	ShapeB           int
	CollideConnected bool
	BreakForce       float64
	DrawLine         bool
}

type RevoluteJoint struct {
	FromAngle   float64
	ToAngle     float64
	TurnForce   float64
	MotorSpeed  float64
	EnableLimit bool
	EnableMotor bool
	Pivot       Vec
	JointProps
}

type DistanceJoint struct {
	Softness float64
	Damping  float64
	Pivot    Vec
	Attach   Vec
	JointProps
}

// PistonJoint constrains a body to slide along an axis under motor power.
type PistonJoint struct {
	Position Vec
	Angle    float64
	Force    float64
	PL       float64
	PU       float64
	Length   float64
	Speed    float64
	JointProps
}

// SpringJoint pulls a body toward a point with spring force.
type SpringJoint struct {
	Position Vec
	Force    float64
	Length   float64
	JointProps
}

type GearJoint struct {
	Name   string
	Ratio  float64
	JointA int
	JointB int
}

func (*RevoluteJoint) jointID() int16 { return 1 }
func (*DistanceJoint) jointID() int16 { return 2 }
func (*PistonJoint) jointID() int16   { return 3 }
func (*SpringJoint) jointID() int16   { return 4 }
func (*GearJoint) jointID() int16     { return 5 }

// New returns an empty map with the client's default world settings.
func New() *Map {
	return &Map{
		Version: bonk.MapVersion,
		Metadata: Metadata{
			Name:   "noname",
			Author: "noauthor",
			Mode:   bonk.ModeNone,
		},
		Properties: Properties{GridSize: 25},
		Physics:    Physics{PPM: 12},
	}
}
