package bonkmap

import (
	"fmt"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

// ToJSON renders the map as the generic structure carried inside game
// settings and game-state payloads.
func (m *Map) ToJSON() map[string]any {
	md := map[string]any{
		"a":      m.Metadata.Author,
		"n":      m.Metadata.Name,
		"dbv":    m.Metadata.DatabaseVersion,
		"dbid":   m.Metadata.DatabaseID,
		"rxa":    m.Metadata.OriginalAuthor,
		"rxn":    m.Metadata.OriginalName,
		"rxdb":   m.Metadata.OriginalDatabaseVersion,
		"rxid":   int(m.Metadata.OriginalDatabaseID),
		"pub":    m.Metadata.Published,
		"cr":     stringsToAny(m.Metadata.Contributors),
		"date":   m.Metadata.Date,
		"authid": m.Metadata.AuthorID,
		"mo":     m.Metadata.Mode.Code,
	}
	if m.Metadata.VotesDown != nil {
		md["vd"] = int(*m.Metadata.VotesDown)
	}
	if m.Metadata.VotesUp != nil {
		md["vu"] = int(*m.Metadata.VotesUp)
	}

	pq := 1
	if m.Properties.ComplexPhysics {
		pq = 2
	}
	props := map[string]any{
		"gd": m.Properties.GridSize,
		"nc": m.Properties.PlayersDontCollide,
		"re": m.Properties.RespawnOnDeath,
		"fl": m.Properties.PlayersCanFly,
		"pq": pq,
	}

	bodies := make([]any, 0, len(m.Physics.Bodies))
	for _, body := range m.Physics.Bodies {
		b := map[string]any{
			"a":  body.Angle,
			"av": body.AngularVelocity,
			"fx": intsToAny(body.Fixtures),
			"p":  vecJSON(body.Position),
			"lv": vecJSON(body.LinearVelocity),
			"cf": map[string]any{
				"x":  body.Force.X,
				"y":  body.Force.Y,
				"w":  body.Force.Relative,
				"ct": body.Force.Torque,
			},
			"fz": map[string]any{
				"on": body.ForceZone.Enabled,
				"x":  body.ForceZone.Force.X,
				"y":  body.ForceZone.Force.Y,
				"t":  int(body.ForceZone.Type),
				"d":  body.ForceZone.PushPlayers,
				"p":  body.ForceZone.PushBodies,
				"a":  body.ForceZone.PushArrows,
				"cf": body.ForceZone.CenterForce,
			},
			"s": map[string]any{
				"type":  string(body.Shape.Type),
				"n":     body.Shape.Name,
				"fricp": body.Shape.FrictionPlayers,
				"ld":    body.Shape.LinearDamping,
				"ad":    body.Shape.AngularDamping,
				"de":    body.Shape.Density,
				"fric":  body.Shape.Friction,
				"re":    body.Shape.Restitution,
				"fr":    body.Shape.FixedRotation,
				"bu":    body.Shape.AntiTunnel,
				"f_1":   body.Shape.CollideMask&CollideA != 0,
				"f_2":   body.Shape.CollideMask&CollideB != 0,
				"f_3":   body.Shape.CollideMask&CollideC != 0,
				"f_4":   body.Shape.CollideMask&CollideD != 0,
				"f_p":   body.Shape.CollideMask&CollidePlayers != 0,
				"f_c":   body.Shape.CollideGroup,
			},
		}
		if body.Name != "" {
			b["n"] = body.Name
		}
		bodies = append(bodies, b)
	}

	fixtures := make([]any, 0, len(m.Physics.Fixtures))
	for _, f := range m.Physics.Fixtures {
		fd := map[string]any{
			"d":  f.Death,
			"de": floatPtrJSON(f.Density),
			"f":  int(f.Color),
			"fp": boolPtrJSON(f.FrictionPlayers),
			"fr": floatPtrJSON(f.Friction),
			"n":  f.Name,
			"ng": f.NoGrapple,
			"np": f.NoPhysics,
			"re": floatPtrJSON(f.Restitution),
			"sh": f.ShapeID,
		}
		if f.InnerGrapple != nil {
			fd["ig"] = *f.InnerGrapple
		}
		if f.SN != nil {
			fd["sn"] = *f.SN
		}
		if f.FS != nil {
			fd["fs"] = *f.FS
		}
		if f.ZP != nil {
			fd["zp"] = *f.ZP
		}
		fixtures = append(fixtures, fd)
	}

	joints := make([]any, 0, len(m.Physics.Joints))
	for _, joint := range m.Physics.Joints {
		joints = append(joints, jointJSON(joint))
	}

	shapes := make([]any, 0, len(m.Physics.Shapes))
	for _, shape := range m.Physics.Shapes {
		var sd map[string]any
		switch s := shape.(type) {
		case BoxShape:
			sd = map[string]any{
				"type": "bx", "w": s.Width, "h": s.Height,
				"a": s.Angle, "sk": s.Shrink, "c": vecJSON(s.Position),
			}
		case CircleShape:
			sd = map[string]any{
				"type": "ci", "r": s.Radius,
				"sk": s.Shrink, "c": vecJSON(s.Position),
			}
		case PolygonShape:
			verts := make([]any, 0, len(s.Vertices))
			for _, v := range s.Vertices {
				verts = append(verts, vecJSON(v))
			}
			sd = map[string]any{
				"type": "po", "a": s.Angle, "s": s.Scale,
				"v": verts, "c": vecJSON(s.Position),
			}
		}
		shapes = append(shapes, sd)
	}

	spawns := make([]any, 0, len(m.Spawns))
	for _, s := range m.Spawns {
		spawns = append(spawns, map[string]any{
			"f": s.FFA, "b": s.Blue, "r": s.Red,
			"gr": s.Green, "ye": s.Yellow,
			"n": s.Name, "priority": s.Priority,
			"x": s.Position.X, "y": s.Position.Y,
			"xv": s.Velocity.X, "yv": s.Velocity.Y,
		})
	}

	capZones := make([]any, 0, len(m.CapZones))
	for _, cz := range m.CapZones {
		capZones = append(capZones, map[string]any{
			"i": cz.ShapeID, "l": cz.Seconds, "n": cz.Name, "ty": int(cz.Type),
		})
	}

	return map[string]any{
		"v": m.Version,
		"m": md,
		"s": props,
		"physics": map[string]any{
			"bodies":   bodies,
			"fixtures": fixtures,
			"joints":   joints,
			"shapes":   shapes,
			"bro":      intsToAny(m.Physics.BRO),
			"ppm":      m.Physics.PPM,
		},
		"spawns":   spawns,
		"capZones": capZones,
	}
}

func jointJSON(joint Joint) map[string]any {
	switch j := joint.(type) {
	case *RevoluteJoint:
		return map[string]any{
			"type": "rv", "ba": j.ShapeA, "bb": j.ShapeB, "aa": vecJSON(j.Pivot),
			"d": map[string]any{
				"la": j.FromAngle, "ua": j.ToAngle, "mmt": j.TurnForce,
				"ms": j.MotorSpeed, "el": j.EnableLimit, "em": j.EnableMotor,
				"cc": j.CollideConnected, "bf": j.BreakForce, "dl": j.DrawLine,
			},
		}
	case *DistanceJoint:
		return map[string]any{
			"type": "d", "ba": j.ShapeA, "bb": j.ShapeB,
			"aa": vecJSON(j.Pivot), "ab": vecJSON(j.Attach),
			"d": map[string]any{
				"fh": j.Softness, "dr": j.Damping,
				"cc": j.CollideConnected, "bf": j.BreakForce, "dl": j.DrawLine,
			},
		}
	case *PistonJoint:
		return map[string]any{
			"type": "lpj", "ba": j.ShapeA, "bb": j.ShapeB,
			"pax": j.Position.X, "pay": j.Position.Y,
			"pa": j.Angle, "pf": j.Force, "pl": j.PL, "pu": j.PU,
			"plen": j.Length, "pms": j.Speed,
			"d": map[string]any{
				"cc": j.CollideConnected, "bf": j.BreakForce, "dl": j.DrawLine,
			},
		}
	case *SpringJoint:
		return map[string]any{
			"type": "lsj", "ba": j.ShapeA, "bb": j.ShapeB,
			"sax": j.Position.X, "say": j.Position.Y,
			"sf": j.Force, "slen": j.Length,
			"d": map[string]any{
				"cc": j.CollideConnected, "bf": j.BreakForce, "dl": j.DrawLine,
			},
		}
	case *GearJoint:
		return map[string]any{
			"type": "g", "n": j.Name, "ja": j.JointA, "jb": j.JointB, "r": j.Ratio,
		}
	}
	return nil
}

// FromJSON rebuilds a map from its generic JSON structure. Numeric values
// may arrive as any integer or float width; missing optional keys fall
// back to zero values.
func FromJSON(data map[string]any) (*Map, error) {
	m := New()
	m.Version = jint(data["v"])

	if md, ok := data["m"].(map[string]any); ok {
		m.Metadata.Author = jstring(md["a"])
		m.Metadata.Name = jstring(md["n"])
		m.Metadata.DatabaseVersion = jint(md["dbv"])
		m.Metadata.DatabaseID = jint(md["dbid"])
		m.Metadata.OriginalAuthor = jstring(md["rxa"])
		m.Metadata.OriginalName = jstring(md["rxn"])
		m.Metadata.OriginalDatabaseVersion = jint(md["rxdb"])
		m.Metadata.OriginalDatabaseID = uint32(jint(md["rxid"]))
		m.Metadata.Published = jbool(md["pub"])
		m.Metadata.Date = jstring(md["date"])
		m.Metadata.AuthorID = jint(md["authid"])
		if cr, ok := md["cr"].([]any); ok {
			m.Metadata.Contributors = make([]string, 0, len(cr))
			for _, c := range cr {
				m.Metadata.Contributors = append(m.Metadata.Contributors, jstring(c))
			}
		}
		mode, err := bonk.ModeFromCode(jstring(md["mo"]))
		if err != nil {
			return nil, fmt.Errorf("bonkmap: %w", err)
		}
		m.Metadata.Mode = mode
		if v, ok := md["vd"]; ok && v != nil {
			vd := uint32(jint(v))
			m.Metadata.VotesDown = &vd
		}
		if v, ok := md["vu"]; ok && v != nil {
			vu := uint32(jint(v))
			m.Metadata.VotesUp = &vu
		}
	}

	if s, ok := data["s"].(map[string]any); ok {
		m.Properties.GridSize = jfloat(s["gd"])
		m.Properties.PlayersDontCollide = jbool(s["nc"])
		m.Properties.RespawnOnDeath = jbool(s["re"])
		m.Properties.PlayersCanFly = jbool(s["fl"])
		m.Properties.ComplexPhysics = jint(s["pq"]) == 2
	}

	phys, _ := data["physics"].(map[string]any)
	if phys != nil {
		m.Physics.PPM = jfloat(phys["ppm"])
		if bro, ok := phys["bro"].([]any); ok {
			m.Physics.BRO = make([]int, 0, len(bro))
			for _, v := range bro {
				m.Physics.BRO = append(m.Physics.BRO, jint(v))
			}
		}
		if bodies, ok := phys["bodies"].([]any); ok {
			for _, bd := range bodies {
				m.Physics.Bodies = append(m.Physics.Bodies, bodyFromJSON(bd))
			}
		}
		if fixtures, ok := phys["fixtures"].([]any); ok {
			for _, fd := range fixtures {
				m.Physics.Fixtures = append(m.Physics.Fixtures, fixtureFromJSON(fd))
			}
		}
		if joints, ok := phys["joints"].([]any); ok {
			for _, jd := range joints {
				joint, err := jointFromJSON(jd)
				if err != nil {
					return nil, err
				}
				m.Physics.Joints = append(m.Physics.Joints, joint)
			}
		}
		if shapes, ok := phys["shapes"].([]any); ok {
			for _, sd := range shapes {
				shape, err := shapeFromJSON(sd)
				if err != nil {
					return nil, err
				}
				m.Physics.Shapes = append(m.Physics.Shapes, shape)
			}
		}
	}

	if spawns, ok := data["spawns"].([]any); ok {
		for _, sd := range spawns {
			s, _ := sd.(map[string]any)
			if s == nil {
				continue
			}
			m.Spawns = append(m.Spawns, Spawn{
				Name:     jstring(s["n"]),
				Priority: jint(s["priority"]),
				Position: Vec{jfloat(s["x"]), jfloat(s["y"])},
				Velocity: Vec{jfloat(s["xv"]), jfloat(s["yv"])},
				FFA:      jbool(s["f"]),
				Blue:     jbool(s["b"]),
				Red:      jbool(s["r"]),
				Green:    jbool(s["gr"]),
				Yellow:   jbool(s["ye"]),
			})
		}
	}

	if zones, ok := data["capZones"].([]any); ok {
		for _, zd := range zones {
			z, _ := zd.(map[string]any)
			if z == nil {
				continue
			}
			m.CapZones = append(m.CapZones, CaptureZone{
				Name:    jstring(z["n"]),
				ShapeID: jint(z["i"]),
				Seconds: jfloat(z["l"]),
				Type:    CaptureType(jint(z["ty"])),
			})
		}
	}
	return m, nil
}

func bodyFromJSON(data any) Body {
	bd, _ := data.(map[string]any)
	if bd == nil {
		return Body{}
	}
	var body Body
	body.Name = jstring(bd["n"])
	body.Angle = jfloat(bd["a"])
	body.AngularVelocity = jfloat(bd["av"])
	if fx, ok := bd["fx"].([]any); ok {
		body.Fixtures = make([]int, 0, len(fx))
		for _, v := range fx {
			body.Fixtures = append(body.Fixtures, jint(v))
		}
	}
	body.Position = jvec(bd["p"])
	body.LinearVelocity = jvec(bd["lv"])
	if cf, ok := bd["cf"].(map[string]any); ok {
		body.Force = BodyForce{
			X:        jfloat(cf["x"]),
			Y:        jfloat(cf["y"]),
			Relative: jbool(cf["w"]),
			Torque:   jfloat(cf["ct"]),
		}
	}
	if fz, ok := bd["fz"].(map[string]any); ok {
		body.ForceZone = ForceZone{
			Enabled:     jbool(fz["on"]),
			Force:       Vec{jfloat(fz["x"]), jfloat(fz["y"])},
			Type:        ForceZoneType(jint(fz["t"])),
			PushPlayers: jbool(fz["d"]),
			PushBodies:  jbool(fz["p"]),
			PushArrows:  jbool(fz["a"]),
			CenterForce: jfloat(fz["cf"]),
		}
	}
	if s, ok := bd["s"].(map[string]any); ok {
		body.Shape = BodyShape{
			Type:            BodyType(jstring(s["type"])),
			Name:            jstring(s["n"]),
			FrictionPlayers: jbool(s["fricp"]),
			LinearDamping:   jfloat(s["ld"]),
			AngularDamping:  jfloat(s["ad"]),
			Density:         jfloat(s["de"]),
			Friction:        jfloat(s["fric"]),
			Restitution:     jfloat(s["re"]),
			FixedRotation:   jbool(s["fr"]),
			AntiTunnel:      jbool(s["bu"]),
			CollideGroup:    jint(s["f_c"]),
		}
		for flag, key := range map[CollideFlag]string{
			CollideA: "f_1", CollideB: "f_2", CollideC: "f_3",
			CollideD: "f_4", CollidePlayers: "f_p",
		} {
			if jbool(s[key]) {
				body.Shape.CollideMask |= flag
			}
		}
	}
	return body
}

func fixtureFromJSON(data any) Fixture {
	fd, _ := data.(map[string]any)
	if fd == nil {
		return Fixture{}
	}
	f := Fixture{
		Death:       jbool(fd["d"]),
		Color:       uint32(jint(fd["f"])),
		Name:        jstring(fd["n"]),
		NoGrapple:   jbool(fd["ng"]),
		NoPhysics:   jbool(fd["np"]),
		ShapeID:     jint(fd["sh"]),
		Density:     jfloatPtr(fd["de"]),
		Friction:    jfloatPtr(fd["fr"]),
		Restitution: jfloatPtr(fd["re"]),
	}
	if v, ok := fd["fp"]; ok && v != nil {
		b := jbool(v)
		f.FrictionPlayers = &b
	}
	if v, ok := fd["ig"]; ok && v != nil {
		b := jbool(v)
		f.InnerGrapple = &b
	}
	if v, ok := fd["sn"]; ok && v != nil {
		b := jbool(v)
		f.SN = &b
	}
	if v, ok := fd["fs"]; ok && v != nil {
		b := jbool(v)
		f.FS = &b
	}
	if v, ok := fd["zp"]; ok && v != nil {
		n := jint(v)
		f.ZP = &n
	}
	return f
}

func jointFromJSON(data any) (Joint, error) {
	jd, _ := data.(map[string]any)
	if jd == nil {
		return nil, fmt.Errorf("bonkmap: joint is not an object")
	}
	d, _ := jd["d"].(map[string]any)
	props := JointProps{
		ShapeA: jint(jd["ba"]),
		ShapeB: jint(jd["bb"]),
	}
	if d != nil {
		props.CollideConnected = jbool(d["cc"])
		props.BreakForce = jfloat(d["bf"])
		props.DrawLine = jbool(d["dl"])
	}
	switch t := jstring(jd["type"]); t {
	case "rv":
		return &RevoluteJoint{
			Pivot:       jvec(jd["aa"]),
			FromAngle:   jfloat(d["la"]),
			ToAngle:     jfloat(d["ua"]),
			TurnForce:   jfloat(d["mmt"]),
			MotorSpeed:  jfloat(d["ms"]),
			EnableLimit: jbool(d["el"]),
			EnableMotor: jbool(d["em"]),
			JointProps:  props,
		}, nil
	case "d":
		return &DistanceJoint{
			Pivot:      jvec(jd["aa"]),
			Attach:     jvec(jd["ab"]),
			Softness:   jfloat(d["fh"]),
			Damping:    jfloat(d["dr"]),
			JointProps: props,
		}, nil
	case "lpj":
		return &PistonJoint{
			Position:   Vec{jfloat(jd["pax"]), jfloat(jd["pay"])},
			Angle:      jfloat(jd["pa"]),
			Force:      jfloat(jd["pf"]),
			PL:         jfloat(jd["pl"]),
			PU:         jfloat(jd["pu"]),
			Length:     jfloat(jd["plen"]),
			Speed:      jfloat(jd["pms"]),
			JointProps: props,
		}, nil
	case "lsj":
		return &SpringJoint{
			Position:   Vec{jfloat(jd["sax"]), jfloat(jd["say"])},
			Force:      jfloat(jd["sf"]),
			Length:     jfloat(jd["slen"]),
			JointProps: props,
		}, nil
	case "g":
		return &GearJoint{
			Name:   jstring(jd["n"]),
			JointA: jint(jd["ja"]),
			JointB: jint(jd["jb"]),
			Ratio:  jfloat(jd["r"]),
		}, nil
	default:
		return nil, fmt.Errorf("bonkmap: unknown joint type %q", t)
	}
}

func shapeFromJSON(data any) (Shape, error) {
	sd, _ := data.(map[string]any)
	if sd == nil {
		return nil, fmt.Errorf("bonkmap: shape is not an object")
	}
	pos := jvec(sd["c"])
	switch t := jstring(sd["type"]); t {
	case "bx":
		return BoxShape{
			Width:    jfloat(sd["w"]),
			Height:   jfloat(sd["h"]),
			Angle:    jfloat(sd["a"]),
			Shrink:   jbool(sd["sk"]),
			Position: pos,
		}, nil
	case "ci":
		return CircleShape{
			Radius:   jfloat(sd["r"]),
			Shrink:   jbool(sd["sk"]),
			Position: pos,
		}, nil
	case "po":
		s := PolygonShape{
			Angle:    jfloat(sd["a"]),
			Scale:    jfloat(sd["s"]),
			Position: pos,
		}
		if verts, ok := sd["v"].([]any); ok {
			for _, v := range verts {
				s.Vertices = append(s.Vertices, jvec(v))
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("bonkmap: unknown shape type %q", t)
	}
}

// Coercions for values produced by the PSON and JSON decoders.

func jfloat(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func jfloatPtr(v any) *float64 {
	if v == nil {
		return nil
	}
	f := jfloat(v)
	return &f
}

func jint(v any) int {
	switch v := v.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case float32:
		return int(v)
	}
	return 0
}

func jbool(v any) bool {
	b, _ := v.(bool)
	return b
}

func jstring(v any) string {
	s, _ := v.(string)
	return s
}

func floatPtrJSON(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolPtrJSON(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}

func jvec(v any) Vec {
	if l, ok := v.([]any); ok && len(l) == 2 {
		return Vec{jfloat(l[0]), jfloat(l[1])}
	}
	return Vec{}
}

func vecJSON(v Vec) []any { return []any{v.X, v.Y} }

func intsToAny(in []int) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	return out
}

func stringsToAny(in []string) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	return out
}
