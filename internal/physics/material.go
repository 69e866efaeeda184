package physics

// Material is a named tag used to look up contact parameters between bodies.
type Material struct {
	Name string
}

func NewMaterial(name string) *Material {
	return &Material{Name: name}
}

// Default contact equation stiffness, matches a rigid contact.
const DefaultContactStiffness float32 = 1e7

// ContactMaterial holds the friction and restitution used when bodies with
// materials A and B touch. The pair is unordered.
type ContactMaterial struct {
	A, B                     *Material
	Friction                 float32
	Restitution              float32
	ContactEquationStiffness float32
}

func NewContactMaterial(a, b *Material, friction, restitution float32) *ContactMaterial {
	return &ContactMaterial{
		A:                        a,
		B:                        b,
		Friction:                 friction,
		Restitution:              restitution,
		ContactEquationStiffness: DefaultContactStiffness,
	}
}

type materialPair struct {
	a, b string
}

func pairKey(a, b *Material) materialPair {
	na, nb := materialName(a), materialName(b)
	if na > nb {
		na, nb = nb, na
	}
	return materialPair{a: na, b: nb}
}

func materialName(m *Material) string {
	if m == nil {
		return ""
	}
	return m.Name
}
