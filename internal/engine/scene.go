package engine

type Scene struct {
	Name        string
	GameObjects []*GameObject
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
	}
}

// AddGameObject appends g to the scene. Children are not added with their
// parent; each object that should draw must be added itself.
func (s *Scene) AddGameObject(g *GameObject) {
	g.Scene = s
	s.GameObjects = append(s.GameObjects, g)
}

func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// FindByTag returns tagged objects in insertion order.
func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

func (s *Scene) Start() {
	for _, g := range s.GameObjects {
		g.Start()
	}
}

func (s *Scene) Update(deltaTime float32) {
	for _, g := range s.GameObjects {
		g.Update(deltaTime)
	}
}

// Draw calls Draw on every active object's Drawable components.
func (s *Scene) Draw() {
	for _, g := range s.GameObjects {
		if !g.Active {
			continue
		}
		for _, c := range g.components {
			if d, ok := c.(Drawable); ok {
				d.Draw()
			}
		}
	}
}

// Unload releases resources held by Unloadable components.
func (s *Scene) Unload() {
	for _, g := range s.GameObjects {
		for _, c := range g.components {
			if u, ok := c.(Unloadable); ok {
				u.Unload()
			}
		}
	}
}
