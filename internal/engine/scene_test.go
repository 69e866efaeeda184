package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs lifecycle calls into a shared journal.
type recorder struct {
	BaseComponent
	name    string
	journal *[]string
}

func (r *recorder) Start()            { *r.journal = append(*r.journal, r.name+".start") }
func (r *recorder) Update(dt float32) { *r.journal = append(*r.journal, r.name+".update") }
func (r *recorder) Draw()             { *r.journal = append(*r.journal, r.name+".draw") }
func (r *recorder) Unload()           { *r.journal = append(*r.journal, r.name+".unload") }

func newRecorded(scene *Scene, journal *[]string, names ...string) []*GameObject {
	objs := make([]*GameObject, len(names))
	for i, name := range names {
		objs[i] = NewGameObject(name)
		objs[i].AddComponent(&recorder{name: name, journal: journal})
		scene.AddGameObject(objs[i])
	}
	return objs
}

func TestSceneAddGameObject(t *testing.T) {
	scene := NewScene("track")
	obj := NewGameObject("Chassis")

	scene.AddGameObject(obj)

	require.Len(t, scene.GameObjects, 1)
	assert.Same(t, obj, scene.GameObjects[0])
	assert.Same(t, scene, obj.Scene)
}

func TestSceneFindByName(t *testing.T) {
	scene := NewScene("track")
	var journal []string
	objs := newRecorded(scene, &journal, "Ground", "Chassis", "Chassis")

	assert.Same(t, objs[1], scene.FindByName("Chassis"))
	assert.Nil(t, scene.FindByName("Trailer"))
}

func TestSceneFindByTagKeepsOrder(t *testing.T) {
	scene := NewScene("track")
	var journal []string
	objs := newRecorded(scene, &journal, "Wheel_0", "Chassis", "Wheel_1", "Wheel_2")
	for _, i := range []int{0, 2, 3} {
		objs[i].Tags = []string{"wheel"}
	}

	assert.Equal(t, []*GameObject{objs[0], objs[2], objs[3]}, scene.FindByTag("wheel"))
	assert.Empty(t, scene.FindByTag("obstacle"))
}

func TestSceneStartRunsOnceInOrder(t *testing.T) {
	scene := NewScene("track")
	var journal []string
	newRecorded(scene, &journal, "a", "b")

	scene.Start()
	scene.Start()

	assert.Equal(t, []string{"a.start", "b.start"}, journal)
}

func TestSceneUpdateSkipsInactive(t *testing.T) {
	scene := NewScene("track")
	var journal []string
	objs := newRecorded(scene, &journal, "a", "b", "c")
	objs[1].Active = false

	scene.Update(1.0 / 60)

	assert.Equal(t, []string{"a.update", "c.update"}, journal)
}

func TestSceneDrawSkipsInactive(t *testing.T) {
	scene := NewScene("track")
	var journal []string
	objs := newRecorded(scene, &journal, "a", "b")
	objs[0].Active = false
	// Components without Draw are ignored.
	objs[1].AddComponent(&BaseComponent{})

	scene.Draw()

	assert.Equal(t, []string{"b.draw"}, journal)
}

func TestSceneUnloadIncludesInactive(t *testing.T) {
	scene := NewScene("track")
	var journal []string
	objs := newRecorded(scene, &journal, "a", "b")
	objs[1].Active = false

	scene.Unload()

	assert.Equal(t, []string{"a.unload", "b.unload"}, journal)
}
