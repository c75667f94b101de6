// Package model holds the compiled form of a DragonBones document: the
// armature records the compiler produces and the packed binary arrays the
// runtime indexes into. Everything here is owned by one DragonBonesData and
// shares its lifetime.
package model

import "github.com/BlizzedRu/dragonbones/geom"

// DragonBonesData is the root of a compiled document. The seven typed array
// fields are views into Binary; they are append-only while the compiler runs
// and must be treated as immutable afterwards.
type DragonBonesData struct {
	Name      string
	Version   string
	FrameRate int

	// Stage is the armature a player should instantiate by default.
	Stage *ArmatureData

	ArmatureNames []string
	UserData      *UserData

	// FrameIndices maps animation ticks to keyframe indices, one run of
	// frameCount+1 entries per multi-keyframe timeline.
	FrameIndices []int

	Binary          []byte
	IntArray        []int16
	FloatArray      []float32
	FrameIntArray   []int16
	FrameFloatArray []float32
	FrameArray      []int16
	TimelineArray   []uint16
	ColorArray      []int16

	armatures map[string]*ArmatureData
}

func (d *DragonBonesData) Clear() {
	*d = DragonBonesData{}
}

func (d *DragonBonesData) AddArmature(value *ArmatureData) {
	if d.armatures == nil {
		d.armatures = make(map[string]*ArmatureData)
	}
	value.Parent = d
	d.armatures[value.Name] = value
	d.ArmatureNames = append(d.ArmatureNames, value.Name)
}

func (d *DragonBonesData) Armature(name string) *ArmatureData {
	return d.armatures[name]
}

// CanvasData describes the design-time canvas of an armature.
type CanvasData struct {
	HasBackground bool
	Color         int
	X, Y          float64
	Width, Height float64
}

func (c *CanvasData) Clear() {
	*c = CanvasData{}
}

// UserData carries custom integers, floats and strings attached to actions
// and events.
type UserData struct {
	Ints    []int
	Floats  []float64
	Strings []string
}

func (u *UserData) Clear() {
	u.Ints = u.Ints[:0]
	u.Floats = u.Floats[:0]
	u.Strings = u.Strings[:0]
}

func (u *UserData) Int(index int) int {
	if index < 0 || index >= len(u.Ints) {
		return 0
	}
	return u.Ints[index]
}

func (u *UserData) Float(index int) float64 {
	if index < 0 || index >= len(u.Floats) {
		return 0
	}
	return u.Floats[index]
}

func (u *UserData) String(index int) string {
	if index < 0 || index >= len(u.Strings) {
		return ""
	}
	return u.Strings[index]
}

// ActionData is a play/frame/sound event, optionally targeted at a bone or
// slot and optionally carrying a UserData payload.
type ActionData struct {
	Type ActionType
	Name string
	Bone *BoneData
	Slot *SlotData
	Data *UserData
}

func (a *ActionData) Clear() {
	*a = ActionData{}
}

// TextureAtlasData indexes the sub-textures of one atlas page.
type TextureAtlasData struct {
	AutoSearch    bool
	Width, Height float64
	Scale         float64
	Name          string
	ImagePath     string

	textures map[string]*TextureData
}

func (t *TextureAtlasData) Clear() {
	*t = TextureAtlasData{Scale: 1}
}

func (t *TextureAtlasData) AddTexture(value *TextureData) {
	if t.textures == nil {
		t.textures = make(map[string]*TextureData)
	}
	value.Parent = t
	t.textures[value.Name] = value
}

func (t *TextureAtlasData) Texture(name string) *TextureData {
	return t.textures[name]
}

func (t *TextureAtlasData) TextureCount() int {
	return len(t.textures)
}

// TextureData is one sub-texture region. Frame is non-nil when the region
// was trimmed out of a larger logical frame.
type TextureData struct {
	Rotated bool
	Name    string
	Region  geom.Rectangle
	Frame   *geom.Rectangle
	Parent  *TextureAtlasData
}

func (t *TextureData) Clear() {
	*t = TextureData{}
}
