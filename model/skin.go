package model

import "github.com/BlizzedRu/dragonbones/geom"

// SkinData groups display lists by slot name. Lists may contain nil entries
// to keep display indices aligned with the source document.
type SkinData struct {
	Name   string
	Parent *ArmatureData
	byName map[string][]Display
}

func (s *SkinData) Clear() {
	*s = SkinData{}
}

// AddDisplay appends value, which may be nil, to the slot's display list.
func (s *SkinData) AddDisplay(slotName string, value Display) {
	if s.byName == nil {
		s.byName = make(map[string][]Display)
	}
	if value != nil {
		value.Base().Parent = s
	}
	s.byName[slotName] = append(s.byName[slotName], value)
}

func (s *SkinData) Displays(slotName string) []Display {
	return s.byName[slotName]
}

func (s *SkinData) SlotNames() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	return names
}

// Display finds a display by name inside one slot's list. An empty slot name
// searches every list.
func (s *SkinData) Display(slotName, displayName string) Display {
	if slotName != "" {
		for _, display := range s.byName[slotName] {
			if display != nil && display.Base().Name == displayName {
				return display
			}
		}
		return nil
	}
	for _, displays := range s.byName {
		for _, display := range displays {
			if display != nil && display.Base().Name == displayName {
				return display
			}
		}
	}
	return nil
}

// Display is one attachment of a slot: an image, a nested armature, a
// deformable mesh, a hit-test shape or a path.
type Display interface {
	Base() *DisplayBase
}

type DisplayBase struct {
	Type      DisplayType
	Name      string
	Path      string
	Transform geom.Transform
	Parent    *SkinData
}

func (b *DisplayBase) Base() *DisplayBase { return b }

type ImageDisplay struct {
	DisplayBase
	Pivot   geom.Point
	Texture *TextureData
}

func (d *ImageDisplay) Clear() {
	*d = ImageDisplay{DisplayBase: DisplayBase{Type: DisplayImage, Transform: geom.IdentityTransform}}
}

type ArmatureDisplay struct {
	DisplayBase
	InheritAnimation bool
	Actions          []*ActionData
	Armature         *ArmatureData
}

func (d *ArmatureDisplay) Clear() {
	*d = ArmatureDisplay{DisplayBase: DisplayBase{Type: DisplayArmature, Transform: geom.IdentityTransform}}
}

func (d *ArmatureDisplay) AddAction(value *ActionData) {
	d.Actions = append(d.Actions, value)
}

type MeshDisplay struct {
	DisplayBase
	Geometry GeometryData
}

func (d *MeshDisplay) Clear() {
	*d = MeshDisplay{DisplayBase: DisplayBase{Type: DisplayMesh, Transform: geom.IdentityTransform}}
}

type BoundingBoxDisplay struct {
	DisplayBase
	Box BoundingBox
}

func (d *BoundingBoxDisplay) Clear() {
	*d = BoundingBoxDisplay{DisplayBase: DisplayBase{Type: DisplayBoundingBox, Transform: geom.IdentityTransform}}
}

type PathDisplay struct {
	DisplayBase
	Closed        bool
	ConstantSpeed bool
	CurveLengths  []float64
	Geometry      GeometryData
}

func (d *PathDisplay) Clear() {
	*d = PathDisplay{DisplayBase: DisplayBase{Type: DisplayPath, Transform: geom.IdentityTransform}}
}

// GeometryData locates a display's compiled vertex data inside the shared
// int array. A shared geometry aliases another display's record and does not
// own its weight.
type GeometryData struct {
	IsShared      bool
	InheritDeform bool
	Offset        int
	Data          *DragonBonesData
	Weight        *WeightData
}

func (g *GeometryData) Clear() {
	*g = GeometryData{}
}

// ShareFrom aliases value's compiled record.
func (g *GeometryData) ShareFrom(value *GeometryData) {
	g.IsShared = true
	g.Offset = value.Offset
	g.Weight = value.Weight
}

func (g *GeometryData) VertexCount() int {
	return int(g.Data.IntArray[g.Offset+GeometryVertexCount])
}

func (g *GeometryData) TriangleCount() int {
	return int(g.Data.IntArray[g.Offset+GeometryTriangleCount])
}

// WeightData locates a geometry's bone-weight table and lists the bones it
// references.
type WeightData struct {
	Count  int
	Offset int
	Bones  []*BoneData
}

func (w *WeightData) Clear() {
	*w = WeightData{}
}

func (w *WeightData) AddBone(value *BoneData) {
	w.Bones = append(w.Bones, value)
}
