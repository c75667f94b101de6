package model

import "github.com/BlizzedRu/dragonbones/geom"

// ArmatureData is one compiled skeleton: bones, slots, skins, constraints,
// animations and actions, all owned by the armature.
type ArmatureData struct {
	Type           ArmatureType
	FrameRate      int
	CacheFrameRate int
	Scale          float64
	Name           string
	AABB           geom.Rectangle

	AnimationNames []string
	SortedBones    []*BoneData
	SortedSlots    []*SlotData
	DefaultActions []*ActionData
	Actions        []*ActionData

	DefaultSkin      *SkinData
	DefaultAnimation *AnimationData
	Canvas           *CanvasData
	UserData         *UserData
	Parent           *DragonBonesData

	bones       map[string]*BoneData
	slots       map[string]*SlotData
	constraints map[string]Constraint
	skins       map[string]*SkinData
	animations  map[string]*AnimationData
}

func (a *ArmatureData) Clear() {
	*a = ArmatureData{}
}

func (a *ArmatureData) AddBone(value *BoneData) {
	if a.bones == nil {
		a.bones = make(map[string]*BoneData)
	}
	value.Parent = a
	a.bones[value.Name] = value
	a.SortedBones = append(a.SortedBones, value)
}

func (a *ArmatureData) AddSlot(value *SlotData) {
	if a.slots == nil {
		a.slots = make(map[string]*SlotData)
	}
	value.Parent = a
	a.slots[value.Name] = value
	a.SortedSlots = append(a.SortedSlots, value)
}

func (a *ArmatureData) AddConstraint(value Constraint) {
	if a.constraints == nil {
		a.constraints = make(map[string]Constraint)
	}
	a.constraints[value.Base().Name] = value
}

// AddSkin registers a skin. The first skin added becomes the default.
func (a *ArmatureData) AddSkin(value *SkinData) {
	if a.skins == nil {
		a.skins = make(map[string]*SkinData)
	}
	value.Parent = a
	a.skins[value.Name] = value
	if a.DefaultSkin == nil {
		a.DefaultSkin = value
	}
}

// AddAnimation registers an animation. The first animation added becomes the
// default.
func (a *ArmatureData) AddAnimation(value *AnimationData) {
	if a.animations == nil {
		a.animations = make(map[string]*AnimationData)
	}
	value.Parent = a
	a.animations[value.Name] = value
	a.AnimationNames = append(a.AnimationNames, value.Name)
	if a.DefaultAnimation == nil {
		a.DefaultAnimation = value
	}
}

// AddAction appends to the default-action or plain action list.
func (a *ArmatureData) AddAction(value *ActionData, isDefault bool) {
	if isDefault {
		a.DefaultActions = append(a.DefaultActions, value)
	} else {
		a.Actions = append(a.Actions, value)
	}
}

func (a *ArmatureData) Bone(name string) *BoneData { return a.bones[name] }

func (a *ArmatureData) Slot(name string) *SlotData { return a.slots[name] }

func (a *ArmatureData) Constraint(name string) Constraint { return a.constraints[name] }

func (a *ArmatureData) Skin(name string) *SkinData { return a.skins[name] }

func (a *ArmatureData) Animation(name string) *AnimationData { return a.animations[name] }

func (a *ArmatureData) Skins() map[string]*SkinData { return a.skins }

func (a *ArmatureData) Animations() map[string]*AnimationData { return a.animations }

func (a *ArmatureData) Constraints() map[string]Constraint { return a.constraints }

// Mesh finds a mesh display by skin, slot and display name, falling back to
// the default skin. An empty slot name searches every slot of the skin.
func (a *ArmatureData) Mesh(skinName, slotName, meshName string) *MeshDisplay {
	skin := a.skins[skinName]
	if skin == nil {
		skin = a.DefaultSkin
	}
	if skin == nil {
		return nil
	}
	display := skin.Display(slotName, meshName)
	if mesh, ok := display.(*MeshDisplay); ok {
		return mesh
	}
	return nil
}

// SortBones settles SortedBones into topological order: every bone's parent
// precedes it. Repeated passes place each bone once its parent is placed;
// bones caught in a parent cycle keep their document order.
func (a *ArmatureData) SortBones() {
	total := len(a.SortedBones)
	if total <= 0 {
		return
	}
	helper := make([]*BoneData, total)
	copy(helper, a.SortedBones)
	placed := make(map[*BoneData]bool, total)
	a.SortedBones = a.SortedBones[:0]

	for len(a.SortedBones) < total {
		progressed := false
		for _, bone := range helper {
			if placed[bone] {
				continue
			}
			if bone.ParentBone != nil && !placed[bone.ParentBone] {
				continue
			}
			placed[bone] = true
			a.SortedBones = append(a.SortedBones, bone)
			progressed = true
		}
		if progressed {
			continue
		}
		// Parent cycle; place the remainder as found.
		for _, bone := range helper {
			if !placed[bone] {
				placed[bone] = true
				a.SortedBones = append(a.SortedBones, bone)
			}
		}
	}
}

// BoneIndex returns the bone's position in the sorted order, or -1.
func (a *ArmatureData) BoneIndex(bone *BoneData) int {
	for i, b := range a.SortedBones {
		if b == bone {
			return i
		}
	}
	return -1
}

// CacheFrames locks in a cache frame rate and sizes the per-animation cache
// bookkeeping. Calling it again is a no-op.
func (a *ArmatureData) CacheFrames(frameRate int) {
	if a.CacheFrameRate > 0 {
		return
	}
	a.CacheFrameRate = frameRate
	for _, animation := range a.animations {
		animation.CacheFrames(a.CacheFrameRate)
	}
}

// BoneData is one joint of the skeleton. Surface is non-nil for free-form
// deformation surfaces.
type BoneData struct {
	Type               BoneType
	InheritTranslation bool
	InheritRotation    bool
	InheritScale       bool
	InheritReflection  bool
	Length             float64
	Alpha              float64
	Name               string
	Transform          geom.Transform
	UserData           *UserData
	ParentBone         *BoneData
	Parent             *ArmatureData

	Surface *SurfaceInfo
}

func (b *BoneData) Clear() {
	*b = BoneData{
		InheritTranslation: true,
		InheritRotation:    true,
		InheritScale:       true,
		InheritReflection:  true,
		Alpha:              1,
		Transform:          geom.IdentityTransform,
	}
}

// SurfaceInfo is the extra payload of a surface bone: its control-point grid
// and the geometry record compiled for it.
type SurfaceInfo struct {
	SegmentX int
	SegmentY int
	Geometry GeometryData
}

// SlotData is an attachment point on a bone. ZOrder is the document order,
// ZIndex an explicit layering override.
type SlotData struct {
	BlendMode    BlendMode
	DisplayIndex int
	ZOrder       int
	ZIndex       int
	Alpha        float64
	Name         string
	Color        geom.ColorTransform
	UserData     *UserData
	ParentBone   *BoneData
	Parent       *ArmatureData
}

func (s *SlotData) Clear() {
	*s = SlotData{
		Alpha: 1,
		Color: geom.IdentityColor,
	}
}

// Constraint is an IK or path constraint. Base exposes the fields shared by
// every variant.
type Constraint interface {
	Base() *ConstraintBase
}

type ConstraintBase struct {
	Order int
	Name  string
	// Target is the bone (IK) or the path slot's bone (path) the chain
	// reaches for.
	Target *BoneData
	Root   *BoneData
	Bone   *BoneData
}

func (c *ConstraintBase) Base() *ConstraintBase { return c }

type IKConstraintData struct {
	ConstraintBase
	ScaleEnabled bool
	BendPositive bool
	Weight       float64
}

func (c *IKConstraintData) Clear() {
	*c = IKConstraintData{
		BendPositive: true,
		Weight:       1,
	}
}

type PathConstraintData struct {
	ConstraintBase
	PathSlot    *SlotData
	PathDisplay *PathDisplay
	Bones       []*BoneData

	PositionMode PositionMode
	SpacingMode  SpacingMode
	RotateMode   RotateMode

	Position     float64
	Spacing      float64
	RotateOffset float64
	RotateMix    float64
	TranslateMix float64
}

func (c *PathConstraintData) Clear() {
	*c = PathConstraintData{
		RotateMix:    1,
		TranslateMix: 1,
	}
}

func (c *PathConstraintData) AddBone(value *BoneData) {
	c.Bones = append(c.Bones, value)
}
