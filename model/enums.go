package model

import "strings"

// ArmatureType distinguishes plain skeletons from movie clips and the stage
// container.
type ArmatureType int

const (
	ArmatureArmature  ArmatureType = 0
	ArmatureMovieClip ArmatureType = 1
	ArmatureStage     ArmatureType = 2
)

func ParseArmatureType(value string) ArmatureType {
	switch strings.ToLower(value) {
	case "stage":
		return ArmatureStage
	case "armature":
		return ArmatureArmature
	case "movieclip":
		return ArmatureMovieClip
	default:
		return ArmatureArmature
	}
}

type BoneType int

const (
	BoneBone    BoneType = 0
	BoneSurface BoneType = 1
)

func ParseBoneType(value string) BoneType {
	if strings.ToLower(value) == "surface" {
		return BoneSurface
	}
	return BoneBone
}

type DisplayType int

const (
	DisplayImage       DisplayType = 0
	DisplayArmature    DisplayType = 1
	DisplayMesh        DisplayType = 2
	DisplayBoundingBox DisplayType = 3
	DisplayPath        DisplayType = 4
)

func ParseDisplayType(value string) DisplayType {
	switch strings.ToLower(value) {
	case "image":
		return DisplayImage
	case "armature":
		return DisplayArmature
	case "mesh":
		return DisplayMesh
	case "boundingbox":
		return DisplayBoundingBox
	case "path":
		return DisplayPath
	default:
		return DisplayImage
	}
}

type BoundingBoxType int

const (
	BoundingBoxRectangle BoundingBoxType = 0
	BoundingBoxEllipse   BoundingBoxType = 1
	BoundingBoxPolygon   BoundingBoxType = 2
)

func ParseBoundingBoxType(value string) BoundingBoxType {
	switch strings.ToLower(value) {
	case "rectangle":
		return BoundingBoxRectangle
	case "ellipse":
		return BoundingBoxEllipse
	case "polygon":
		return BoundingBoxPolygon
	default:
		return BoundingBoxRectangle
	}
}

type ActionType int

const (
	ActionPlay  ActionType = 0
	ActionFrame ActionType = 10
	ActionSound ActionType = 11
)

func ParseActionType(value string) ActionType {
	switch strings.ToLower(value) {
	case "play":
		return ActionPlay
	case "frame":
		return ActionFrame
	case "sound":
		return ActionSound
	default:
		return ActionPlay
	}
}

type BlendMode int

const (
	BlendNormal     BlendMode = 0
	BlendAdd        BlendMode = 1
	BlendAlpha      BlendMode = 2
	BlendDarken     BlendMode = 3
	BlendDifference BlendMode = 4
	BlendErase      BlendMode = 5
	BlendHardLight  BlendMode = 6
	BlendInvert     BlendMode = 7
	BlendLayer      BlendMode = 8
	BlendLighten    BlendMode = 9
	BlendMultiply   BlendMode = 10
	BlendOverlay    BlendMode = 11
	BlendScreen     BlendMode = 12
	BlendSubtract   BlendMode = 13
)

func ParseBlendMode(value string) BlendMode {
	switch strings.ToLower(value) {
	case "normal":
		return BlendNormal
	case "add":
		return BlendAdd
	case "alpha":
		return BlendAlpha
	case "darken":
		return BlendDarken
	case "difference":
		return BlendDifference
	case "erase":
		return BlendErase
	case "hardlight":
		return BlendHardLight
	case "invert":
		return BlendInvert
	case "layer":
		return BlendLayer
	case "lighten":
		return BlendLighten
	case "multiply":
		return BlendMultiply
	case "overlay":
		return BlendOverlay
	case "screen":
		return BlendScreen
	case "subtract":
		return BlendSubtract
	default:
		return BlendNormal
	}
}

// PositionMode, SpacingMode and RotateMode configure path constraints.
type PositionMode int

const (
	PositionFixed   PositionMode = 0
	PositionPercent PositionMode = 1
)

func ParsePositionMode(value string) PositionMode {
	if strings.ToLower(value) == "fixed" {
		return PositionFixed
	}
	return PositionPercent
}

type SpacingMode int

const (
	SpacingLength  SpacingMode = 0
	SpacingFixed   SpacingMode = 1
	SpacingPercent SpacingMode = 2
)

func ParseSpacingMode(value string) SpacingMode {
	switch strings.ToLower(value) {
	case "length":
		return SpacingLength
	case "fixed":
		return SpacingFixed
	case "percent":
		return SpacingPercent
	default:
		return SpacingLength
	}
}

type RotateMode int

const (
	RotateTangent    RotateMode = 0
	RotateChain      RotateMode = 1
	RotateChainScale RotateMode = 2
)

func ParseRotateMode(value string) RotateMode {
	switch strings.ToLower(value) {
	case "tangent":
		return RotateTangent
	case "chain":
		return RotateChain
	case "chainscale":
		return RotateChainScale
	default:
		return RotateTangent
	}
}

// TweenType is the per-frame interpolation selector stored in the frame
// array.
type TweenType int

const (
	TweenNone      TweenType = 0
	TweenLine      TweenType = 1
	TweenCurve     TweenType = 2
	TweenQuadIn    TweenType = 3
	TweenQuadOut   TweenType = 4
	TweenQuadInOut TweenType = 5
)

// TimelineType identifies what property a compiled timeline animates.
type TimelineType int

const (
	TimelineAction TimelineType = 0
	TimelineZOrder TimelineType = 1

	TimelineBoneAll       TimelineType = 10
	TimelineBoneTranslate TimelineType = 11
	TimelineBoneRotate    TimelineType = 12
	TimelineBoneScale     TimelineType = 13

	TimelineSlotDisplay TimelineType = 20
	TimelineSlotColor   TimelineType = 21
	TimelineSlotDeform  TimelineType = 22
	TimelineSlotZIndex  TimelineType = 23
	TimelineSlotAlpha   TimelineType = 24

	TimelineIKConstraint TimelineType = 30

	TimelineAnimationProgress  TimelineType = 40
	TimelineAnimationWeight    TimelineType = 41
	TimelineAnimationParameter TimelineType = 42

	TimelineSurface   TimelineType = 50
	TimelineBoneAlpha TimelineType = 60
)

// AnimationBlendType marks an animation as a plain clip or a member of a 1D
// blend space.
type AnimationBlendType int

const (
	BlendTypeNone AnimationBlendType = 0
	BlendType1D   AnimationBlendType = 1
)

func ParseAnimationBlendType(value string) AnimationBlendType {
	if strings.ToLower(value) == "1d" {
		return BlendType1D
	}
	return BlendTypeNone
}
