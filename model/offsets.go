package model

// Element offsets into the packed arrays. All values index elements, not
// bytes, relative to the start of the record they describe.

// Weight table header in the int array.
const (
	WeightBoneCount   = 0
	WeightFloatOffset = 1
	WeightBoneIndices = 2
)

// Geometry header in the int array.
const (
	GeometryVertexCount   = 0
	GeometryTriangleCount = 1
	GeometryFloatOffset   = 2
	GeometryWeightOffset  = 3
	GeometryVertexIndices = 4
)

// Timeline record in the timeline array.
const (
	TimelineScale            = 0
	TimelineOffset           = 1
	TimelineKeyFrameCount    = 2
	TimelineFrameValueCount  = 3
	TimelineFrameValueOffset = 4
	TimelineFrameOffset      = 5
)

// Frame record in the frame array.
const (
	FramePosition                      = 0
	FrameTweenType                     = 1
	FrameTweenEasingOrCurveSampleCount = 2
	FrameCurveSamples                  = 3
)

// Deform frame header in the frame-int array.
const (
	DeformVertexOffset = 0
	DeformCount        = 1
	DeformValueCount   = 2
	DeformValueOffset  = 3
	DeformFloatOffset  = 4
)
