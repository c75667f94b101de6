package model

// AnimationData is one named clip. It never owns frame payloads; timelines
// point into the document's shared arrays, with the three offsets below
// making every reference animation-relative so a clip's data is relocatable
// as a unit.
type AnimationData struct {
	FrameIntOffset   int
	FrameFloatOffset int
	FrameOffset      int

	BlendType      AnimationBlendType
	FrameCount     int
	PlayTimes      int
	Duration       float64
	Scale          float64
	FadeInTime     float64
	CacheFrameRate int
	Name           string

	ActionTimeline *TimelineData
	ZOrderTimeline *TimelineData
	Parent         *ArmatureData

	CachedFrames []bool

	boneTimelines       map[string][]*TimelineData
	slotTimelines       map[string][]*TimelineData
	constraintTimelines map[string][]*TimelineData
	animationTimelines  map[string][]*AnimationTimelineData

	boneCachedFrameIndices map[string][]int
	slotCachedFrameIndices map[string][]int
}

func (a *AnimationData) Clear() {
	*a = AnimationData{
		PlayTimes: 1,
		Scale:     1,
	}
}

func addTimeline[T comparable](m map[string][]T, name string, value T) map[string][]T {
	if m == nil {
		m = make(map[string][]T)
	}
	for _, t := range m[name] {
		if t == value {
			return m
		}
	}
	m[name] = append(m[name], value)
	return m
}

func (a *AnimationData) AddBoneTimeline(name string, value *TimelineData) {
	a.boneTimelines = addTimeline(a.boneTimelines, name, value)
}

func (a *AnimationData) AddSlotTimeline(name string, value *TimelineData) {
	a.slotTimelines = addTimeline(a.slotTimelines, name, value)
}

func (a *AnimationData) AddConstraintTimeline(name string, value *TimelineData) {
	a.constraintTimelines = addTimeline(a.constraintTimelines, name, value)
}

// AddAnimationTimeline registers a progress, weight or parameter timeline.
// Blend-space members carry their parameter coordinates on the record.
func (a *AnimationData) AddAnimationTimeline(name string, value *AnimationTimelineData) {
	a.animationTimelines = addTimeline(a.animationTimelines, name, value)
}

func (a *AnimationData) BoneTimelines(name string) []*TimelineData {
	return a.boneTimelines[name]
}

func (a *AnimationData) SlotTimelines(name string) []*TimelineData {
	return a.slotTimelines[name]
}

func (a *AnimationData) ConstraintTimelines(name string) []*TimelineData {
	return a.constraintTimelines[name]
}

func (a *AnimationData) AnimationTimelines(name string) []*AnimationTimelineData {
	return a.animationTimelines[name]
}

// CacheFrames sizes the cached-pose bookkeeping for playback at the given
// cache frame rate. A second call is a no-op.
func (a *AnimationData) CacheFrames(frameRate int) {
	if a.CacheFrameRate > 0 {
		return
	}
	a.CacheFrameRate = max(int(float64(frameRate)*a.Scale+0.5), 1)
	cacheFrameCount := int(float64(a.CacheFrameRate)*a.Duration) + 1
	a.CachedFrames = make([]bool, cacheFrameCount)

	a.boneCachedFrameIndices = make(map[string][]int)
	for _, bone := range a.Parent.SortedBones {
		indices := make([]int, cacheFrameCount)
		for i := range indices {
			indices[i] = -1
		}
		a.boneCachedFrameIndices[bone.Name] = indices
	}
	a.slotCachedFrameIndices = make(map[string][]int)
	for _, slot := range a.Parent.SortedSlots {
		indices := make([]int, cacheFrameCount)
		for i := range indices {
			indices[i] = -1
		}
		a.slotCachedFrameIndices[slot.Name] = indices
	}
}

func (a *AnimationData) BoneCachedFrameIndices(name string) []int {
	return a.boneCachedFrameIndices[name]
}

func (a *AnimationData) SlotCachedFrameIndices(name string) []int {
	return a.slotCachedFrameIndices[name]
}

// TimelineData locates one compiled timeline: its record in the timeline
// array and, for multi-keyframe timelines, its run in the frame-indices
// table. FrameIndicesOffset is -1 for single-keyframe timelines.
type TimelineData struct {
	Type               TimelineType
	Offset             int
	FrameIndicesOffset int
}

func (t *TimelineData) Clear() {
	*t = TimelineData{FrameIndicesOffset: -1}
}

// AnimationTimelineData positions a blend-space member timeline at its
// parameter coordinates.
type AnimationTimelineData struct {
	TimelineData
	X, Y float64
}

func (t *AnimationTimelineData) Clear() {
	*t = AnimationTimelineData{TimelineData: TimelineData{FrameIndicesOffset: -1}}
}
