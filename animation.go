package dragonbones

import (
	"github.com/BlizzedRu/dragonbones/geom"
	"github.com/BlizzedRu/dragonbones/model"
	"github.com/BlizzedRu/dragonbones/pool"
)

// frameValueType selects which array a timeline's per-frame values land in.
type frameValueType int

const (
	frameValueStep frameValueType = iota
	frameValueInt
	frameValueFloat
)

// frameParser appends one frame record and returns its element offset in
// the frame array. raw is a document object except on the merged action
// timeline, where it is an *actionFrame.
type frameParser func(raw any, frameStart, frameCount int) int

// parseAnimation compiles one clip. Timelines grouped under the classic
// bone/slot/ffd/ik keys come first, then the merged action timeline, then
// the flat "timeline" list newer exporters write.
func (c *Compiler) parseAnimation(raw map[string]any) *model.AnimationData {
	animation := pool.Borrow[model.AnimationData](c.pool)
	animation.BlendType = model.ParseAnimationBlendType(getString(raw, "blendType", ""))
	animation.FrameCount = getInt(raw, "duration", 0)
	animation.PlayTimes = getInt(raw, "playTimes", 1)
	animation.Duration = float64(animation.FrameCount) / float64(c.armature.FrameRate)
	animation.FadeInTime = getFloat(raw, "fadeInTime", 0)
	animation.Scale = getFloat(raw, "scale", 1)
	animation.Name = getString(raw, "name", defaultName)
	if animation.Name == "" {
		animation.Name = defaultName
	}

	// Everything a timeline stores below here is relative to these three.
	animation.FrameIntOffset = len(c.frameIntArray)
	animation.FrameFloatOffset = len(c.frameFloatArray)
	animation.FrameOffset = len(c.frameArray)
	c.animation = animation

	if _, ok := raw["frame"]; ok {
		frameStart := 0
		for _, rawFrame := range c.objectsIn(raw, "frame") {
			c.parseActionDataInFrame(rawFrame, frameStart, nil, nil)
			frameStart += getInt(rawFrame, "duration", 1)
		}
	}

	if value, ok := raw["zOrder"]; ok {
		if rawZOrder, ok := value.(map[string]any); ok {
			animation.ZOrderTimeline = c.parseTimeline(rawZOrder, nil, "frame", model.TimelineZOrder, frameValueStep, 0, c.parseZOrderFrame, nil)
		} else {
			c.failShape("zOrder")
		}
	}

	for _, rawTimeline := range c.objectsIn(raw, "bone") {
		c.parseBoneTimeline(rawTimeline)
	}

	for _, rawTimeline := range c.objectsIn(raw, "slot") {
		c.parseSlotTimeline(rawTimeline)
	}

	for _, rawTimeline := range c.objectsIn(raw, "ffd") {
		skinName := getString(rawTimeline, "skin", defaultName)
		if skinName == "" {
			skinName = defaultName
		}
		slotName := getString(rawTimeline, "slot", "")
		displayName := getString(rawTimeline, "name", "")

		c.slot = c.armature.Slot(slotName)
		c.mesh = c.armature.Mesh(skinName, slotName, displayName)
		if c.slot == nil || c.mesh == nil {
			c.log.Warn().
				Str("armature", c.armature.Name).
				Str("slot", slotName).
				Str("display", displayName).
				Msg("deform timeline names a missing mesh")
			continue
		}

		timeline := c.parseTimeline(rawTimeline, nil, "frame", model.TimelineSlotDeform, frameValueFloat, 0, c.parseSlotDeformFrame, nil)
		if timeline != nil {
			animation.AddSlotTimeline(slotName, timeline)
		}

		c.slot = nil
		c.mesh = nil
	}

	for _, rawTimeline := range c.objectsIn(raw, "ik") {
		constraintName := getString(rawTimeline, "name", "")
		if c.armature.Constraint(constraintName) == nil {
			c.log.Warn().
				Str("armature", c.armature.Name).
				Str("constraint", constraintName).
				Msg("ik timeline names a missing constraint")
			continue
		}
		timeline := c.parseTimeline(rawTimeline, nil, "frame", model.TimelineIKConstraint, frameValueInt, 2, c.parseIKConstraintFrame, nil)
		if timeline != nil {
			animation.AddConstraintTimeline(constraintName, timeline)
		}
	}

	if len(c.actionFrames) > 0 {
		rawFrames := make([]any, len(c.actionFrames))
		for i, frame := range c.actionFrames {
			rawFrames[i] = frame
		}
		animation.ActionTimeline = c.parseTimeline(nil, rawFrames, "", model.TimelineAction, frameValueStep, 0, c.parseActionFrame, nil)
		c.actionFrames = c.actionFrames[:0]
	}

	for _, rawTimeline := range c.objectsIn(raw, "timeline") {
		timelineType := model.TimelineType(getInt(rawTimeline, "type", int(model.TimelineAction)))
		timelineName := getString(rawTimeline, "name", "")
		var timeline *model.TimelineData
		var blend *model.AnimationTimelineData

		switch timelineType {
		case model.TimelineSlotDisplay, model.TimelineSlotZIndex, model.TimelineBoneAlpha,
			model.TimelineSlotAlpha, model.TimelineAnimationProgress, model.TimelineAnimationWeight:
			if timelineType == model.TimelineSlotDisplay {
				c.frameValueType = frameValueStep
				c.frameValueScale = 1
			} else {
				c.frameValueType = frameValueInt
				switch timelineType {
				case model.TimelineSlotZIndex:
					c.frameValueScale = 1
				case model.TimelineAnimationProgress, model.TimelineAnimationWeight:
					c.frameValueScale = 10000
				default:
					c.frameValueScale = 100
				}
			}

			switch timelineType {
			case model.TimelineBoneAlpha, model.TimelineSlotAlpha, model.TimelineAnimationWeight:
				c.frameDefaultValue = 1
			default:
				c.frameDefaultValue = 0
			}

			switch timelineType {
			case model.TimelineAnimationProgress, model.TimelineAnimationWeight:
				blend = pool.Borrow[model.AnimationTimelineData](c.pool)
				if timelineType == model.TimelineAnimationProgress && animation.BlendType != model.BlendTypeNone {
					blend.X = getFloat(rawTimeline, "x", 0)
					blend.Y = getFloat(rawTimeline, "y", 0)
				}
				timeline = &blend.TimelineData
			}

			timeline = c.parseTimeline(rawTimeline, nil, "frame", timelineType, c.frameValueType, 1, c.parseSingleValueFrame, timeline)

		case model.TimelineBoneTranslate, model.TimelineBoneRotate, model.TimelineBoneScale,
			model.TimelineIKConstraint, model.TimelineAnimationParameter:
			if timelineType == model.TimelineIKConstraint || timelineType == model.TimelineAnimationParameter {
				c.frameValueType = frameValueInt
				if timelineType == model.TimelineAnimationParameter {
					c.frameValueScale = 10000
				} else {
					c.frameValueScale = 100
				}
			} else {
				c.frameValueType = frameValueFloat
				if timelineType == model.TimelineBoneRotate {
					c.frameValueScale = geom.DegRad
				} else {
					c.frameValueScale = 1
				}
			}

			switch timelineType {
			case model.TimelineBoneScale, model.TimelineIKConstraint:
				c.frameDefaultValue = 1
			default:
				c.frameDefaultValue = 0
			}

			if timelineType == model.TimelineAnimationParameter {
				blend = pool.Borrow[model.AnimationTimelineData](c.pool)
				timeline = &blend.TimelineData
			}

			timeline = c.parseTimeline(rawTimeline, nil, "frame", timelineType, c.frameValueType, 2, c.parseDoubleValueFrame, timeline)

		case model.TimelineSurface:
			bone := c.armature.Bone(timelineName)
			if bone == nil || bone.Surface == nil {
				c.log.Warn().
					Str("armature", c.armature.Name).
					Str("bone", timelineName).
					Msg("surface timeline names a missing surface")
				continue
			}
			c.geometry = &bone.Surface.Geometry
			timeline = c.parseTimeline(rawTimeline, nil, "frame", timelineType, frameValueFloat, 0, c.parseDeformFrame, nil)
			c.geometry = nil

		case model.TimelineSlotDeform:
			c.geometry = c.meshGeometry(timelineName)
			if c.geometry == nil {
				c.log.Warn().
					Str("armature", c.armature.Name).
					Str("display", timelineName).
					Msg("deform timeline names a missing mesh")
				continue
			}
			timeline = c.parseTimeline(rawTimeline, nil, "frame", timelineType, frameValueFloat, 0, c.parseDeformFrame, nil)
			c.geometry = nil

		case model.TimelineSlotColor:
			timeline = c.parseTimeline(rawTimeline, nil, "frame", timelineType, frameValueInt, 1, c.parseSlotColorFrame, nil)
		}

		if timeline == nil {
			continue
		}

		switch timelineType {
		case model.TimelineBoneTranslate, model.TimelineBoneRotate, model.TimelineBoneScale,
			model.TimelineSurface, model.TimelineBoneAlpha:
			animation.AddBoneTimeline(timelineName, timeline)
		case model.TimelineSlotDisplay, model.TimelineSlotColor, model.TimelineSlotDeform,
			model.TimelineSlotZIndex, model.TimelineSlotAlpha:
			animation.AddSlotTimeline(timelineName, timeline)
		case model.TimelineIKConstraint:
			animation.AddConstraintTimeline(timelineName, timeline)
		case model.TimelineAnimationProgress, model.TimelineAnimationWeight, model.TimelineAnimationParameter:
			animation.AddAnimationTimeline(timelineName, blend)
		}
	}

	c.animation = nil

	return animation
}

func (c *Compiler) parseBoneTimeline(raw map[string]any) {
	boneName := getString(raw, "name", "")
	bone := c.armature.Bone(boneName)
	if bone == nil {
		c.log.Warn().
			Str("armature", c.armature.Name).
			Str("bone", boneName).
			Msg("bone timeline names a missing bone")
		return
	}

	c.bone = bone
	c.slot = c.armature.Slot(bone.Name)

	c.frameDefaultValue = 0
	c.frameValueScale = 1
	if timeline := c.parseTimeline(raw, nil, "translateFrame", model.TimelineBoneTranslate, frameValueFloat, 2, c.parseDoubleValueFrame, nil); timeline != nil {
		c.animation.AddBoneTimeline(bone.Name, timeline)
	}

	c.frameDefaultValue = 0
	c.frameValueScale = 1
	if timeline := c.parseTimeline(raw, nil, "rotateFrame", model.TimelineBoneRotate, frameValueFloat, 2, c.parseBoneRotateFrame, nil); timeline != nil {
		c.animation.AddBoneTimeline(bone.Name, timeline)
	}

	c.frameDefaultValue = 1
	c.frameValueScale = 1
	if timeline := c.parseTimeline(raw, nil, "scaleFrame", model.TimelineBoneScale, frameValueFloat, 2, c.parseBoneScaleFrame, nil); timeline != nil {
		c.animation.AddBoneTimeline(bone.Name, timeline)
	}

	if timeline := c.parseTimeline(raw, nil, "frame", model.TimelineBoneAll, frameValueFloat, 6, c.parseBoneAllFrame, nil); timeline != nil {
		c.animation.AddBoneTimeline(bone.Name, timeline)
	}

	c.bone = nil
	c.slot = nil
}

func (c *Compiler) parseSlotTimeline(raw map[string]any) {
	slotName := getString(raw, "name", "")
	slot := c.armature.Slot(slotName)
	if slot == nil {
		c.log.Warn().
			Str("armature", c.armature.Name).
			Str("slot", slotName).
			Msg("slot timeline names a missing slot")
		return
	}

	c.slot = slot

	// Newer exporters split display and color keys; older ones share one
	// "frame" list for both.
	framesKey := "frame"
	if _, ok := raw["displayFrame"]; ok {
		framesKey = "displayFrame"
	}
	if timeline := c.parseTimeline(raw, nil, framesKey, model.TimelineSlotDisplay, frameValueStep, 0, c.parseSlotDisplayFrame, nil); timeline != nil {
		c.animation.AddSlotTimeline(slot.Name, timeline)
	}

	framesKey = "frame"
	if _, ok := raw["colorFrame"]; ok {
		framesKey = "colorFrame"
	}
	if timeline := c.parseTimeline(raw, nil, framesKey, model.TimelineSlotColor, frameValueInt, 1, c.parseSlotColorFrame, nil); timeline != nil {
		c.animation.AddSlotTimeline(slot.Name, timeline)
	}

	c.slot = nil
}

// parseTimeline writes one timeline record: the five element header, then
// one animation-relative frame offset per keyframe. Timelines with more
// than one keyframe also get a run in the document's frame-indices table
// mapping every tick to its keyframe.
//
// A caller that needs a special record, the blend-space timelines do, passes
// it in; otherwise a plain one is borrowed.
func (c *Compiler) parseTimeline(
	raw map[string]any, rawFrames []any, framesKey string,
	timelineType model.TimelineType, valueType frameValueType, frameValueCount int,
	parser frameParser, timeline *model.TimelineData,
) *model.TimelineData {
	if raw != nil && framesKey != "" {
		value, ok := raw[framesKey]
		if !ok {
			return nil
		}
		list, ok := value.([]any)
		if !ok {
			c.failShape(framesKey)
			return nil
		}
		rawFrames = list
	}
	if len(rawFrames) == 0 {
		return nil
	}

	keyFrameCount := len(rawFrames)
	frameIntArrayLength := len(c.frameIntArray)
	frameFloatArrayLength := len(c.frameFloatArray)
	timelineOffset := len(c.timelineArray)

	if timeline == nil {
		timeline = pool.Borrow[model.TimelineData](c.pool)
	}
	timeline.Type = timelineType
	timeline.Offset = timelineOffset
	c.frameValueType = valueType
	c.timeline = timeline

	c.timelineArray = append(c.timelineArray, make([]uint16, 5+keyFrameCount)...)
	if raw != nil {
		c.timelineArray[timelineOffset+model.TimelineScale] = uint16(round(getFloat(raw, "scale", 1) * 100))
		c.timelineArray[timelineOffset+model.TimelineOffset] = uint16(round(getFloat(raw, "offset", 0) * 100))
	} else {
		c.timelineArray[timelineOffset+model.TimelineScale] = 100
		c.timelineArray[timelineOffset+model.TimelineOffset] = 0
	}
	c.timelineArray[timelineOffset+model.TimelineKeyFrameCount] = uint16(keyFrameCount)
	c.timelineArray[timelineOffset+model.TimelineFrameValueCount] = uint16(frameValueCount)

	switch valueType {
	case frameValueStep:
		c.timelineArray[timelineOffset+model.TimelineFrameValueOffset] = 0
	case frameValueInt:
		c.timelineArray[timelineOffset+model.TimelineFrameValueOffset] = uint16(frameIntArrayLength - c.animation.FrameIntOffset)
	case frameValueFloat:
		c.timelineArray[timelineOffset+model.TimelineFrameValueOffset] = uint16(frameFloatArrayLength - c.animation.FrameFloatOffset)
	}

	if keyFrameCount == 1 {
		timeline.FrameIndicesOffset = -1
		c.timelineArray[timelineOffset+model.TimelineFrameOffset] = uint16(parser(rawFrames[0], 0, 0) - c.animation.FrameOffset)
	} else {
		// One entry per tick, plus the closing tick.
		totalFrameCount := c.animation.FrameCount + 1
		frameIndicesOffset := len(c.data.FrameIndices)
		c.data.FrameIndices = append(c.data.FrameIndices, make([]int, totalFrameCount)...)
		timeline.FrameIndicesOffset = frameIndicesOffset

		iK := 0
		frameStart := 0
		frameCount := 0
		for i := 0; i < totalFrameCount; i++ {
			if frameStart+frameCount <= i && iK < keyFrameCount {
				rawFrame := rawFrames[iK]
				frameStart = i
				if iK == keyFrameCount-1 {
					frameCount = c.animation.FrameCount - frameStart
				} else if _, ok := rawFrame.(*actionFrame); ok {
					frameCount = c.actionFrames[iK+1].frameStart - frameStart
				} else if rawFrame, ok := rawFrame.(map[string]any); ok {
					frameCount = getInt(rawFrame, "duration", 1)
				} else {
					frameCount = 1
				}
				c.timelineArray[timelineOffset+model.TimelineFrameOffset+iK] = uint16(parser(rawFrame, frameStart, frameCount) - c.animation.FrameOffset)
				iK++
			}
			c.data.FrameIndices[frameIndicesOffset+i] = iK - 1
		}
	}

	c.timeline = nil

	return timeline
}

// meshGeometry finds the mesh display a deform timeline names. Display
// names are unique across a document's skins in practice, so the first
// match wins.
func (c *Compiler) meshGeometry(displayName string) *model.GeometryData {
	for _, skin := range c.armature.Skins() {
		if mesh, ok := skin.Display("", displayName).(*model.MeshDisplay); ok {
			return &mesh.Geometry
		}
	}
	return nil
}
