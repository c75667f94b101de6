package dragonbones

import (
	"math"

	"github.com/BlizzedRu/dragonbones/geom"
	"github.com/BlizzedRu/dragonbones/model"
)

// Frame parsers run under parseTimeline. Each appends one frame record to
// the frame array, pushes the frame's values onto the int or float value
// array, and returns the record's element offset.

func (c *Compiler) parseFrame(frameStart int) int {
	frameOffset := len(c.frameArray)
	c.frameArray = append(c.frameArray, int16(frameStart))
	return frameOffset
}

// parseTweenFrame encodes how playback leaves this frame: a sampled bezier
// curve, a quad easing with its strength, a straight line, or no tween.
func (c *Compiler) parseTweenFrame(rawFrame map[string]any, frameStart, frameCount int) int {
	frameOffset := c.parseFrame(frameStart)

	if frameCount == 0 {
		c.frameArray = append(c.frameArray, int16(model.TweenNone))
		return frameOffset
	}

	if _, ok := rawFrame["curve"]; ok {
		controls := c.numbersIn(rawFrame, "curve")
		if !validCurveShape(len(controls)) {
			c.failShape("curve")
			c.frameArray = append(c.frameArray, int16(model.TweenNone))
			return frameOffset
		}

		// One sample per covered tick, both endpoints implied.
		sampleCount := frameCount + 1
		samples := c.samples(sampleCount)
		omitted := samplingEasingCurve(controls, samples)

		c.frameArray = append(c.frameArray, make([]int16, 2+sampleCount)...)
		c.frameArray[frameOffset+model.FrameTweenType] = int16(model.TweenCurve)
		if omitted {
			c.frameArray[frameOffset+model.FrameTweenEasingOrCurveSampleCount] = int16(sampleCount)
		} else {
			c.frameArray[frameOffset+model.FrameTweenEasingOrCurveSampleCount] = int16(-sampleCount)
		}
		for i, sample := range samples {
			c.frameArray[frameOffset+model.FrameCurveSamples+i] = int16(round(sample * 10000))
		}
		return frameOffset
	}

	const noTween = -2.0
	tweenEasing := getFloat(rawFrame, "tweenEasing", noTween)
	switch {
	case tweenEasing == noTween:
		c.frameArray = append(c.frameArray, int16(model.TweenNone))
	case tweenEasing == 0:
		c.frameArray = append(c.frameArray, int16(model.TweenLine))
	case tweenEasing < 0:
		c.frameArray = append(c.frameArray, int16(model.TweenQuadIn), int16(round(-tweenEasing*100)))
	case tweenEasing <= 1:
		c.frameArray = append(c.frameArray, int16(model.TweenQuadOut), int16(round(tweenEasing*100)))
	default:
		c.frameArray = append(c.frameArray, int16(model.TweenQuadInOut), int16(round(tweenEasing*100-100)))
	}
	return frameOffset
}

// parseActionFrame writes a merged action frame: its tick, the action
// count, then the armature-level action indices.
func (c *Compiler) parseActionFrame(raw any, frameStart, _ int) int {
	frame := raw.(*actionFrame)

	frameOffset := len(c.frameArray)
	c.frameArray = append(c.frameArray, int16(frameStart), int16(len(frame.actions)))
	for _, index := range frame.actions {
		c.frameArray = append(c.frameArray, int16(index))
	}
	return frameOffset
}

func (c *Compiler) parseZOrderFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)
	frameOffset := c.parseFrame(frameStart)

	if rawZOrder := c.numbersIn(rawFrame, "zOrder"); len(rawZOrder) > 0 {
		if zOrders := c.remapZOrders(rawZOrder); zOrders != nil {
			c.frameArray = append(c.frameArray, int16(len(zOrders)))
			for _, v := range zOrders {
				c.frameArray = append(c.frameArray, int16(v))
			}
			return frameOffset
		}
	}

	// No moves on this frame.
	c.frameArray = append(c.frameArray, 0)
	return frameOffset
}

// remapZOrders expands sparse [slot, offset] move pairs into a full slot
// order. Moved slots claim their target position; the rest fill the free
// positions back to front, keeping their relative order. Returns nil when
// the pairs walk out of the slot range.
func (c *Compiler) remapZOrders(rawZOrder []float64) []int {
	slotCount := len(c.armature.SortedSlots)
	if len(rawZOrder)%2 != 0 || len(rawZOrder)/2 > slotCount {
		c.failShape("zOrder")
		return nil
	}

	unchanged := make([]int, 0, slotCount)
	zOrders := make([]int, slotCount)
	for i := range zOrders {
		zOrders[i] = -1
	}

	originalIndex := 0
	for i := 0; i < len(rawZOrder); i += 2 {
		slotIndex := int(rawZOrder[i])
		zOrderOffset := int(rawZOrder[i+1])
		if slotIndex < originalIndex || slotIndex >= slotCount ||
			slotIndex+zOrderOffset < 0 || slotIndex+zOrderOffset >= slotCount {
			c.failShape("zOrder")
			return nil
		}

		for originalIndex != slotIndex {
			unchanged = append(unchanged, originalIndex)
			originalIndex++
		}
		zOrders[slotIndex+zOrderOffset] = originalIndex
		originalIndex++
	}
	for originalIndex < slotCount {
		unchanged = append(unchanged, originalIndex)
		originalIndex++
	}

	for i := slotCount - 1; i >= 0; i-- {
		if zOrders[i] != -1 {
			continue
		}
		if len(unchanged) > 0 {
			zOrders[i] = unchanged[len(unchanged)-1]
			unchanged = unchanged[:len(unchanged)-1]
		} else {
			zOrders[i] = 0
		}
	}

	return zOrders
}

func (c *Compiler) parseBoneAllFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)

	transform := geom.IdentityTransform
	if rawTransform := getObject(rawFrame, "transform"); rawTransform != nil {
		c.parseTransform(rawTransform, &transform, 1)
	}

	rotation := c.unwindRotation(transform.Rotation, frameStart)
	c.prevClockwise = getFloat(rawFrame, "tweenRotate", 0)
	c.prevRotation = rotation

	frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
	c.frameFloatArray = append(c.frameFloatArray,
		float32(transform.X), float32(transform.Y),
		float32(rotation), float32(transform.Skew),
		float32(transform.ScaleX), float32(transform.ScaleY))
	c.parseActionDataInFrame(rawFrame, frameStart, c.bone, c.slot)

	return frameOffset
}

func (c *Compiler) parseBoneRotateFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)

	rotation := c.unwindRotation(getFloat(rawFrame, "rotate", 0)*geom.DegRad, frameStart)
	c.prevClockwise = getFloat(rawFrame, "clockwise", 0)
	c.prevRotation = rotation

	frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
	c.frameFloatArray = append(c.frameFloatArray,
		float32(rotation), float32(getFloat(rawFrame, "skew", 0)*geom.DegRad))

	return frameOffset
}

// unwindRotation keeps consecutive rotations on one winding: without a
// requested turn count the tween takes the short way, otherwise it spins
// the remaining turns toward the new angle.
func (c *Compiler) unwindRotation(rotation float64, frameStart int) float64 {
	if frameStart == 0 {
		return rotation
	}
	if c.prevClockwise == 0 {
		return c.prevRotation + geom.NormalizeRadian(rotation-c.prevRotation)
	}
	if c.prevClockwise > 0 && rotation >= c.prevRotation || c.prevClockwise < 0 && rotation <= c.prevRotation {
		if c.prevClockwise > 0 {
			c.prevClockwise--
		} else {
			c.prevClockwise++
		}
	}
	return rotation + 2*math.Pi*c.prevClockwise
}

func (c *Compiler) parseBoneScaleFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)
	frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
	c.frameFloatArray = append(c.frameFloatArray,
		float32(getFloat(rawFrame, "x", 1)), float32(getFloat(rawFrame, "y", 1)))
	return frameOffset
}

func (c *Compiler) parseSlotDisplayFrame(raw any, frameStart, _ int) int {
	rawFrame, _ := raw.(map[string]any)
	frameOffset := c.parseFrame(frameStart)

	if _, ok := rawFrame["value"]; ok {
		c.frameArray = append(c.frameArray, int16(getInt(rawFrame, "value", 0)))
	} else {
		c.frameArray = append(c.frameArray, int16(getInt(rawFrame, "displayIndex", 0)))
	}

	c.parseActionDataInFrame(rawFrame, frameStart, c.slot.ParentBone, c.slot)

	return frameOffset
}

// parseSlotColorFrame stores the frame's color record in the color array and
// its offset in the frame-int array. Frames without a color share one
// all-default record per document.
func (c *Compiler) parseSlotColorFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)
	frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
	colorOffset := -1

	rawColor := getObject(rawFrame, "value")
	if rawColor == nil {
		rawColor = getObject(rawFrame, "color")
	}
	if len(rawColor) > 0 {
		var color geom.ColorTransform
		parseColorTransform(rawColor, &color)
		colorOffset = len(c.colorArray)
		c.colorArray = append(c.colorArray,
			int16(round(color.AlphaMultiplier*100)),
			int16(round(color.RedMultiplier*100)),
			int16(round(color.GreenMultiplier*100)),
			int16(round(color.BlueMultiplier*100)),
			int16(color.AlphaOffset),
			int16(color.RedOffset),
			int16(color.GreenOffset),
			int16(color.BlueOffset))
	}

	if colorOffset < 0 {
		if c.defaultColorOffset < 0 {
			c.defaultColorOffset = len(c.colorArray)
			c.colorArray = append(c.colorArray, 100, 100, 100, 100, 0, 0, 0, 0)
		}
		colorOffset = c.defaultColorOffset
	}

	c.frameIntArray = append(c.frameIntArray, int16(colorOffset))

	return frameOffset
}

// parseSlotDeformFrame writes a mesh deform keyframe. The document stores a
// sparse window of vertex deltas; weighted meshes re-project each delta into
// the space of every bone influencing the vertex, using the bind poses
// remembered at mesh parse time. The first keyframe also writes the
// timeline's deform header and points the timeline record at it.
func (c *Compiler) parseSlotDeformFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)

	frameFloatOffset := len(c.frameFloatArray)
	frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
	rawVertices := c.numbersIn(rawFrame, "vertices")
	offset := getInt(rawFrame, "offset", 0)
	vertexCount := int(c.intArray[c.mesh.Geometry.Offset+model.GeometryVertexCount])
	meshName := c.mesh.Parent.Name + "_" + c.slot.Name + "_" + c.mesh.Name
	weight := c.mesh.Geometry.Weight

	var slotPose geom.Matrix
	var rawBonePoses []float64
	iB := 0
	if weight != nil {
		rawSlotPose := c.weightSlotPose[meshName]
		rawBonePoses = c.weightBonePoses[meshName]
		if len(rawSlotPose) < 6 || len(rawBonePoses) < len(weight.Bones)*7 {
			c.failShape("weights")
			return frameOffset
		}
		slotPose = poseMatrix(rawSlotPose, 0)
		c.frameFloatArray = append(c.frameFloatArray, make([]float32, weight.Count*2)...)
		iB = weight.Offset + model.WeightBoneIndices + len(weight.Bones)
	} else {
		c.frameFloatArray = append(c.frameFloatArray, make([]float32, vertexCount*2)...)
	}

	iV := frameFloatOffset
	for i := 0; i < vertexCount*2; i += 2 {
		var x, y float64
		if i >= offset && i-offset < len(rawVertices) {
			x = rawVertices[i-offset]
		}
		if i+1 >= offset && i+1-offset < len(rawVertices) {
			y = rawVertices[i+1-offset]
		}

		if weight != nil {
			vertexBoneCount := int(c.intArray[iB])
			iB++
			x, y = slotPose.TransformVector(x, y)
			for j := 0; j < vertexBoneCount; j++ {
				boneIndex := int(c.intArray[iB])
				iB++
				lx, ly := poseMatrix(rawBonePoses, boneIndex*7+1).Invert().TransformVector(x, y)
				c.frameFloatArray[iV] = float32(lx)
				c.frameFloatArray[iV+1] = float32(ly)
				iV += 2
			}
		} else {
			c.frameFloatArray[frameFloatOffset+i] = float32(x)
			c.frameFloatArray[frameFloatOffset+i+1] = float32(y)
		}
	}

	if frameStart == 0 {
		frameIntOffset := len(c.frameIntArray)
		c.frameIntArray = append(c.frameIntArray,
			int16(c.mesh.Geometry.Offset),
			int16(len(c.frameFloatArray)-frameFloatOffset),
			int16(len(c.frameFloatArray)-frameFloatOffset),
			0,
			int16(frameFloatOffset-c.animation.FrameFloatOffset))
		c.timelineArray[c.timeline.Offset+model.TimelineFrameValueCount] = uint16(frameIntOffset - c.animation.FrameIntOffset)
	}

	return frameOffset
}

func (c *Compiler) parseIKConstraintFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)
	frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)

	bendPositive := int16(0)
	if getBool(rawFrame, "bendPositive", true) {
		bendPositive = 1
	}
	c.frameIntArray = append(c.frameIntArray, bendPositive, int16(round(getFloat(rawFrame, "weight", 1)*100)))

	return frameOffset
}

func (c *Compiler) parseSingleValueFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)

	switch c.frameValueType {
	case frameValueStep:
		frameOffset := c.parseFrame(frameStart)
		c.frameArray = append(c.frameArray, int16(getInt(rawFrame, "value", int(c.frameDefaultValue))))
		return frameOffset

	case frameValueInt:
		frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
		c.frameIntArray = append(c.frameIntArray, int16(round(getFloat(rawFrame, "value", c.frameDefaultValue)*c.frameValueScale)))
		return frameOffset

	default:
		frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
		c.frameFloatArray = append(c.frameFloatArray, float32(getFloat(rawFrame, "value", c.frameDefaultValue)*c.frameValueScale))
		return frameOffset
	}
}

func (c *Compiler) parseDoubleValueFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)
	frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
	x := getFloat(rawFrame, "x", c.frameDefaultValue)
	y := getFloat(rawFrame, "y", c.frameDefaultValue)

	if c.frameValueType == frameValueInt {
		c.frameIntArray = append(c.frameIntArray, int16(round(x*c.frameValueScale)), int16(round(y*c.frameValueScale)))
	} else {
		c.frameFloatArray = append(c.frameFloatArray, float32(x*c.frameValueScale), float32(y*c.frameValueScale))
	}

	return frameOffset
}

// parseDeformFrame handles deform keyframes from the flat timeline list,
// which target either a surface bone or a mesh display.
func (c *Compiler) parseDeformFrame(raw any, frameStart, frameCount int) int {
	rawFrame, _ := raw.(map[string]any)

	frameFloatOffset := len(c.frameFloatArray)
	frameOffset := c.parseTweenFrame(rawFrame, frameStart, frameCount)
	rawVertices := c.numbersIn(rawFrame, "vertices")
	if rawVertices == nil {
		rawVertices = c.numbersIn(rawFrame, "value")
	}
	offset := getInt(rawFrame, "offset", 0)
	vertexCount := int(c.intArray[c.geometry.Offset+model.GeometryVertexCount])

	if c.geometry.Weight == nil {
		c.frameFloatArray = append(c.frameFloatArray, make([]float32, vertexCount*2)...)
		for i := 0; i < vertexCount*2; i += 2 {
			var x, y float64
			if i >= offset && i-offset < len(rawVertices) {
				x = rawVertices[i-offset]
			}
			if i+1 >= offset && i+1-offset < len(rawVertices) {
				y = rawVertices[i+1-offset]
			}
			c.frameFloatArray[frameFloatOffset+i] = float32(x)
			c.frameFloatArray[frameFloatOffset+i+1] = float32(y)
		}
	}
	// TODO: re-project weighted deforms here the way parseSlotDeformFrame
	// does; until then weighted timelines from the flat list compile to an
	// empty value run.

	if frameStart == 0 {
		frameIntOffset := len(c.frameIntArray)
		c.frameIntArray = append(c.frameIntArray,
			int16(c.geometry.Offset),
			int16(len(c.frameFloatArray)-frameFloatOffset),
			int16(len(c.frameFloatArray)-frameFloatOffset),
			0,
			int16(frameFloatOffset-c.animation.FrameFloatOffset))
		c.timelineArray[c.timeline.Offset+model.TimelineFrameValueCount] = uint16(frameIntOffset - c.animation.FrameIntOffset)
	}

	return frameOffset
}
