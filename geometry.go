package dragonbones

import (
	"slices"

	"github.com/BlizzedRu/dragonbones/model"
	"github.com/BlizzedRu/dragonbones/pool"
)

// parseGeometry compiles a display's vertex data into the int and float
// arrays. The record starts with a four element header; the triangle count
// and weight offset are patched once they are known.
func (c *Compiler) parseGeometry(raw map[string]any, geometry *model.GeometryData) {
	rawVertices := c.numbersIn(raw, "vertices")
	if len(rawVertices)%2 != 0 {
		rawVertices = rawVertices[:len(rawVertices)-1]
	}
	vertexCount := len(rawVertices) / 2
	triangleCount := 0
	geometryOffset := len(c.intArray)
	verticesOffset := len(c.floatArray)

	geometry.Offset = geometryOffset
	geometry.Data = c.data

	c.intArray = append(c.intArray, int16(vertexCount), 0, int16(verticesOffset), -1)

	scale := c.armature.Scale
	for _, v := range rawVertices {
		c.floatArray = append(c.floatArray, float32(v*scale))
	}

	if _, ok := raw["triangles"]; ok {
		rawTriangles := c.numbersIn(raw, "triangles")
		triangleCount = len(rawTriangles) / 3
		for _, v := range rawTriangles[:triangleCount*3] {
			c.intArray = append(c.intArray, int16(v))
		}
	}
	c.intArray[geometryOffset+model.GeometryTriangleCount] = int16(triangleCount)

	if _, ok := raw["uvs"]; ok {
		rawUVs := c.numbersIn(raw, "uvs")
		for i := 0; i < vertexCount*2; i++ {
			var v float64
			if i < len(rawUVs) {
				v = rawUVs[i]
			}
			c.floatArray = append(c.floatArray, float32(v))
		}
	}

	if _, ok := raw["weights"]; ok {
		c.parseWeights(raw, geometry, rawVertices, vertexCount, geometryOffset, verticesOffset)
	}
}

// parseWeights compiles the interleaved [count, (bone, value)*count] weight
// table. Exported documents carry bind poses next to the weights; without
// them the vertex positions are stored as-is.
func (c *Compiler) parseWeights(raw map[string]any, geometry *model.GeometryData, rawVertices []float64, vertexCount, geometryOffset, verticesOffset int) {
	rawWeights := c.numbersIn(raw, "weights")

	// Walk the layout up front: the write loops below index the staging
	// arrays directly and must not run off a short document.
	iW := 0
	for i := 0; i < vertexCount; i++ {
		if iW >= len(rawWeights) || rawWeights[iW] < 0 {
			c.failShape("weights")
			return
		}
		iW += 1 + int(rawWeights[iW])*2
	}
	if iW != len(rawWeights) {
		c.failShape("weights")
		return
	}

	weightCount := (len(rawWeights) - vertexCount) / 2
	weightOffset := len(c.intArray)
	floatOffset := len(c.floatArray)

	weight := pool.Borrow[model.WeightData](c.pool)
	weight.Count = weightCount
	weight.Offset = weightOffset

	if _, ok := raw["bonePose"]; ok {
		rawSlotPose := c.numbersIn(raw, "slotPose")
		rawBonePoses := c.numbersIn(raw, "bonePose")
		if len(rawSlotPose) < 6 || len(rawBonePoses) == 0 || len(rawBonePoses)%7 != 0 {
			c.failShape("bonePose")
			return
		}
		weightBoneCount := len(rawBonePoses) / 7
		weightBoneIndices := make([]int, weightBoneCount)

		c.intArray = append(c.intArray, make([]int16, 2+weightBoneCount+vertexCount+weightCount)...)
		c.intArray[weightOffset+model.WeightFloatOffset] = int16(floatOffset)

		for i := 0; i < weightBoneCount; i++ {
			rawBoneIndex := int(rawBonePoses[i*7])
			if rawBoneIndex < 0 || rawBoneIndex >= len(c.rawBones) {
				c.failShape("bonePose")
				return
			}
			bone := c.rawBones[rawBoneIndex]
			weight.AddBone(bone)
			weightBoneIndices[i] = rawBoneIndex
			c.intArray[weightOffset+model.WeightBoneIndices+i] = int16(c.armature.BoneIndex(bone))
		}

		c.floatArray = append(c.floatArray, make([]float32, weightCount*3)...)
		slotPose := poseMatrix(rawSlotPose, 0)

		iW := 0
		iB := weightOffset + model.WeightBoneIndices + weightBoneCount
		iV := floatOffset
		for i := 0; i < vertexCount; i++ {
			iD := i * 2
			vertexBoneCount := int(rawWeights[iW])
			iW++
			c.intArray[iB] = int16(vertexBoneCount)
			iB++

			// Vertices sit in slot space; weights are authored against
			// each bone's bind pose.
			x, y := slotPose.TransformPoint(float64(c.floatArray[verticesOffset+iD]), float64(c.floatArray[verticesOffset+iD+1]))

			for j := 0; j < vertexBoneCount; j++ {
				boneIndex := slices.Index(weightBoneIndices, int(rawWeights[iW]))
				iW++
				if boneIndex < 0 {
					c.failShape("weights")
					return
				}
				lx, ly := poseMatrix(rawBonePoses, boneIndex*7+1).Invert().TransformPoint(x, y)
				c.intArray[iB] = int16(boneIndex)
				iB++
				c.floatArray[iV] = float32(rawWeights[iW])
				iW++
				c.floatArray[iV+1] = float32(lx)
				c.floatArray[iV+2] = float32(ly)
				iV += 3
			}
		}
	} else {
		rawBones := c.numbersIn(raw, "bones")
		weightBoneCount := len(rawBones)
		rawBoneIndices := make([]int, weightBoneCount)

		c.intArray = append(c.intArray, make([]int16, 2+weightBoneCount+vertexCount+weightCount)...)
		c.intArray[weightOffset+model.WeightFloatOffset] = int16(floatOffset)

		for i := 0; i < weightBoneCount; i++ {
			rawBoneIndex := int(rawBones[i])
			if rawBoneIndex < 0 || rawBoneIndex >= len(c.rawBones) {
				c.failShape("bones")
				return
			}
			bone := c.rawBones[rawBoneIndex]
			weight.AddBone(bone)
			rawBoneIndices[i] = rawBoneIndex
			c.intArray[weightOffset+model.WeightBoneIndices+i] = int16(c.armature.BoneIndex(bone))
		}

		c.floatArray = append(c.floatArray, make([]float32, weightCount*3)...)

		iW := 0
		iB := weightOffset + model.WeightBoneIndices + weightBoneCount
		iV := floatOffset
		for i := 0; i < vertexCount; i++ {
			vertexBoneCount := int(rawWeights[iW])
			iW++
			c.intArray[iB] = int16(vertexBoneCount)
			iB++

			// No bind pose here, so positions stay in raw document
			// units; the bind-pose branch reads the scaled staging
			// vertices instead.
			x := rawVertices[i*2]
			y := rawVertices[i*2+1]

			for j := 0; j < vertexBoneCount; j++ {
				boneIndex := slices.Index(rawBoneIndices, int(rawWeights[iW]))
				iW++
				if boneIndex < 0 {
					c.failShape("weights")
					return
				}
				c.intArray[iB] = int16(boneIndex)
				iB++
				c.floatArray[iV] = float32(rawWeights[iW])
				iW++
				c.floatArray[iV+1] = float32(x)
				c.floatArray[iV+2] = float32(y)
				iV += 3
			}
		}
	}

	c.intArray[weightOffset+model.WeightBoneCount] = int16(len(weight.Bones))
	c.intArray[geometryOffset+model.GeometryWeightOffset] = int16(weightOffset)
	geometry.Weight = weight
}
