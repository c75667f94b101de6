package dragonbones

import (
	"github.com/BlizzedRu/dragonbones/geom"
	"github.com/BlizzedRu/dragonbones/model"
	"github.com/BlizzedRu/dragonbones/pool"
)

// parseArmature walks one armature record in dependency order: bones before
// constraints that reference them, slots before skins that attach to them,
// skins before path constraints and animations that look displays up.
func (c *Compiler) parseArmature(raw map[string]any, scale float64) *model.ArmatureData {
	armature := pool.Borrow[model.ArmatureData](c.pool)
	armature.Name = getString(raw, "name", "")
	armature.FrameRate = getInt(raw, "frameRate", c.data.FrameRate)
	armature.Scale = scale

	if value, ok := raw["type"].(string); ok {
		armature.Type = model.ParseArmatureType(value)
	} else {
		armature.Type = model.ArmatureType(getInt(raw, "type", int(model.ArmatureArmature)))
	}

	if armature.FrameRate == 0 { // Data error.
		armature.FrameRate = 24
	}

	c.armature = armature

	if rawCanvas := getObject(raw, "canvas"); rawCanvas != nil {
		canvas := pool.Borrow[model.CanvasData](c.pool)
		_, canvas.HasBackground = rawCanvas["color"]
		canvas.Color = getInt(rawCanvas, "color", 0)
		canvas.X = getFloat(rawCanvas, "x", 0) * armature.Scale
		canvas.Y = getFloat(rawCanvas, "y", 0) * armature.Scale
		canvas.Width = getFloat(rawCanvas, "width", 0) * armature.Scale
		canvas.Height = getFloat(rawCanvas, "height", 0) * armature.Scale
		armature.Canvas = canvas
	}

	if rawAABB := getObject(raw, "aabb"); rawAABB != nil {
		armature.AABB = geom.Rectangle{
			X:      getFloat(rawAABB, "x", 0) * armature.Scale,
			Y:      getFloat(rawAABB, "y", 0) * armature.Scale,
			Width:  getFloat(rawAABB, "width", 0) * armature.Scale,
			Height: getFloat(rawAABB, "height", 0) * armature.Scale,
		}
	}

	// Bones reference parents by name and may be declared before them, so
	// registration and linkage are separate passes.
	rawBoneList := c.objectsIn(raw, "bone")
	for _, rawBone := range rawBoneList {
		bone := c.parseBone(rawBone)
		armature.AddBone(bone)
		// Weight tables index bones by document order, before sorting.
		c.rawBones = append(c.rawBones, bone)
	}
	for i, rawBone := range rawBoneList {
		parentName := getString(rawBone, "parent", "")
		if parentName == "" {
			continue
		}
		bone := c.rawBones[i]
		parent := armature.Bone(parentName)
		if parent == nil || parent == bone {
			c.log.Warn().
				Str("armature", armature.Name).
				Str("bone", bone.Name).
				Str("parent", parentName).
				Msg("missing parent bone")
			continue
		}
		bone.ParentBone = parent
	}

	for _, rawIK := range c.objectsIn(raw, "ik") {
		if constraint := c.parseIKConstraint(rawIK); constraint != nil {
			armature.AddConstraint(constraint)
		}
	}

	armature.SortBones()

	for zOrder, rawSlot := range c.objectsIn(raw, "slot") {
		armature.AddSlot(c.parseSlot(rawSlot, zOrder))
	}

	for _, rawSkin := range c.objectsIn(raw, "skin") {
		armature.AddSkin(c.parseSkin(rawSkin))
	}

	for _, rawPath := range c.objectsIn(raw, "path") {
		if constraint := c.parsePathConstraint(rawPath); constraint != nil {
			armature.AddConstraint(constraint)
		}
	}

	// Link deferred shared meshes now that every skin is in place; the
	// donor mesh may have appeared after the one sharing it.
	for i, rawMesh := range c.cacheRawMeshes {
		shareName := getString(rawMesh, "share", "")
		if shareName == "" {
			continue
		}

		skinName := getString(rawMesh, "skin", defaultName)
		if skinName == "" {
			skinName = defaultName
		}

		shared := armature.Mesh(skinName, "", shareName)
		if shared == nil {
			continue
		}

		c.cacheMeshes[i].Geometry.ShareFrom(&shared.Geometry)
	}

	for _, rawAnimation := range c.objectsIn(raw, "animation") {
		armature.AddAnimation(c.parseAnimation(rawAnimation))
	}

	if value, ok := raw["defaultActions"]; ok {
		for _, action := range c.parseActionData(value, model.ActionPlay, nil, nil) {
			armature.AddAction(action, true)

			if action.Type == model.ActionPlay {
				if animation := armature.Animation(action.Name); animation != nil {
					armature.DefaultAnimation = animation
				}
			}
		}
	}

	if value, ok := raw["actions"]; ok {
		for _, action := range c.parseActionData(value, model.ActionPlay, nil, nil) {
			armature.AddAction(action, false)
		}
	}

	c.rawBones = c.rawBones[:0]
	c.cacheRawMeshes = c.cacheRawMeshes[:0]
	c.cacheMeshes = c.cacheMeshes[:0]
	clear(c.slotChildActions)
	clear(c.weightSlotPose)
	clear(c.weightBonePoses)
	c.armature = nil

	return armature
}

func (c *Compiler) parseBone(raw map[string]any) *model.BoneData {
	var boneType model.BoneType
	if value, ok := raw["type"].(string); ok {
		boneType = model.ParseBoneType(value)
	} else {
		boneType = model.BoneType(getInt(raw, "type", int(model.BoneBone)))
	}

	bone := pool.Borrow[model.BoneData](c.pool)
	bone.Alpha = getFloat(raw, "alpha", 1)
	bone.Name = getString(raw, "name", "")

	if boneType == model.BoneBone {
		scale := c.armature.Scale
		bone.InheritTranslation = getBool(raw, "inheritTranslation", true)
		bone.InheritRotation = getBool(raw, "inheritRotation", true)
		bone.InheritScale = getBool(raw, "inheritScale", true)
		bone.InheritReflection = getBool(raw, "inheritReflection", true)
		bone.Length = getFloat(raw, "length", 0) * scale

		if rawTransform := getObject(raw, "transform"); rawTransform != nil {
			c.parseTransform(rawTransform, &bone.Transform, scale)
		}
		return bone
	}

	bone.Type = model.BoneSurface
	bone.Surface = &model.SurfaceInfo{
		SegmentX: getInt(raw, "segmentX", 0),
		SegmentY: getInt(raw, "segmentY", 0),
	}
	c.parseGeometry(raw, &bone.Surface.Geometry)
	return bone
}

func (c *Compiler) parseIKConstraint(raw map[string]any) model.Constraint {
	boneName := getString(raw, "bone", "")
	bone := c.armature.Bone(boneName)
	if bone == nil {
		c.log.Warn().
			Str("armature", c.armature.Name).
			Str("bone", boneName).
			Msg("ik constraint names a missing bone")
		return nil
	}

	targetName := getString(raw, "target", "")
	target := c.armature.Bone(targetName)
	if target == nil {
		c.log.Warn().
			Str("armature", c.armature.Name).
			Str("bone", targetName).
			Msg("ik constraint names a missing target")
		return nil
	}

	chain := getInt(raw, "chain", 0)
	constraint := pool.Borrow[model.IKConstraintData](c.pool)
	constraint.ScaleEnabled = getBool(raw, "scale", false)
	constraint.BendPositive = getBool(raw, "bendPositive", true)
	constraint.Weight = getFloat(raw, "weight", 1)
	constraint.Name = getString(raw, "name", "")
	constraint.Target = target

	if chain > 0 && bone.ParentBone != nil {
		constraint.Root = bone.ParentBone
		constraint.Bone = bone
	} else {
		constraint.Root = bone
		constraint.Bone = nil
	}

	return constraint
}

func (c *Compiler) parsePathConstraint(raw map[string]any) model.Constraint {
	targetName := getString(raw, "target", "")
	target := c.armature.Slot(targetName)
	if target == nil {
		c.log.Warn().
			Str("armature", c.armature.Name).
			Str("slot", targetName).
			Msg("path constraint names a missing target slot")
		return nil
	}

	defaultSkin := c.armature.DefaultSkin
	if defaultSkin == nil {
		return nil
	}

	displayName := getString(raw, "targetDisplay", target.Name)
	targetDisplay, _ := defaultSkin.Display(target.Name, displayName).(*model.PathDisplay)
	if targetDisplay == nil {
		c.log.Warn().
			Str("armature", c.armature.Name).
			Str("display", displayName).
			Msg("path constraint names a missing path display")
		return nil
	}

	boneNames := c.stringsIn(raw, "bones")
	if len(boneNames) == 0 {
		return nil
	}

	constraint := pool.Borrow[model.PathConstraintData](c.pool)
	constraint.Name = getString(raw, "name", "")
	constraint.PathSlot = target
	constraint.PathDisplay = targetDisplay
	constraint.Target = target.ParentBone
	constraint.PositionMode = model.ParsePositionMode(getString(raw, "positionMode", ""))
	constraint.SpacingMode = model.ParseSpacingMode(getString(raw, "spacingMode", ""))
	constraint.RotateMode = model.ParseRotateMode(getString(raw, "rotateMode", ""))
	constraint.Position = getFloat(raw, "position", 0)
	constraint.Spacing = getFloat(raw, "spacing", 0)
	constraint.RotateOffset = getFloat(raw, "rotateOffset", 0)
	constraint.RotateMix = getFloat(raw, "rotateMix", 1)
	constraint.TranslateMix = getFloat(raw, "translateMix", 1)

	for _, boneName := range boneNames {
		if bone := c.armature.Bone(boneName); bone != nil {
			constraint.AddBone(bone)

			if constraint.Root == nil {
				constraint.Root = bone
			}
		}
	}

	return constraint
}

func (c *Compiler) parseSlot(raw map[string]any, zOrder int) *model.SlotData {
	slot := pool.Borrow[model.SlotData](c.pool)
	slot.DisplayIndex = getInt(raw, "displayIndex", 0)
	slot.ZOrder = zOrder
	slot.ZIndex = getInt(raw, "zIndex", 0)
	slot.Alpha = getFloat(raw, "alpha", 1)
	slot.Name = getString(raw, "name", "")
	slot.ParentBone = c.armature.Bone(getString(raw, "parent", ""))

	if value, ok := raw["blendMode"].(string); ok {
		slot.BlendMode = model.ParseBlendMode(value)
	} else {
		slot.BlendMode = model.BlendMode(getInt(raw, "blendMode", int(model.BlendNormal)))
	}

	if rawColor := getObject(raw, "color"); rawColor != nil {
		parseColorTransform(rawColor, &slot.Color)
	}

	// Child armature actions attach to the armature display the slot's
	// displayIndex points at, once the skin is parsed.
	if value, ok := raw["actions"]; ok {
		c.slotChildActions[slot.Name] = c.parseActionData(value, model.ActionPlay, nil, nil)
	}

	return slot
}

// parseTransform fills a decomposed transform. Newer exports carry
// rotate/skew in degrees; older ones carry the two skew angles skX/skY with
// the rotation riding on skY.
func (c *Compiler) parseTransform(raw map[string]any, transform *geom.Transform, scale float64) {
	transform.X = getFloat(raw, "x", 0) * scale
	transform.Y = getFloat(raw, "y", 0) * scale

	_, hasRotate := raw["rotate"]
	_, hasSkew := raw["skew"]
	_, hasSkewX := raw["skX"]
	_, hasSkewY := raw["skY"]
	switch {
	case hasRotate || hasSkew:
		transform.Rotation = geom.NormalizeRadian(getFloat(raw, "rotate", 0) * geom.DegRad)
		transform.Skew = geom.NormalizeRadian(getFloat(raw, "skew", 0) * geom.DegRad)
	case hasSkewX || hasSkewY:
		transform.Rotation = geom.NormalizeRadian(getFloat(raw, "skY", 0) * geom.DegRad)
		transform.Skew = geom.NormalizeRadian(getFloat(raw, "skX", 0)*geom.DegRad) - transform.Rotation
	}

	transform.ScaleX = getFloat(raw, "scX", 1)
	transform.ScaleY = getFloat(raw, "scY", 1)
}

// parseColorTransform reads the abbreviated channel keys; multipliers are
// stored as percentages.
func parseColorTransform(raw map[string]any, color *geom.ColorTransform) {
	color.AlphaMultiplier = getFloat(raw, "aM", 100) * 0.01
	color.RedMultiplier = getFloat(raw, "rM", 100) * 0.01
	color.GreenMultiplier = getFloat(raw, "gM", 100) * 0.01
	color.BlueMultiplier = getFloat(raw, "bM", 100) * 0.01
	color.AlphaOffset = round(getFloat(raw, "aO", 0))
	color.RedOffset = round(getFloat(raw, "rO", 0))
	color.GreenOffset = round(getFloat(raw, "gO", 0))
	color.BlueOffset = round(getFloat(raw, "bO", 0))
}
