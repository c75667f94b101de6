package dragonbones

import (
	"github.com/BlizzedRu/dragonbones/model"
	"github.com/BlizzedRu/dragonbones/pool"
)

func (c *Compiler) parseSkin(raw map[string]any) *model.SkinData {
	skin := pool.Borrow[model.SkinData](c.pool)
	skin.Name = getString(raw, "name", defaultName)
	if skin.Name == "" {
		skin.Name = defaultName
	}

	if _, ok := raw["slot"]; ok {
		c.skin = skin

		for _, rawSlot := range c.objectsIn(raw, "slot") {
			slotName := getString(rawSlot, "name", "")
			slot := c.armature.Slot(slotName)
			if slot == nil {
				continue
			}
			c.slot = slot

			if value, ok := rawSlot["display"]; ok {
				list, ok := value.([]any)
				if !ok {
					c.failShape("display")
				}
				for _, rawDisplay := range list {
					// Null entries stay: display indices are
					// positional.
					if obj, ok := rawDisplay.(map[string]any); ok {
						skin.AddDisplay(slotName, c.parseDisplay(obj))
					} else {
						skin.AddDisplay(slotName, nil)
					}
				}
			}

			c.slot = nil
		}

		c.skin = nil
	}

	return skin
}

func (c *Compiler) parseDisplay(raw map[string]any) model.Display {
	name := getString(raw, "name", "")
	path := getString(raw, "path", "")
	displayType := model.DisplayImage
	if value, ok := raw["type"].(string); ok {
		displayType = model.ParseDisplayType(value)
	} else {
		displayType = model.DisplayType(getInt(raw, "type", int(displayType)))
	}

	var display model.Display

	switch displayType {
	case model.DisplayImage:
		image := pool.Borrow[model.ImageDisplay](c.pool)
		image.Name = name
		image.Path = pathOrName(path, name)
		c.parsePivot(raw, image)
		display = image

	case model.DisplayArmature:
		armatureDisplay := pool.Borrow[model.ArmatureDisplay](c.pool)
		armatureDisplay.Name = name
		armatureDisplay.Path = pathOrName(path, name)
		armatureDisplay.InheritAnimation = true

		if value, ok := raw["actions"]; ok {
			for _, action := range c.parseActionData(value, model.ActionPlay, nil, nil) {
				armatureDisplay.AddAction(action)
			}
		} else if actions, ok := c.slotChildActions[c.slot.Name]; ok {
			// The slot's child actions belong to the display its
			// displayIndex selects, which is about to be appended.
			if c.slot.DisplayIndex == len(c.skin.Displays(c.slot.Name)) {
				for _, action := range actions {
					armatureDisplay.AddAction(action)
				}
				delete(c.slotChildActions, c.slot.Name)
			}
		}
		display = armatureDisplay

	case model.DisplayMesh:
		mesh := pool.Borrow[model.MeshDisplay](c.pool)
		mesh.Geometry.InheritDeform = getBool(raw, "inheritDeform", true)
		mesh.Name = name
		mesh.Path = pathOrName(path, name)

		if _, ok := raw["share"]; ok {
			// The donor mesh may not exist yet; resolved after the
			// armature's skins finish.
			mesh.Geometry.Data = c.data
			c.cacheRawMeshes = append(c.cacheRawMeshes, raw)
			c.cacheMeshes = append(c.cacheMeshes, mesh)
		} else {
			c.parseMesh(raw, mesh)
		}
		display = mesh

	case model.DisplayBoundingBox:
		if box := c.parseBoundingBox(raw); box != nil {
			boundingBox := pool.Borrow[model.BoundingBoxDisplay](c.pool)
			boundingBox.Name = name
			boundingBox.Path = pathOrName(path, name)
			boundingBox.Box = box
			display = boundingBox
		}

	case model.DisplayPath:
		pathDisplay := pool.Borrow[model.PathDisplay](c.pool)
		pathDisplay.Closed = getBool(raw, "closed", false)
		pathDisplay.ConstantSpeed = getBool(raw, "constantSpeed", false)
		pathDisplay.Name = name
		pathDisplay.Path = pathOrName(path, name)
		pathDisplay.CurveLengths = append(pathDisplay.CurveLengths[:0], c.numbersIn(raw, "lengths")...)
		c.parseGeometry(raw, &pathDisplay.Geometry)
		display = pathDisplay
	}

	if display != nil {
		if rawTransform := getObject(raw, "transform"); rawTransform != nil {
			c.parseTransform(rawTransform, &display.Base().Transform, c.armature.Scale)
		}
	}

	return display
}

func pathOrName(path, name string) string {
	if path != "" {
		return path
	}
	return name
}

// parsePivot defaults to the texture center when the document has no pivot.
func (c *Compiler) parsePivot(raw map[string]any, display *model.ImageDisplay) {
	if rawPivot := getObject(raw, "pivot"); rawPivot != nil {
		display.Pivot.X = getFloat(rawPivot, "x", 0)
		display.Pivot.Y = getFloat(rawPivot, "y", 0)
	} else {
		display.Pivot.X = 0.5
		display.Pivot.Y = 0.5
	}
}

func (c *Compiler) parseMesh(raw map[string]any, mesh *model.MeshDisplay) {
	c.parseGeometry(raw, &mesh.Geometry)

	if _, ok := raw["weights"]; ok {
		// Deform frames re-project against the same bind poses later.
		meshName := c.skin.Name + "_" + c.slot.Name + "_" + mesh.Name
		c.weightSlotPose[meshName] = c.numbersIn(raw, "slotPose")
		c.weightBonePoses[meshName] = c.numbersIn(raw, "bonePose")
	}
}

func (c *Compiler) parseBoundingBox(raw map[string]any) model.BoundingBox {
	var box model.BoundingBox
	boxType := model.BoundingBoxRectangle
	if value, ok := raw["subType"].(string); ok {
		boxType = model.ParseBoundingBoxType(value)
	} else {
		boxType = model.BoundingBoxType(getInt(raw, "subType", int(boxType)))
	}

	switch boxType {
	case model.BoundingBoxRectangle:
		box = pool.Borrow[model.RectangleBoundingBoxData](c.pool)
	case model.BoundingBoxEllipse:
		box = pool.Borrow[model.EllipseBoundingBoxData](c.pool)
	case model.BoundingBoxPolygon:
		box = c.parsePolygonBoundingBox(raw)
	default:
		return nil
	}

	base := box.Base()
	base.Color = getInt(raw, "color", 0x000000)
	if base.Type == model.BoundingBoxRectangle || base.Type == model.BoundingBoxEllipse {
		base.Width = getFloat(raw, "width", 0)
		base.Height = getFloat(raw, "height", 0)
	}

	return box
}

func (c *Compiler) parsePolygonBoundingBox(raw map[string]any) *model.PolygonBoundingBoxData {
	box := pool.Borrow[model.PolygonBoundingBoxData](c.pool)

	rawVertices := c.numbersIn(raw, "vertices")
	if rawVertices == nil {
		c.log.Warn().Msg("polygon bounding box has no vertices")
		return box
	}

	if len(rawVertices)%2 != 0 {
		rawVertices = rawVertices[:len(rawVertices)-1]
	}

	scale := c.armature.Scale
	box.Vertices = append(box.Vertices[:0], rawVertices...)

	for i := 0; i < len(box.Vertices); i += 2 {
		x := box.Vertices[i] * scale
		y := box.Vertices[i+1] * scale
		box.Vertices[i] = x
		box.Vertices[i+1] = y

		if i == 0 {
			box.X = x
			box.Y = y
			box.Width = x
			box.Height = y
			continue
		}
		if x < box.X {
			box.X = x
		} else if x > box.Width {
			box.Width = x
		}
		if y < box.Y {
			box.Y = y
		} else if y > box.Height {
			box.Height = y
		}
	}

	return box
}
