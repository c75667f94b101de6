package dragonbones

import (
	"encoding/json"
	"fmt"

	"github.com/BlizzedRu/dragonbones/geom"
	"github.com/BlizzedRu/dragonbones/model"
	"github.com/BlizzedRu/dragonbones/pool"
)

// ParseTextureAtlas compiles one atlas descriptor document into a flat
// record list. A positive scale overrides the document's own scale; pass 0
// to honor the document.
func (c *Compiler) ParseTextureAtlas(raw any, scale float64) (*model.TextureAtlasData, error) {
	rawData, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("dragonbones: texture atlas: %w", ErrDocumentShape)
	}

	atlas := pool.Borrow[model.TextureAtlasData](c.pool)
	c.parseTextureAtlas(rawData, atlas, scale)

	if err := c.takeErr(); err != nil {
		return nil, err
	}
	return atlas, nil
}

// ParseTextureAtlasBytes decodes JSON and compiles it.
func (c *Compiler) ParseTextureAtlasBytes(data []byte, scale float64) (*model.TextureAtlasData, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dragonbones: decode texture atlas: %w", err)
	}
	return c.ParseTextureAtlas(raw, scale)
}

// NextTextureAtlas compiles the next atlas embedded in the most recent
// skeleton document, nil once the queue is drained. The queue survives
// until it is drained or the next document with embedded atlases replaces
// it.
func (c *Compiler) NextTextureAtlas(scale float64) (*model.TextureAtlasData, error) {
	if len(c.rawTextureAtlases) == 0 {
		return nil, nil
	}

	rawData := c.rawTextureAtlases[c.rawTextureAtlasIndex]
	c.rawTextureAtlasIndex++
	if c.rawTextureAtlasIndex >= len(c.rawTextureAtlases) {
		c.rawTextureAtlases = nil
		c.rawTextureAtlasIndex = 0
	}

	atlas := pool.Borrow[model.TextureAtlasData](c.pool)
	c.parseTextureAtlas(rawData, atlas, scale)

	if err := c.takeErr(); err != nil {
		return nil, err
	}
	return atlas, nil
}

func (c *Compiler) parseTextureAtlas(raw map[string]any, atlas *model.TextureAtlasData, scale float64) {
	atlas.AutoSearch = getBool(raw, "autoSearch", false)
	atlas.Width = getFloat(raw, "width", 0)
	atlas.Height = getFloat(raw, "height", 0)
	atlas.Name = getString(raw, "name", "")
	atlas.ImagePath = getString(raw, "imagePath", "")

	if scale > 0 {
		atlas.Scale = scale
	} else {
		atlas.Scale = getFloat(raw, "scale", atlas.Scale)
	}
	if atlas.Scale == 0 {
		c.log.Warn().Str("atlas", atlas.Name).Msg("texture atlas scale is zero")
		atlas.Scale = 1
	}

	// Regions are stored at authored size; the stored scale divides them
	// back out.
	scale = 1 / atlas.Scale

	for _, rawTexture := range c.objectsIn(raw, "SubTexture") {
		frameWidth := getFloat(rawTexture, "frameWidth", -1)
		frameHeight := getFloat(rawTexture, "frameHeight", -1)

		texture := pool.Borrow[model.TextureData](c.pool)
		texture.Rotated = getBool(rawTexture, "rotated", false)
		texture.Name = getString(rawTexture, "name", "")
		texture.Region = geom.Rectangle{
			X:      getFloat(rawTexture, "x", 0) * scale,
			Y:      getFloat(rawTexture, "y", 0) * scale,
			Width:  getFloat(rawTexture, "width", 0) * scale,
			Height: getFloat(rawTexture, "height", 0) * scale,
		}

		if frameWidth > 0 && frameHeight > 0 {
			texture.Frame = &geom.Rectangle{
				X:      getFloat(rawTexture, "frameX", 0) * scale,
				Y:      getFloat(rawTexture, "frameY", 0) * scale,
				Width:  frameWidth * scale,
				Height: frameHeight * scale,
			}
		}

		atlas.AddTexture(texture)
	}
}
