// Package dragonbones compiles DragonBones skeleton documents, the loosely
// typed JSON the editor exports, into the packed binary tables the runtime
// animates from: bones, slots, skins, meshes, constraints and animation
// timelines flattened into seven typed arrays that cross-reference each
// other by element offset.
//
// A Compiler is reusable but not safe for concurrent use; parallel
// compilation wants one Compiler per goroutine.
package dragonbones

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/BlizzedRu/dragonbones/geom"
	"github.com/BlizzedRu/dragonbones/model"
	"github.com/BlizzedRu/dragonbones/pool"
	"github.com/rs/zerolog"
)

// dataVersions is the acceptance set for the version gate. Documents
// published before 4.0 used a different layout this compiler does not read.
var dataVersions = []string{"4.0", "4.5", "5.0", "5.5", "5.6"}

func supportedVersion(version string) bool {
	return slices.Contains(dataVersions, version)
}

// defaultName is what unnamed skins, animations and skin references resolve
// to.
const defaultName = "default"

type Options struct {
	// Logger receives compile diagnostics. Nil discards them.
	Logger *zerolog.Logger
	// Pool recycles model records across documents. Nil gives the compiler
	// a private pool.
	Pool *pool.Pool
}

// Compiler turns decoded documents into model.DragonBonesData. It owns the
// staging arrays the frame encoders append to; packBinary snapshots them
// into the document's contiguous buffer at the end of a parse.
type Compiler struct {
	log  zerolog.Logger
	pool *pool.Pool

	// err is sticky: the first shape error survives to the end of the
	// parse while the remaining walk runs on safe defaults.
	err error

	data      *model.DragonBonesData
	armature  *model.ArmatureData
	bone      *model.BoneData
	slot      *model.SlotData
	skin      *model.SkinData
	mesh      *model.MeshDisplay
	geometry  *model.GeometryData
	animation *model.AnimationData
	timeline  *model.TimelineData

	intArray        []int16
	floatArray      []float32
	frameIntArray   []int16
	frameFloatArray []float32
	frameArray      []int16
	timelineArray   []uint16
	colorArray      []int16

	// defaultColorOffset points at the shared all-default color record in
	// colorArray, -1 until the first color frame without a color needs it.
	defaultColorOffset int

	// Rotation unwinding state threaded between consecutive rotate frames
	// of one timeline.
	prevClockwise float64
	prevRotation  float64

	// Value layout of the frame encoder currently running, set per
	// timeline by parseTimeline and the generic timeline dispatch.
	frameValueType    frameValueType
	frameDefaultValue float64
	frameValueScale   float64

	helpSamples []float64

	// Per-armature caches, cleared when the armature finishes.
	rawBones         []*model.BoneData
	cacheRawMeshes   []map[string]any
	cacheMeshes      []*model.MeshDisplay
	slotChildActions map[string][]*model.ActionData
	weightSlotPose   map[string][]float64
	weightBonePoses  map[string][]float64

	// Per-animation action frames merged from every timeline they occur
	// on, ordered by start tick.
	actionFrames []*actionFrame

	// Atlases embedded in a skeleton document, handed out by
	// NextTextureAtlas.
	rawTextureAtlases    []map[string]any
	rawTextureAtlasIndex int
}

func New(options Options) *Compiler {
	c := &Compiler{
		log:                zerolog.Nop(),
		pool:               options.Pool,
		defaultColorOffset: -1,
		slotChildActions:   make(map[string][]*model.ActionData),
		weightSlotPose:     make(map[string][]float64),
		weightBonePoses:    make(map[string][]float64),
	}
	if options.Logger != nil {
		c.log = *options.Logger
	}
	if c.pool == nil {
		c.pool = pool.New()
	}
	return c
}

// Parse compiles one decoded skeleton document. scale multiplies every
// length in the document; pass 1 to keep the authored size.
//
// A document whose version and compatibleVersion are both outside the
// supported set yields a nil result and a nil error, leaving the compiler
// untouched; callers can try another format. Structurally broken documents
// return an error wrapping ErrDocumentShape or ErrArrayShape.
func (c *Compiler) Parse(raw any, scale float64) (*model.DragonBonesData, error) {
	rawData, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("dragonbones: %w", ErrDocumentShape)
	}

	version := getString(rawData, "version", "")
	compatible := getString(rawData, "compatibleVersion", "")
	if !supportedVersion(version) && !supportedVersion(compatible) {
		c.log.Warn().
			Str("version", version).
			Str("compatibleVersion", compatible).
			Msg("unsupported data version")
		return nil, nil
	}

	data := pool.Borrow[model.DragonBonesData](c.pool)
	data.Version = version
	data.Name = getString(rawData, "name", "")
	data.FrameRate = getInt(rawData, "frameRate", 24)
	if data.FrameRate == 0 {
		data.FrameRate = 24
	}

	if _, ok := rawData["armature"]; ok {
		c.data = data
		c.resetStaging()

		for _, rawArmature := range c.objectsIn(rawData, "armature") {
			data.AddArmature(c.parseArmature(rawArmature, scale))
		}

		if len(data.Binary) == 0 {
			c.packBinary()
		}

		if _, ok := rawData["stage"]; ok {
			data.Stage = data.Armature(getString(rawData, "stage", ""))
		} else if len(data.ArmatureNames) > 0 {
			data.Stage = data.Armature(data.ArmatureNames[0])
		}

		c.data = nil
	}

	if _, ok := rawData["textureAtlas"]; ok {
		c.rawTextureAtlases = c.objectsIn(rawData, "textureAtlas")
		c.rawTextureAtlasIndex = 0
	}

	if err := c.takeErr(); err != nil {
		return nil, err
	}
	return data, nil
}

// ParseBytes decodes JSON and compiles it.
func (c *Compiler) ParseBytes(data []byte, scale float64) (*model.DragonBonesData, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dragonbones: decode document: %w", err)
	}
	return c.Parse(raw, scale)
}

func (c *Compiler) resetStaging() {
	c.intArray = c.intArray[:0]
	c.floatArray = c.floatArray[:0]
	c.frameIntArray = c.frameIntArray[:0]
	c.frameFloatArray = c.frameFloatArray[:0]
	c.frameArray = c.frameArray[:0]
	c.timelineArray = c.timelineArray[:0]
	c.colorArray = c.colorArray[:0]
	c.defaultColorOffset = -1
}

func (c *Compiler) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Compiler) failShape(context string) {
	c.fail(fmt.Errorf("dragonbones: %s: %w", context, ErrArrayShape))
}

func (c *Compiler) takeErr() error {
	err := c.err
	c.err = nil
	return err
}

// objectsIn returns the record list under key, nil when the key is absent.
// Anything else under the key is a shape error.
func (c *Compiler) objectsIn(raw map[string]any, key string) []map[string]any {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		c.failShape(key)
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			c.failShape(key)
			return nil
		}
		out = append(out, obj)
	}
	return out
}

// numbersIn returns the numeric array under key, nil when absent.
func (c *Compiler) numbersIn(raw map[string]any, key string) []float64 {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	list, err := numbers(value, key)
	if err != nil {
		c.fail(err)
		return nil
	}
	return list
}

// intsIn is numbersIn truncated to ints, for index and count arrays.
func (c *Compiler) intsIn(raw map[string]any, key string) []int {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		c.failShape(key)
		return nil
	}
	out := make([]int, len(list))
	for i, item := range list {
		f, ok := item.(float64)
		if !ok {
			c.failShape(key)
			return nil
		}
		out[i] = int(f)
	}
	return out
}

func (c *Compiler) stringsIn(raw map[string]any, key string) []string {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		c.failShape(key)
		return nil
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			c.failShape(key)
			return nil
		}
		out[i] = s
	}
	return out
}

// samples borrows the shared easing sample buffer, grown as needed.
func (c *Compiler) samples(n int) []float64 {
	if cap(c.helpSamples) < n {
		c.helpSamples = make([]float64, n)
	}
	return c.helpSamples[:n]
}

// poseMatrix reads the six a,b,c,d,tx,ty values of a bind-pose matrix
// starting at offset.
func poseMatrix(pose []float64, offset int) geom.Matrix {
	return geom.Matrix{
		A:  pose[offset],
		B:  pose[offset+1],
		C:  pose[offset+2],
		D:  pose[offset+3],
		TX: pose[offset+4],
		TY: pose[offset+5],
	}
}
