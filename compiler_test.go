package dragonbones

import (
	"errors"
	"math"
	"testing"

	"github.com/BlizzedRu/dragonbones/geom"
	"github.com/BlizzedRu/dragonbones/model"
)

// skeletonDoc wraps one armature in a minimal document envelope.
func skeletonDoc(armature map[string]any) map[string]any {
	return map[string]any{
		"version":   "5.5",
		"name":      "test",
		"frameRate": 30.0,
		"armature":  []any{armature},
	}
}

func compileDoc(t *testing.T, doc map[string]any, scale float64) *model.DragonBonesData {
	t.Helper()
	data, err := New(Options{}).Parse(doc, scale)
	if err != nil {
		t.Fatalf("Parse: unexpected error %v", err)
	}
	if data == nil {
		t.Fatal("Parse: have nil data, want a document")
	}
	return data
}

func TestParseUnsupportedVersion(t *testing.T) {
	c := New(Options{})

	data, err := c.Parse(map[string]any{"version": "3.8"}, 1)
	if err != nil {
		t.Fatalf("Parse 3.8: unexpected error %v", err)
	}
	if data != nil {
		t.Fatalf("Parse 3.8: have %v, want nil", data)
	}

	// An unknown version with a supported compatibleVersion still parses.
	data, err = c.Parse(map[string]any{"version": "9.9", "compatibleVersion": "5.5"}, 1)
	if err != nil {
		t.Fatalf("Parse compatible: unexpected error %v", err)
	}
	if data == nil {
		t.Fatal("Parse compatible: have nil, want a document")
	}
	if data.Version != "9.9" {
		t.Fatalf("Version: have %q, want %q", data.Version, "9.9")
	}
}

func TestParseNonObjectDocument(t *testing.T) {
	_, err := New(Options{}).Parse([]any{1.0, 2.0}, 1)
	if !errors.Is(err, ErrDocumentShape) {
		t.Fatalf("Parse on an array: have %v, want ErrDocumentShape", err)
	}
}

func TestParseSkeleton(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{
			map[string]any{"name": "root"},
			map[string]any{
				"name": "arm", "parent": "root",
				"transform": map[string]any{"x": 10.0, "y": 5.0, "rotate": 90.0},
			},
		},
		"slot": []any{
			map[string]any{"name": "front", "parent": "arm"},
		},
		"skin": []any{
			map[string]any{
				"slot": []any{
					map[string]any{
						"name":    "front",
						"display": []any{map[string]any{"name": "front-img"}},
					},
				},
			},
		},
		"animation": []any{
			map[string]any{
				"name":     "walk",
				"duration": 8.0,
				"bone": []any{
					map[string]any{
						"name": "arm",
						"translateFrame": []any{
							map[string]any{"duration": 4.0},
							map[string]any{"x": 20.0},
						},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	if data.Name != "test" || data.FrameRate != 30 {
		t.Fatalf("document head: have %q %d, want %q 30", data.Name, data.FrameRate, "test")
	}
	armature := data.Armature("body")
	if armature == nil {
		t.Fatal("Armature(body): have nil")
	}
	if data.Stage != armature {
		t.Fatal("Stage: want the only armature")
	}

	arm := armature.Bone("arm")
	if arm == nil || arm.ParentBone != armature.Bone("root") {
		t.Fatal("bone arm: want parent root")
	}
	if arm.Transform.X != 10 || arm.Transform.Y != 5 {
		t.Fatalf("bone arm transform: have (%v, %v), want (10, 5)", arm.Transform.X, arm.Transform.Y)
	}
	if math.Abs(arm.Transform.Rotation-math.Pi/2) > 1e-9 {
		t.Fatalf("bone arm rotation: have %v, want %v", arm.Transform.Rotation, math.Pi/2)
	}

	slot := armature.Slot("front")
	if slot == nil || slot.ParentBone != arm {
		t.Fatal("slot front: want parent bone arm")
	}
	if armature.DefaultSkin == nil {
		t.Fatal("DefaultSkin: have nil")
	}
	if _, ok := armature.DefaultSkin.Display("front", "front-img").(*model.ImageDisplay); !ok {
		t.Fatal("display front-img: want an image display")
	}

	anim := armature.Animation("walk")
	if anim == nil {
		t.Fatal("Animation(walk): have nil")
	}
	if anim.FrameCount != 8 || anim.PlayTimes != 1 {
		t.Fatalf("animation head: have %d frames x%d, want 8 frames x1", anim.FrameCount, anim.PlayTimes)
	}
	if math.Abs(anim.Duration-8.0/30.0) > 1e-9 {
		t.Fatalf("Duration: have %v, want %v", anim.Duration, 8.0/30.0)
	}
	if armature.DefaultAnimation != anim {
		t.Fatal("DefaultAnimation: want walk")
	}

	timelines := anim.BoneTimelines("arm")
	if len(timelines) != 1 {
		t.Fatalf("bone timelines: have %d, want 1", len(timelines))
	}
	tl := timelines[0]
	if tl.Type != model.TimelineBoneTranslate {
		t.Fatalf("timeline type: have %v, want %v", tl.Type, model.TimelineBoneTranslate)
	}

	// Two keyframes over eight ticks: one frame index per tick plus the
	// closing tick.
	if tl.FrameIndicesOffset != 0 || len(data.FrameIndices) != 9 {
		t.Fatalf("frame indices: have offset %d len %d, want 0 len 9", tl.FrameIndicesOffset, len(data.FrameIndices))
	}
	wantIndices := []int{0, 0, 0, 0, 1, 1, 1, 1, 1}
	for i, want := range wantIndices {
		if data.FrameIndices[i] != want {
			t.Fatalf("frame index %d: have %d, want %d", i, data.FrameIndices[i], want)
		}
	}

	wantTimeline := []uint16{100, 0, 2, 2, 0, 0, 2}
	if len(data.TimelineArray) != 8 {
		t.Fatalf("timeline array: have len %d, want 8 (padded)", len(data.TimelineArray))
	}
	for i, want := range wantTimeline {
		if data.TimelineArray[i] != want {
			t.Fatalf("timeline array[%d]: have %d, want %d", i, data.TimelineArray[i], want)
		}
	}

	wantFrames := []int16{0, 0, 4, 0}
	if len(data.FrameArray) != len(wantFrames) {
		t.Fatalf("frame array: have len %d, want %d", len(data.FrameArray), len(wantFrames))
	}
	for i, want := range wantFrames {
		if data.FrameArray[i] != want {
			t.Fatalf("frame array[%d]: have %d, want %d", i, data.FrameArray[i], want)
		}
	}

	wantFloats := []float32{0, 0, 20, 0}
	if len(data.FrameFloatArray) != len(wantFloats) {
		t.Fatalf("frame float array: have len %d, want %d", len(data.FrameFloatArray), len(wantFloats))
	}
	for i, want := range wantFloats {
		if data.FrameFloatArray[i] != want {
			t.Fatalf("frame float array[%d]: have %v, want %v", i, data.FrameFloatArray[i], want)
		}
	}

	// The buffer holds the seven sections back to back, 16-bit ones padded
	// to an even element count.
	for _, section := range []struct {
		name string
		len  int
	}{
		{"intArray", len(data.IntArray)},
		{"frameIntArray", len(data.FrameIntArray)},
		{"frameArray", len(data.FrameArray)},
		{"timelineArray", len(data.TimelineArray)},
		{"colorArray", len(data.ColorArray)},
	} {
		if section.len%2 != 0 {
			t.Fatalf("%s: have odd length %d", section.name, section.len)
		}
	}
	wantBytes := len(data.IntArray)*2 + len(data.FloatArray)*4 +
		len(data.FrameIntArray)*2 + len(data.FrameFloatArray)*4 +
		len(data.FrameArray)*2 + len(data.TimelineArray)*2 + len(data.ColorArray)*2
	if len(data.Binary) != wantBytes {
		t.Fatalf("binary: have %d bytes, want %d", len(data.Binary), wantBytes)
	}
}

func TestBoneParentLinkage(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{
			// Children may be declared before their parents.
			map[string]any{"name": "hand", "parent": "arm"},
			map[string]any{"name": "arm"},
			map[string]any{"name": "ghost", "parent": "nowhere"},
		},
	})
	data := compileDoc(t, doc, 1)

	armature := data.Armature("body")
	hand := armature.Bone("hand")
	if hand == nil || hand.ParentBone != armature.Bone("arm") {
		t.Fatal("bone hand: want parent arm")
	}
	ghost := armature.Bone("ghost")
	if ghost == nil || ghost.ParentBone != nil {
		t.Fatal("bone ghost: want no parent after a dangling reference")
	}
	var handAt, armAt int
	for i, bone := range armature.SortedBones {
		switch bone.Name {
		case "hand":
			handAt = i
		case "arm":
			armAt = i
		}
	}
	if armAt > handAt {
		t.Fatalf("sort: arm at %d after hand at %d", armAt, handAt)
	}
}

func TestFrameIndicesLookup(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "root"}},
		"animation": []any{
			map[string]any{
				"name":     "walk",
				"duration": 10.0,
				"bone": []any{
					map[string]any{
						"name": "root",
						"translateFrame": []any{
							map[string]any{"duration": 4.0},
							map[string]any{"duration": 3.0, "x": 5.0},
							map[string]any{"x": 9.0},
						},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	timelines := data.Armature("body").Animation("walk").BoneTimelines("root")
	if len(timelines) != 1 {
		t.Fatalf("bone timelines: have %d, want 1", len(timelines))
	}
	tl := timelines[0]

	// Keyframes govern ticks [0,4), [4,7) and [7,10]; every tick resolves
	// to the keyframe whose span covers it.
	if tl.FrameIndicesOffset != 0 || len(data.FrameIndices) != 11 {
		t.Fatalf("frame indices: have offset %d len %d, want 0 len 11", tl.FrameIndicesOffset, len(data.FrameIndices))
	}
	wantIndices := []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2, 2}
	for i, want := range wantIndices {
		if data.FrameIndices[i] != want {
			t.Fatalf("frame index %d: have %d, want %d", i, data.FrameIndices[i], want)
		}
	}
}

func TestIKConstraint(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{
			map[string]any{"name": "root"},
			map[string]any{"name": "arm", "parent": "root"},
			map[string]any{"name": "sight"},
		},
		"ik": []any{
			map[string]any{"name": "aim", "bone": "arm", "target": "sight", "chain": 1.0},
			map[string]any{"name": "bad", "bone": "arm", "target": "nowhere"},
		},
		"animation": []any{
			map[string]any{
				"name":     "aiming",
				"duration": 4.0,
				"ik": []any{
					map[string]any{
						"name": "aim",
						"frame": []any{
							map[string]any{"duration": 2.0, "weight": 0.5},
							map[string]any{"bendPositive": false},
						},
					},
					map[string]any{"name": "bad"},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	armature := data.Armature("body")
	constraint := armature.Constraint("aim")
	if constraint == nil {
		t.Fatal("Constraint(aim): have nil")
	}
	ik, ok := constraint.(*model.IKConstraintData)
	if !ok {
		t.Fatalf("Constraint(aim): have %T, want *model.IKConstraintData", constraint)
	}
	// chain > 0 reaches through the bone's parent.
	if ik.Root != armature.Bone("root") || ik.Bone != armature.Bone("arm") || ik.Target != armature.Bone("sight") {
		t.Fatalf("ik chain: have root=%v bone=%v target=%v", ik.Root, ik.Bone, ik.Target)
	}
	if !ik.BendPositive || ik.ScaleEnabled || ik.Weight != 1 {
		t.Fatalf("ik defaults: have bend=%v scale=%v weight=%v", ik.BendPositive, ik.ScaleEnabled, ik.Weight)
	}
	if armature.Constraint("bad") != nil {
		t.Fatal("Constraint(bad): want nil for a dangling target")
	}

	anim := armature.Animation("aiming")
	if got := anim.ConstraintTimelines("bad"); len(got) != 0 {
		t.Fatalf("timelines for a skipped constraint: have %d, want 0", len(got))
	}
	timelines := anim.ConstraintTimelines("aim")
	if len(timelines) != 1 {
		t.Fatalf("constraint timelines: have %d, want 1", len(timelines))
	}
	if timelines[0].Type != model.TimelineIKConstraint {
		t.Fatalf("timeline type: have %v, want %v", timelines[0].Type, model.TimelineIKConstraint)
	}

	// Each keyframe stores its bend direction and fixed-point weight.
	wantInts := []int16{1, 50, 0, 100}
	if len(data.FrameIntArray) != len(wantInts) {
		t.Fatalf("frameIntArray: have len %d, want %d", len(data.FrameIntArray), len(wantInts))
	}
	for i, want := range wantInts {
		if data.FrameIntArray[i] != want {
			t.Fatalf("frameIntArray[%d]: have %d, want %d", i, data.FrameIntArray[i], want)
		}
	}
}

func TestTimelineListAnimation(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{
			map[string]any{"name": "root"},
			map[string]any{"name": "arm", "parent": "root"},
			map[string]any{"name": "sight"},
		},
		"slot": []any{map[string]any{"name": "s", "parent": "root"}},
		"ik": []any{
			map[string]any{"name": "aim", "bone": "arm", "target": "sight", "chain": 1.0},
		},
		"animation": []any{
			map[string]any{
				"name":     "drift",
				"duration": 3.0,
				"timeline": []any{
					map[string]any{
						"type": 11.0,
						"name": "root",
						"frame": []any{
							map[string]any{"duration": 2.0},
							map[string]any{"x": 5.0, "y": -3.0},
						},
					},
					map[string]any{
						"type":  13.0,
						"name":  "root",
						"frame": []any{map[string]any{}},
					},
					map[string]any{
						"type":  30.0,
						"name":  "aim",
						"frame": []any{map[string]any{}},
					},
					map[string]any{
						"type":  24.0,
						"name":  "s",
						"frame": []any{map[string]any{}},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	anim := data.Armature("body").Animation("drift")
	boneTimelines := anim.BoneTimelines("root")
	if len(boneTimelines) != 2 {
		t.Fatalf("bone timelines: have %d, want 2", len(boneTimelines))
	}
	if boneTimelines[0].Type != model.TimelineBoneTranslate || boneTimelines[1].Type != model.TimelineBoneScale {
		t.Fatalf("bone timeline types: have %v %v", boneTimelines[0].Type, boneTimelines[1].Type)
	}
	if got := anim.ConstraintTimelines("aim"); len(got) != 1 || got[0].Type != model.TimelineIKConstraint {
		t.Fatalf("constraint timelines: have %d, want one ik timeline", len(got))
	}
	if got := anim.SlotTimelines("s"); len(got) != 1 || got[0].Type != model.TimelineSlotAlpha {
		t.Fatalf("slot timelines: have %d, want one alpha timeline", len(got))
	}

	// An omitted value means no change: zero for translate, one for scale.
	wantFloats := []float32{0, 0, 5, -3, 1, 1}
	if len(data.FrameFloatArray) != len(wantFloats) {
		t.Fatalf("frameFloatArray: have len %d, want %d", len(data.FrameFloatArray), len(wantFloats))
	}
	for i, want := range wantFloats {
		if data.FrameFloatArray[i] != want {
			t.Fatalf("frameFloatArray[%d]: have %v, want %v", i, data.FrameFloatArray[i], want)
		}
	}

	// The ik frame defaults to full weight, the alpha frame to opaque.
	wantInts := []int16{100, 100, 100, 0}
	if len(data.FrameIntArray) != len(wantInts) {
		t.Fatalf("frameIntArray: have len %d, want %d", len(data.FrameIntArray), len(wantInts))
	}
	for i, want := range wantInts {
		if data.FrameIntArray[i] != want {
			t.Fatalf("frameIntArray[%d]: have %d, want %d", i, data.FrameIntArray[i], want)
		}
	}
}

func TestArmatureScaleAppliesToPoseOnly(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{
			map[string]any{
				"name":      "arm",
				"transform": map[string]any{"x": 10.0, "y": 5.0},
			},
		},
		"animation": []any{
			map[string]any{
				"name":     "walk",
				"duration": 2.0,
				"bone": []any{
					map[string]any{
						"name": "arm",
						"translateFrame": []any{
							map[string]any{"duration": 2.0, "x": 20.0},
						},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 2)

	armature := data.Armature("body")
	if armature.Scale != 2 {
		t.Fatalf("armature scale: have %v, want 2", armature.Scale)
	}
	arm := armature.Bone("arm")
	if arm.Transform.X != 20 || arm.Transform.Y != 10 {
		t.Fatalf("bone transform: have (%v, %v), want (20, 10)", arm.Transform.X, arm.Transform.Y)
	}
	// Timeline deltas stay in document units.
	if data.FrameFloatArray[0] != 20 {
		t.Fatalf("translate frame x: have %v, want 20", data.FrameFloatArray[0])
	}
}

func TestRotationUnwinding(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "b"}},
		"animation": []any{
			map[string]any{
				"name":     "turn",
				"duration": 3.0,
				"bone": []any{
					map[string]any{
						"name": "b",
						"rotateFrame": []any{
							map[string]any{"duration": 1.0, "rotate": 170.0},
							map[string]any{"duration": 1.0, "rotate": -170.0, "clockwise": 1.0},
							map[string]any{"rotate": 170.0},
						},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	// Rotate frames store [rotation, skew] pairs. Crossing 180 degrees must
	// continue the same winding instead of snapping to the signed angle,
	// and a requested extra turn adds a full revolution.
	got := []float64{
		float64(data.FrameFloatArray[0]),
		float64(data.FrameFloatArray[2]),
		float64(data.FrameFloatArray[4]),
	}
	want := []float64{
		170 * geom.DegRad,
		190 * geom.DegRad,
		530 * geom.DegRad,
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-4 {
			t.Fatalf("rotation %d: have %v, want %v", i, got[i], want[i])
		}
	}
	if !(got[0] < got[1] && got[1] < got[2]) {
		t.Fatalf("rotations must increase: have %v", got)
	}
}

func zOrderDoc(pairs []any) map[string]any {
	return skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "root"}},
		"slot": []any{
			map[string]any{"name": "s0", "parent": "root"},
			map[string]any{"name": "s1", "parent": "root"},
			map[string]any{"name": "s2", "parent": "root"},
			map[string]any{"name": "s3", "parent": "root"},
			map[string]any{"name": "s4", "parent": "root"},
		},
		"animation": []any{
			map[string]any{
				"name":     "sort",
				"duration": 2.0,
				"zOrder": map[string]any{
					"frame": []any{map[string]any{"zOrder": pairs}},
				},
			},
		},
	})
}

func TestZOrderFrame(t *testing.T) {
	// Slot 1 moves forward two positions; the rest keep their relative
	// order around it.
	data := compileDoc(t, zOrderDoc([]any{1.0, 2.0}), 1)

	anim := data.Armature("body").Animation("sort")
	if anim.ZOrderTimeline == nil {
		t.Fatal("ZOrderTimeline: have nil")
	}
	if anim.ZOrderTimeline.FrameIndicesOffset != -1 {
		t.Fatalf("single keyframe: have indices offset %d, want -1", anim.ZOrderTimeline.FrameIndicesOffset)
	}

	want := []int16{0, 5, 0, 2, 3, 1, 4}
	for i, w := range want {
		if data.FrameArray[i] != w {
			t.Fatalf("frame array[%d]: have %d, want %d", i, data.FrameArray[i], w)
		}
	}
}

func TestZOrderFrameRejectsBadPairs(t *testing.T) {
	for _, pairs := range [][]any{
		{1.0},                     // dangling offset
		{4.0, -2.0, 1.0, 1.0},     // second pair walks backwards
		{0.0, 9.0},                // target outside the slot range
		{0.0, 1.0, 1.0, 1.0, 2.0, 1.0, 3.0, 1.0, 4.0, 1.0, 4.0, 0.0}, // more pairs than slots
	} {
		_, err := New(Options{}).Parse(zOrderDoc(pairs), 1)
		if !errors.Is(err, ErrArrayShape) {
			t.Fatalf("pairs %v: have %v, want ErrArrayShape", pairs, err)
		}
	}
}

func TestActionFramesMerge(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "root"}},
		"animation": []any{
			map[string]any{
				"name":     "acts",
				"duration": 4.0,
				"frame": []any{
					map[string]any{"duration": 2.0, "event": "hit"},
					map[string]any{"sound": "clap"},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	armature := data.Armature("body")
	if len(armature.Actions) != 2 {
		t.Fatalf("actions: have %d, want 2", len(armature.Actions))
	}
	if armature.Actions[0].Type != model.ActionFrame || armature.Actions[0].Name != "hit" {
		t.Fatalf("action 0: have %v %q, want frame event %q", armature.Actions[0].Type, armature.Actions[0].Name, "hit")
	}
	if armature.Actions[1].Type != model.ActionSound || armature.Actions[1].Name != "clap" {
		t.Fatalf("action 1: have %v %q, want sound %q", armature.Actions[1].Type, armature.Actions[1].Name, "clap")
	}

	anim := armature.Animation("acts")
	if anim.ActionTimeline == nil {
		t.Fatal("ActionTimeline: have nil")
	}
	// Each merged frame stores [tick, count, indices...].
	want := []int16{0, 1, 0, 2, 1, 1}
	for i, w := range want {
		if data.FrameArray[i] != w {
			t.Fatalf("frame array[%d]: have %d, want %d", i, data.FrameArray[i], w)
		}
	}
}

func TestSlotColorFramesShareDefaultRecord(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "root"}},
		"slot": []any{map[string]any{"name": "front", "parent": "root"}},
		"animation": []any{
			map[string]any{
				"name":     "blink",
				"duration": 4.0,
				"slot": []any{
					map[string]any{
						"name": "front",
						"colorFrame": []any{
							map[string]any{"duration": 2.0},
							map[string]any{},
						},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	anim := data.Armature("body").Animation("blink")
	timelines := anim.SlotTimelines("front")
	if len(timelines) != 1 || timelines[0].Type != model.TimelineSlotColor {
		t.Fatalf("slot timelines: have %d, want one color timeline", len(timelines))
	}

	// Both frames carry no color, so they point at one shared all-default
	// record.
	wantColors := []int16{100, 100, 100, 100, 0, 0, 0, 0}
	if len(data.ColorArray) != len(wantColors) {
		t.Fatalf("color array: have len %d, want %d", len(data.ColorArray), len(wantColors))
	}
	for i, w := range wantColors {
		if data.ColorArray[i] != w {
			t.Fatalf("color array[%d]: have %d, want %d", i, data.ColorArray[i], w)
		}
	}
	if data.FrameIntArray[0] != 0 || data.FrameIntArray[1] != 0 {
		t.Fatalf("color offsets: have %d %d, want 0 0", data.FrameIntArray[0], data.FrameIntArray[1])
	}
}

func TestSlotDeformFrame(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "root"}},
		"slot": []any{map[string]any{"name": "s", "parent": "root"}},
		"skin": []any{
			map[string]any{
				"slot": []any{
					map[string]any{
						"name": "s",
						"display": []any{
							map[string]any{
								"type":      "mesh",
								"name":      "m",
								"vertices":  []any{0.0, 0.0, 10.0, 0.0, 10.0, 10.0},
								"uvs":       []any{0.0, 0.0, 1.0, 0.0, 1.0, 1.0},
								"triangles": []any{0.0, 1.0, 2.0},
							},
						},
					},
				},
			},
		},
		"animation": []any{
			map[string]any{
				"name":     "wave",
				"duration": 1.0,
				"ffd": []any{
					map[string]any{
						"slot": "s",
						"name": "m",
						"frame": []any{
							map[string]any{"offset": 2.0, "vertices": []any{7.0, 8.0}},
						},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	anim := data.Armature("body").Animation("wave")
	timelines := anim.SlotTimelines("s")
	if len(timelines) != 1 {
		t.Fatalf("slot timelines: have %d, want 1", len(timelines))
	}
	tl := timelines[0]
	if tl.Type != model.TimelineSlotDeform {
		t.Fatalf("timeline type: have %v, want %v", tl.Type, model.TimelineSlotDeform)
	}
	if tl.FrameIndicesOffset != -1 {
		t.Fatalf("frame indices offset: have %d, want -1 for a single keyframe", tl.FrameIndicesOffset)
	}

	// The sparse window lands at vertex one; everything else stays zero.
	wantFloats := []float32{0, 0, 7, 8, 0, 0}
	if len(data.FrameFloatArray) != len(wantFloats) {
		t.Fatalf("frameFloatArray: have len %d, want %d", len(data.FrameFloatArray), len(wantFloats))
	}
	for i, want := range wantFloats {
		if data.FrameFloatArray[i] != want {
			t.Fatalf("frameFloatArray[%d]: have %v, want %v", i, data.FrameFloatArray[i], want)
		}
	}

	// Deform header: geometry offset, the value count twice, then the
	// value and float offsets, padded to an even length.
	wantInts := []int16{0, 6, 6, 0, 0, 0}
	if len(data.FrameIntArray) != len(wantInts) {
		t.Fatalf("frameIntArray: have len %d, want %d", len(data.FrameIntArray), len(wantInts))
	}
	for i, want := range wantInts {
		if data.FrameIntArray[i] != want {
			t.Fatalf("frameIntArray[%d]: have %d, want %d", i, data.FrameIntArray[i], want)
		}
	}
}

func TestWeightedMeshBindPose(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "root"}},
		"slot": []any{map[string]any{"name": "s", "parent": "root"}},
		"skin": []any{
			map[string]any{
				"slot": []any{
					map[string]any{
						"name": "s",
						"display": []any{
							map[string]any{
								"type":     "mesh",
								"name":     "m",
								"vertices": []any{100.0, 0.0},
								"uvs":      []any{0.0, 0.0},
								"weights":  []any{1.0, 0.0, 1.0},
								"slotPose": []any{1.0, 0.0, 0.0, 1.0, 0.0, 0.0},
								// Bone 0 bind pose: rotate 90 degrees, then
								// translate by (10, 20).
								"bonePose": []any{0.0, 0.0, 1.0, -1.0, 0.0, 10.0, 20.0},
							},
						},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	armature := data.Armature("body")
	mesh := armature.Mesh(defaultName, "s", "m")
	if mesh == nil {
		t.Fatal("Mesh: have nil")
	}
	weight := mesh.Geometry.Weight
	if weight == nil || weight.Count != 1 || len(weight.Bones) != 1 {
		t.Fatalf("weight: have %+v, want one influence of one bone", weight)
	}
	if mesh.Geometry.VertexCount() != 1 {
		t.Fatalf("vertex count: have %d, want 1", mesh.Geometry.VertexCount())
	}

	// Geometry header, no triangles, then the weight block: bone count,
	// float offset, armature bone index, per-vertex influence count and
	// local bone index.
	wantInts := []int16{1, 0, 0, 4, 1, 4, 0, 1, 0}
	for i, w := range wantInts {
		if data.IntArray[i] != w {
			t.Fatalf("int array[%d]: have %d, want %d", i, data.IntArray[i], w)
		}
	}

	// Vertex (100, 0) pulled through the inverted bind pose lands at
	// (-20, -90) in bone space with weight 1.
	wantFloats := []float32{100, 0, 0, 0, 1, -20, -90}
	if len(data.FloatArray) != len(wantFloats) {
		t.Fatalf("float array: have len %d, want %d", len(data.FloatArray), len(wantFloats))
	}
	for i, w := range wantFloats {
		if math.Abs(float64(data.FloatArray[i]-w)) > 1e-4 {
			t.Fatalf("float array[%d]: have %v, want %v", i, data.FloatArray[i], w)
		}
	}
}

func TestWeightedSlotDeformReprojection(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "root"}},
		"slot": []any{map[string]any{"name": "s", "parent": "root"}},
		"skin": []any{
			map[string]any{
				"slot": []any{
					map[string]any{
						"name": "s",
						"display": []any{
							map[string]any{
								"type":     "mesh",
								"name":     "m",
								"vertices": []any{100.0, 0.0},
								"uvs":      []any{0.0, 0.0},
								"weights":  []any{1.0, 0.0, 1.0},
								"slotPose": []any{1.0, 0.0, 0.0, 1.0, 0.0, 0.0},
								"bonePose": []any{0.0, 0.0, 1.0, -1.0, 0.0, 10.0, 20.0},
							},
						},
					},
				},
			},
		},
		"animation": []any{
			map[string]any{
				"name":     "flex",
				"duration": 1.0,
				"ffd": []any{
					map[string]any{
						"slot": "s",
						"name": "m",
						"frame": []any{
							map[string]any{"vertices": []any{3.0, 4.0}},
						},
					},
				},
			},
		},
	})
	data := compileDoc(t, doc, 1)

	anim := data.Armature("body").Animation("flex")
	timelines := anim.SlotTimelines("s")
	if len(timelines) != 1 || timelines[0].Type != model.TimelineSlotDeform {
		t.Fatalf("slot timelines: have %d, want one deform timeline", len(timelines))
	}

	// The delta (3, 4) rotated into the space of the 90 degree bone pose
	// comes out as (4, -3). Translation must not leak into deltas.
	wantFloats := []float32{4, -3}
	if len(data.FrameFloatArray) != len(wantFloats) {
		t.Fatalf("frameFloatArray: have len %d, want %d", len(data.FrameFloatArray), len(wantFloats))
	}
	for i, want := range wantFloats {
		if math.Abs(float64(data.FrameFloatArray[i]-want)) > 1e-4 {
			t.Fatalf("frameFloatArray[%d]: have %v, want %v", i, data.FrameFloatArray[i], want)
		}
	}

	// One influence record, so the header counts two values.
	wantInts := []int16{0, 2, 2, 0, 0, 0}
	if len(data.FrameIntArray) != len(wantInts) {
		t.Fatalf("frameIntArray: have len %d, want %d", len(data.FrameIntArray), len(wantInts))
	}
	for i, want := range wantInts {
		if data.FrameIntArray[i] != want {
			t.Fatalf("frameIntArray[%d]: have %d, want %d", i, data.FrameIntArray[i], want)
		}
	}
}

func TestMalformedDisplayList(t *testing.T) {
	doc := skeletonDoc(map[string]any{
		"name": "body",
		"bone": []any{map[string]any{"name": "root"}},
		"slot": []any{map[string]any{"name": "s", "parent": "root"}},
		"skin": []any{
			map[string]any{
				"slot": []any{
					map[string]any{"name": "s", "display": "not a list"},
				},
			},
		},
	})
	_, err := New(Options{}).Parse(doc, 1)
	if !errors.Is(err, ErrArrayShape) {
		t.Fatalf("Parse: have %v, want ErrArrayShape", err)
	}
}

func TestParseBytes(t *testing.T) {
	data, err := New(Options{}).ParseBytes([]byte(`{
		"version": "5.5", "name": "bin", "frameRate": 24,
		"armature": [{"name": "a", "bone": [{"name": "root"}]}]
	}`), 1)
	if err != nil {
		t.Fatalf("ParseBytes: unexpected error %v", err)
	}
	if data.Name != "bin" || data.Armature("a") == nil {
		t.Fatalf("ParseBytes: have %q, want document %q with armature a", data.Name, "bin")
	}

	if _, err := New(Options{}).ParseBytes([]byte(`{"version":`), 1); err == nil {
		t.Fatal("ParseBytes on broken JSON: have nil error, want decode error")
	}
}
