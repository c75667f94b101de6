package dragonbones

import (
	"golang.org/x/exp/constraints"
	"honnef.co/go/safeish"
)

func nextMultipleOf[T constraints.Integer](x, y T) T {
	r := x % y
	if r == 0 {
		return x
	} else {
		return x + y - r
	}
}

// padEven pads a 16-bit staging array to an even element count so that the
// section that follows it in the packed buffer starts 4-byte aligned.
func padEven[T int16 | uint16](values []T) []T {
	if n := nextMultipleOf(len(values), 2); n != len(values) {
		values = append(values, make([]T, n-len(values))...)
	}
	return values
}

// packBinary snapshots the seven staging arrays into one contiguous buffer
// in their fixed order and installs typed views of it on the document. The
// buffer uses the host byte order, little-endian everywhere this runs.
func (c *Compiler) packBinary() {
	c.intArray = padEven(c.intArray)
	c.frameIntArray = padEven(c.frameIntArray)
	c.frameArray = padEven(c.frameArray)
	c.timelineArray = padEven(c.timelineArray)
	c.colorArray = padEven(c.colorArray)

	l1 := len(c.intArray) * 2
	l2 := len(c.floatArray) * 4
	l3 := len(c.frameIntArray) * 2
	l4 := len(c.frameFloatArray) * 4
	l5 := len(c.frameArray) * 2
	l6 := len(c.timelineArray) * 2
	l7 := len(c.colorArray) * 2

	binary := make([]byte, 0, l1+l2+l3+l4+l5+l6+l7)
	binary = append(binary, safeish.SliceCast[[]byte](c.intArray)...)
	binary = append(binary, safeish.SliceCast[[]byte](c.floatArray)...)
	binary = append(binary, safeish.SliceCast[[]byte](c.frameIntArray)...)
	binary = append(binary, safeish.SliceCast[[]byte](c.frameFloatArray)...)
	binary = append(binary, safeish.SliceCast[[]byte](c.frameArray)...)
	binary = append(binary, safeish.SliceCast[[]byte](c.timelineArray)...)
	binary = append(binary, safeish.SliceCast[[]byte](c.colorArray)...)

	data := c.data
	data.Binary = binary
	o := 0
	data.IntArray = safeish.SliceCast[[]int16](binary[o : o+l1])
	o += l1
	data.FloatArray = safeish.SliceCast[[]float32](binary[o : o+l2])
	o += l2
	data.FrameIntArray = safeish.SliceCast[[]int16](binary[o : o+l3])
	o += l3
	data.FrameFloatArray = safeish.SliceCast[[]float32](binary[o : o+l4])
	o += l4
	data.FrameArray = safeish.SliceCast[[]int16](binary[o : o+l5])
	o += l5
	data.TimelineArray = safeish.SliceCast[[]uint16](binary[o : o+l6])
	o += l6
	data.ColorArray = safeish.SliceCast[[]int16](binary[o : o+l7])

	c.defaultColorOffset = -1
}
