// Package geom provides the small amount of 3D math the viewer needs:
// axis-aligned bounding boxes over gonum's r3 vectors.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned bounding box. The zero value is not a valid box;
// use EmptyBox or NewBox.
type Box struct {
	Min r3.Vec
	Max r3.Vec
}

// EmptyBox returns a box that unions as the identity: any point extends it.
func EmptyBox() Box {
	return Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
}

// NewBox builds a box from two corner points in any order.
func NewBox(a, b r3.Vec) Box {
	return Box{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// IsEmpty reports whether the box contains no volume (including EmptyBox).
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return Box{
		Min: r3.Vec{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y), Z: math.Min(b.Min.Z, o.Min.Z)},
		Max: r3.Vec{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y), Z: math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Center returns the midpoint of the box.
func (b Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Size returns the extent of the box along each axis.
func (b Box) Size() r3.Vec {
	if b.IsEmpty() {
		return r3.Vec{}
	}
	return r3.Sub(b.Max, b.Min)
}

// MaxDim returns the largest extent across the three axes.
func (b Box) MaxDim() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Translate returns the box shifted by v.
func (b Box) Translate(v r3.Vec) Box {
	if b.IsEmpty() {
		return b
	}
	return Box{Min: r3.Add(b.Min, v), Max: r3.Add(b.Max, v)}
}

// Corners returns the eight corner points of the box.
func (b Box) Corners() [8]r3.Vec {
	return [8]r3.Vec{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}
