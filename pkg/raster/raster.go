// Package raster provides the dense row-major pixel buffer used as the
// in-memory representation for one mip level of an image.
package raster

import "fmt"

// Raster owns a width×height row-major buffer of T. Width and height are
// fixed at construction; only the cells themselves are mutable.
type Raster[T any] struct {
	width  int
	height int
	data   []T
}

// New returns a Raster filled with T's zero value.
func New[T any](width, height int) Raster[T] {
	return Raster[T]{width: width, height: height, data: make([]T, width*height)}
}

// Splat returns a Raster with every cell set to val.
func Splat[T any](width, height int, val T) Raster[T] {
	data := make([]T, width*height)
	for i := range data {
		data[i] = val
	}
	return Raster[T]{width: width, height: height, data: data}
}

// NewWith wraps an existing buffer. len(data) must equal width*height.
func NewWith[T any](width, height int, data []T) Raster[T] {
	if len(data) != width*height {
		panic(fmt.Sprintf("raster: buffer is %d elements, want %d×%d", len(data), width, height))
	}
	return Raster[T]{width: width, height: height, data: data}
}

func (r Raster[T]) Width() int  { return r.width }
func (r Raster[T]) Height() int { return r.height }

// Data returns the underlying row-major buffer.
func (r Raster[T]) Data() []T { return r.data }

// At returns the cell at (x, y).
func (r Raster[T]) At(x, y int) T { return r.data[y*r.width+x] }

// Set writes the cell at (x, y).
func (r Raster[T]) Set(x, y int, v T) { r.data[y*r.width+x] = v }

// Map applies f to every cell, producing a new Raster of the same shape.
func Map[T, U any](r Raster[T], f func(T) U) Raster[U] {
	out := make([]U, len(r.data))
	for i, v := range r.data {
		out[i] = f(v)
	}
	return Raster[U]{width: r.width, height: r.height, data: out}
}
