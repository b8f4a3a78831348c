package rendering

import (
	"github.com/fosdem/trigl/lib/gpu"
	"github.com/fosdem/trigl/lib/metrics"
	"github.com/go-gl/mathgl/mgl32"
)

const f32 = 4

// Vertex is one record of the vertex buffer: position first, colour second.
type Vertex struct {
	Position mgl32.Vec2
	Colour   mgl32.Vec3
}

const (
	positionComponents = len(mgl32.Vec2{})
	colourComponents   = len(mgl32.Vec3{})
	floatsPerVertex    = positionComponents + colourComponents

	// VertexStride is the size of one Vertex in the buffer, in bytes.
	VertexStride = int32(floatsPerVertex * f32)
)

// Triangle is the mesh drawn every frame.
var Triangle = []Vertex{
	{Position: mgl32.Vec2{0.0, 0.8}, Colour: mgl32.Vec3{1.0, 0.2, 0.2}},
	{Position: mgl32.Vec2{-0.8, -0.6}, Colour: mgl32.Vec3{0.2, 1.0, 0.2}},
	{Position: mgl32.Vec2{0.8, -0.6}, Colour: mgl32.Vec3{0.2, 0.2, 1.0}},
}

// AttribLayout says where one vertex attribute lives in the buffer.
type AttribLayout struct {
	Slot       uint32
	Components int32
	Stride     int32
	Offset     int
}

// VertexLayout maps shader attribute slots onto Vertex fields. Slot 0 is
// aPos and slot 1 is aColor in triangle.vert.
func VertexLayout() []AttribLayout {
	return []AttribLayout{
		{Slot: 0, Components: int32(positionComponents), Stride: VertexStride, Offset: 0},
		{Slot: 1, Components: int32(colourComponents), Stride: VertexStride, Offset: positionComponents * f32},
	}
}

// Flatten serialises vertices into the interleaved float layout.
func Flatten(vertices []Vertex) []float32 {
	data := make([]float32, 0, len(vertices)*floatsPerVertex)
	for _, v := range vertices {
		data = append(data, v.Position[:]...)
		data = append(data, v.Colour[:]...)
	}
	return data
}

// Geometry is a static mesh living on the GPU.
type Geometry struct {
	Buffer      uint32
	VertexArray uint32
	Layout      []AttribLayout
	Count       int32
}

// Upload copies vertices into a new buffer and records the attribute
// layout in a new vertex array. Both are left unbound.
func Upload(dev gpu.Device, vertices []Vertex) *Geometry {
	g := &Geometry{
		Layout: VertexLayout(),
		Count:  int32(len(vertices)),
	}

	g.Buffer = dev.GenBuffer()
	metrics.GLObjects.WithLabelValues("buffer", "create").Inc()
	g.VertexArray = dev.GenVertexArray()
	metrics.GLObjects.WithLabelValues("vertex_array", "create").Inc()

	dev.BindVertexArray(g.VertexArray)
	dev.BindBuffer(g.Buffer)
	dev.BufferData(Flatten(vertices), gpu.StaticDraw)

	for _, a := range g.Layout {
		dev.EnableVertexAttribArray(a.Slot)
		dev.VertexAttribPointer(a.Slot, a.Components, a.Stride, a.Offset)
	}

	dev.BindVertexArray(0)
	dev.BindBuffer(0)

	return g
}

// ReadBack returns the first n floats stored in the buffer.
func (g *Geometry) ReadBack(dev gpu.Device, n int) []float32 {
	data := make([]float32, n)
	dev.BindBuffer(g.Buffer)
	dev.GetBufferSubData(0, data)
	dev.BindBuffer(0)
	return data
}

// Release deletes the vertex array and then the buffer. Calling it again
// does nothing.
func (g *Geometry) Release(dev gpu.Device) {
	if g.VertexArray != 0 {
		dev.DeleteVertexArray(g.VertexArray)
		metrics.GLObjects.WithLabelValues("vertex_array", "delete").Inc()
		g.VertexArray = 0
	}
	if g.Buffer != 0 {
		dev.DeleteBuffer(g.Buffer)
		metrics.GLObjects.WithLabelValues("buffer", "delete").Inc()
		g.Buffer = 0
	}
}
