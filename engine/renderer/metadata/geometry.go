package metadata

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief Represents a single vertex in 2D space.
 */
type Vertex2D struct {
	/** @brief The position of the vertex */
	Position glm.Vec2
	/** @brief The texture coordinate of the vertex. */
	Texcoord glm.Vec2
}

/** @brief Geometry data as read from a geometry descriptor. */
type GeometryData struct {
	Name     string
	Vertices []Vertex2D
	Indices  []uint32
}
