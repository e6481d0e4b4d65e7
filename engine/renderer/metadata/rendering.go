package metadata

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

/** @brief Offset and scale applied to texture coordinates of one draw. */
type UvTransforms struct {
	Offset glm.Vec2
	Scale  glm.Vec2
}

// DefaultUvTransforms samples the whole texture unchanged.
func DefaultUvTransforms() UvTransforms {
	return UvTransforms{
		Offset: glm.Vec2{0, 0},
		Scale:  glm.Vec2{1, 1},
	}
}

/** @brief Per-draw parameters of a textured geometry. */
type Instance struct {
	/** @brief Model transform. */
	Transform glm.Mat4
	/** @brief Texture coordinate transform. */
	UvTransforms UvTransforms
	/** @brief Tint color, multiplied with the texture. RGBA. */
	Color glm.Vec4
}

// NewInstance returns an identity transform drawing the full texture untinted.
func NewInstance() Instance {
	return Instance{
		Transform:    glm.Ident4(),
		UvTransforms: DefaultUvTransforms(),
		Color:        glm.Vec4{1, 1, 1, 1},
	}
}

/** @brief One draw submission as seen by the backend. */
type TexturedGeometryData struct {
	GeometryID GeometryID
	TextureID  TextureID
	Instance   Instance
}

/** @brief Everything a backend needs to render a scene. */
type RenderData struct {
	TexturedGeometries []TexturedGeometryData
}

type SceneTransforms struct {
	World glm.Mat4
	View  glm.Mat4
	Proj  glm.Mat4
}

type RenderContext struct {
	SceneTransforms SceneTransforms
}

// NewRenderContext builds a context with an identity world transform.
func NewRenderContext(view, proj glm.Mat4) RenderContext {
	return RenderContext{
		SceneTransforms: SceneTransforms{
			World: glm.Ident4(),
			View:  view,
			Proj:  proj,
		},
	}
}

/** @brief Describes a frame to present. */
type PresentInfo struct {
	Texture TextureID
}
