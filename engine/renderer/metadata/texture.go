package metadata

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief Where the texture lives inside the backend's texture storage,
 * expressed in normalized UV space.
 */
type TextureLocation struct {
	UVOffset glm.Vec2
	UVSize   glm.Vec2
}

// FullPageLocation covers a whole texture page.
func FullPageLocation() TextureLocation {
	return TextureLocation{
		UVOffset: glm.Vec2{0, 0},
		UVSize:   glm.Vec2{1, 1},
	}
}

/** @brief The data of a texture once its load has completed. */
type TextureData struct {
	/** @brief The texture size in pixels. */
	Size Dimensions
	/** @brief The number of channels in the source image. */
	ChannelCount uint8
	/** @brief Whether any pixel is not fully opaque. */
	HasTransparency bool
	/** @brief GPU-side location data. */
	Location TextureLocation
}

/** @brief Lifecycle of an asynchronously loaded texture. */
type TextureLoadState uint8

const (
	/** @brief The load task has not delivered data yet. */
	TextureStateLoading TextureLoadState = iota
	/** @brief Data is available. Terminal. */
	TextureStateReady
	/** @brief The load task finished without delivering data. Terminal. */
	TextureStateFailed
)

func (s TextureLoadState) String() string {
	switch s {
	case TextureStateLoading:
		return "loading"
	case TextureStateReady:
		return "ready"
	case TextureStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
