package metadata

type ResourceType int

/** @brief Asset types known to the asset index. */
const (
	/** @brief Not an asset the engine can load. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type, source of textures. */
	ResourceTypeImage
	/** @brief Geometry descriptor resource type. */
	ResourceTypeGeometry
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeGeometry:
		return "geometry"
	default:
		return "none"
	}
}

/** @brief Identifies a texture owned by the texture manager. */
type TextureID uint64

/** @brief Identifies a geometry owned by the geometry manager. */
type GeometryID uint64

/** @brief Identifies a scene owned by the scene manager. */
type SceneID uint64

/** @brief Pixel dimensions of a texture or a frame. */
type Dimensions struct {
	Width  uint32
	Height uint32
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The asset type the resource was loaded as. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/** @brief Data produced by the image loader. */
type ImageResourceData struct {
	Width           uint32
	Height          uint32
	ChannelCount    uint8
	HasTransparency bool
}
