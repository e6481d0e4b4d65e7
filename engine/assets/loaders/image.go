package loaders

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLoader decodes png, jpeg, bmp, tiff and webp images.
type ImageLoader struct{}

func (il *ImageLoader) Load(path string, r io.Reader) (*metadata.Resource, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image '%s': %w", path, err)
	}

	bounds := img.Bounds()
	data := &metadata.ImageResourceData{
		Width:           uint32(bounds.Dx()),
		Height:          uint32(bounds.Dy()),
		ChannelCount:    channelCount(img.ColorModel()),
		HasTransparency: hasTransparency(img),
	}

	return &metadata.Resource{
		Name:     format,
		FullPath: path,
		Type:     metadata.ResourceTypeImage,
		DataSize: uint64(data.Width) * uint64(data.Height) * uint64(data.ChannelCount),
		Data:     data,
	}, nil
}

func channelCount(m color.Model) uint8 {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return 1
	default:
		return 4
	}
}

func hasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}
