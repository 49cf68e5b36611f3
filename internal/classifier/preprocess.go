package classifier

import (
	"image"

	"golang.org/x/image/draw"
)

const channels = 3

// preprocess resizes the image to the target dimensions, scales pixel values
// to [0,1] and adds the leading batch dimension of size 1.
func preprocess(img image.Image, height, width int) Batch {
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	data := make([]float32, height*width*channels)
	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			// RGBA returns 16-bit channels.
			data[i] = float32(r) / 65535.0
			data[i+1] = float32(g) / 65535.0
			data[i+2] = float32(b) / 65535.0
			i += channels
		}
	}

	return Batch{
		N:        1,
		Height:   height,
		Width:    width,
		Channels: channels,
		Data:     data,
	}
}
