package loaders

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/df07/go-gi-shading/pkg/material"
)

// LoadTexture reads a PNG, JPEG, GIF, TIFF or BMP image into a texture.
// EXIF orientation is applied. With maxSize > 0 larger images are scaled
// down to fit a maxSize square.
func LoadTexture(filename string, maxSize int) (*material.ImageTexture, error) {
	img, err := imaging.Open(filename, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("loaders: loading texture: %w", err)
	}

	b := img.Bounds()
	if maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
		logger.Debugf("scaled %s from %dx%d to %dx%d", filename, b.Dx(), b.Dy(), img.Bounds().Dx(), img.Bounds().Dy())
	}
	return material.NewImageTextureFromImage(img), nil
}
