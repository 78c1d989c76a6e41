package ocr

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// minOCRWidth is the width below which photos are upscaled before recognition.
const minOCRWidth = 1200

// Preprocess writes a grayscale, contrast-stretched and sharpened copy of src
// to dst. The output format follows dst's extension.
func Preprocess(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	if w := img.Bounds().Dx(); w > 0 && w < minOCRWidth {
		img = imaging.Resize(img, minOCRWidth, 0, imaging.Lanczos)
	}

	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 30)
	out = imaging.Sharpen(out, 1.0)

	if err := imaging.Save(out, dst); err != nil {
		return fmt.Errorf("save preprocessed image: %w", err)
	}
	return nil
}
