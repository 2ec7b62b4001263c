package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/objpick/internal/picking/idcolor"
	"github.com/Faultbox/objpick/internal/scene"
)

// IDDumper writes id-buffer readbacks to PNG files. Raw id colors are nearly
// black for small ids, so each id is mapped to a distinct bright color.
type IDDumper struct {
	outputDir string
	prefix    string
}

// NewIDDumper creates a dumper writing into outputDir.
func NewIDDumper(outputDir, prefix string) *IDDumper {
	return &IDDumper{outputDir: outputDir, prefix: prefix}
}

// Visualize converts RGBA8 id pixels (rows top to bottom) into a false-color
// image. Background stays black.
func Visualize(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*idcolor.BytesPerPixel {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * idcolor.BytesPerPixel
			id := idcolor.Decode(pixels[o], pixels[o+1], pixels[o+2], pixels[o+3])
			img.SetRGBA(x, y, falseColor(id))
		}
	}
	return img, nil
}

// falseColor spreads consecutive ids across the hue circle.
func falseColor(id scene.ID) color.RGBA {
	if id == scene.None {
		return color.RGBA{A: 255}
	}
	h := uint32(id) * 2654435761 // Knuth multiplicative hash
	return color.RGBA{
		R: 64 + byte(h>>24)%192,
		G: 64 + byte(h>>16)%192,
		B: 64 + byte(h>>8)%192,
		A: 255,
	}
}

// Save writes the visualized id buffer and returns the file path.
func (d *IDDumper) Save(pixels []byte, width, height int) (string, error) {
	img, err := Visualize(pixels, width, height)
	if err != nil {
		return "", err
	}

	if d.outputDir != "" {
		if err := os.MkdirAll(d.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := d.GenerateFilename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}

// GenerateFilename returns a timestamped output path.
func (d *IDDumper) GenerateFilename() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", d.prefix, timestamp)
	if d.outputDir != "" {
		filename = filepath.Join(d.outputDir, filename)
	}
	return filename
}
