package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"math"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"alfredoptarigan/exam-grader/internal/models"
)

const (
	DefaultMaxEdge      = 1920
	DefaultEssayMaxEdge = 1024
	DefaultQuality      = 85

	// MaxDecodePixels bounds the canvas an upload may declare before it is
	// decoded. Larger images are forwarded as is.
	MaxDecodePixels = 50_000_000
)

// PreparedImage is an upload payload. Compressed is false when the original
// bytes were kept, and Reason then says why.
type PreparedImage struct {
	Data       []byte
	MIMEType   string
	Compressed bool
	Reason     string
	Width      int
	Height     int
}

// DataURL renders the image as a data: URL.
func (p PreparedImage) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// ImageProcessor downsizes and re-encodes photos before upload.
type ImageProcessor struct {
	MaxEdge int
	Quality int
}

func NewImageProcessor(maxEdge, quality int) *ImageProcessor {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &ImageProcessor{MaxEdge: maxEdge, Quality: quality}
}

// Prepare bounds img to the processor's max edge.
func (p *ImageProcessor) Prepare(img models.Image) PreparedImage {
	return p.PrepareWithEdge(img, p.MaxEdge)
}

// PrepareWithEdge bounds the long edge of img to maxEdge, keeping the aspect
// ratio and never upscaling, and re-encodes it as JPEG. Any failure keeps
// the original bytes.
func (p *ImageProcessor) PrepareWithEdge(img models.Image, maxEdge int) PreparedImage {
	original := PreparedImage{
		Data:     img.Data,
		MIMEType: sniffMIME(img),
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		original.Reason = fmt.Sprintf("decode failed: %v", err)
		log.Printf("⚠️  Image %q kept uncompressed: %s\n", img.Name, original.Reason)
		return original
	}
	original.Width, original.Height = cfg.Width, cfg.Height
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		original.Reason = fmt.Sprintf("%dx%d exceeds the %d pixel decode limit", cfg.Width, cfg.Height, MaxDecodePixels)
		log.Printf("⚠️  Image %q kept uncompressed: %s\n", img.Name, original.Reason)
		return original
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		original.Reason = fmt.Sprintf("decode failed: %v", err)
		log.Printf("⚠️  Image %q kept uncompressed: %s\n", img.Name, original.Reason)
		return original
	}

	bounds := src.Bounds()
	original.Width, original.Height = bounds.Dx(), bounds.Dy()
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), maxEdge)
	resized := w != bounds.Dx() || h != bounds.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if resized {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	} else {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.Quality}); err != nil {
		original.Reason = fmt.Sprintf("encode failed: %v", err)
		log.Printf("⚠️  Image %q kept uncompressed: %s\n", img.Name, original.Reason)
		return original
	}

	if !resized && buf.Len() >= len(img.Data) {
		original.Reason = "re-encoding did not reduce size"
		return original
	}

	log.Printf("🗜️  Image %q compressed %dx%d -> %dx%d, %d -> %d bytes\n",
		img.Name, bounds.Dx(), bounds.Dy(), w, h, len(img.Data), buf.Len())

	return PreparedImage{
		Data:       buf.Bytes(),
		MIMEType:   "image/jpeg",
		Compressed: true,
		Width:      w,
		Height:     h,
	}
}

// fitWithin scales (w, h) down so that the long edge is at most maxEdge.
func fitWithin(w, h, maxEdge int) (int, int) {
	long := max(w, h)
	if maxEdge <= 0 || long <= maxEdge {
		return w, h
	}
	scale := float64(maxEdge) / float64(long)
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	return nw, nh
}

func sniffMIME(img models.Image) string {
	if m := strings.TrimSpace(img.MIMEType); strings.HasPrefix(m, "image/") {
		return m
	}
	if len(img.Data) > 0 {
		if m := http.DetectContentType(img.Data); strings.HasPrefix(m, "image/") {
			return m
		}
	}
	return "image/jpeg"
}
