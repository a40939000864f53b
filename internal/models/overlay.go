package models

// BoxScale is the side length of the normalized coordinate space used by
// box_2d values.
const BoxScale = 1000.0

// Box2D is a rectangle [x, y, width, height] in the 0-1000 normalized space,
// relative to the source image. Models treat it as best effort.
type Box2D [4]float64

// Placement is a box mapped onto a rendered image, in pixels.
type Placement struct {
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	AnchorX float64 `json:"anchor_x"`
	AnchorY float64 `json:"anchor_y"`
}

// Clamp pins every coordinate into [0, BoxScale].
func (b Box2D) Clamp() Box2D {
	for i, v := range b {
		switch {
		case v < 0:
			b[i] = 0
		case v > BoxScale:
			b[i] = BoxScale
		}
	}
	return b
}

// Place maps the box onto an image of the given pixel size. The score
// annotation is anchored at the right edge of the box, vertically centered.
func (b Box2D) Place(imageWidth, imageHeight float64) Placement {
	p := Placement{
		Left:   b[0] / BoxScale * imageWidth,
		Top:    b[1] / BoxScale * imageHeight,
		Width:  b[2] / BoxScale * imageWidth,
		Height: b[3] / BoxScale * imageHeight,
	}
	p.AnchorX = p.Left + p.Width
	p.AnchorY = p.Top + p.Height/2
	return p
}
