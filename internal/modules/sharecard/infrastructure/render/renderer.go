// Package render draws flower share cards.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/maeumssi/maeumssi/internal/modules/sharecard/domain"
)

const (
	badgeRadius  = 180
	barWidth     = 520
	barHeight    = 28
	barOffsetY   = 200
	shadowSigma  = 12
	shadowAlpha  = 0.35
	centerRadius = 44
)

var (
	stemColor   = color.NRGBA{0x5E, 0x9E, 0x5A, 0xFF}
	seedColor   = color.NRGBA{0x9C, 0x72, 0x4A, 0xFF}
	centerColor = color.NRGBA{0xFF, 0xD8, 0x6B, 0xFF}
	trackColor  = color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	fillColor   = color.NRGBA{0x4F, 0x8A, 0x5B, 0xFF}
)

// petalsByStage is the number of petals drawn at each stage.
var petalsByStage = [...]int{0, 0, 3, 6, 10}

// Render draws the card and returns it encoded as PNG.
func Render(req domain.Request) ([]byte, error) {
	img := Draw(req)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode share card: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw composes the card: stage background, flower badge with a soft shadow,
// and the streak progress bar.
func Draw(req domain.Request) *image.NRGBA {
	stage := domain.StageFor(req.StreakDays)
	card := background(stage.Palette())

	badge := flower(stage, domain.PetalColor(req.Flower))
	center := image.Pt((domain.Width-badge.Bounds().Dx())/2, domain.Height/2-badge.Bounds().Dy()/2-80)

	shadow := imaging.Blur(silhouette(badge), shadowSigma)
	card = imaging.Overlay(card, shadow, center.Add(image.Pt(0, 12)), shadowAlpha)
	card = imaging.Overlay(card, badge, center, 1)

	return streakBar(card, domain.Progress(req.StreakDays))
}

func background(p domain.Palette) *image.NRGBA {
	strip := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	strip.SetNRGBA(0, 0, p.Top)
	strip.SetNRGBA(0, 1, p.Bottom)
	return imaging.Resize(strip, domain.Width, domain.Height, imaging.Linear)
}

func flower(stage domain.Stage, petal color.NRGBA) *image.NRGBA {
	size := badgeRadius * 2
	badge := imaging.New(size, size, color.Transparent)
	c := float64(badgeRadius)

	switch stage {
	case domain.StageSeed:
		fillCircle(badge, c, c+60, 36, seedColor)
		return badge
	case domain.StageSprout:
		fillRect(badge, image.Rect(badgeRadius-6, badgeRadius, badgeRadius+6, size-20), stemColor)
		fillCircle(badge, c-34, c+10, 30, stemColor)
		fillCircle(badge, c+34, c-6, 30, stemColor)
		return badge
	}

	petals := petalsByStage[stage]
	orbit := c - 70
	for i := 0; i < petals; i++ {
		angle := 2 * math.Pi * float64(i) / float64(petals)
		fillCircle(badge, c+orbit*math.Cos(angle), c+orbit*math.Sin(angle), 62, petal)
	}
	fillCircle(badge, c, c, centerRadius, centerColor)
	return badge
}

// silhouette returns a black copy of img keeping its alpha.
func silhouette(img *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = 0, 0, 0
	}
	return out
}

func streakBar(card *image.NRGBA, progress float64) *image.NRGBA {
	x := (domain.Width - barWidth) / 2
	y := domain.Height - barOffsetY

	track := imaging.New(barWidth, barHeight, trackColor)
	card = imaging.Overlay(card, track, image.Pt(x, y), 0.6)

	filled := int(math.Round(float64(barWidth) * math.Min(math.Max(progress, 0), 1)))
	if filled > 0 {
		card = imaging.Overlay(card, imaging.New(filled, barHeight, fillColor), image.Pt(x, y), 1)
	}
	return card
}

func fillCircle(img *image.NRGBA, cx, cy, r float64, c color.NRGBA) {
	b := img.Bounds()
	minX, maxX := max(int(cx-r), b.Min.X), min(int(cx+r)+1, b.Max.X)
	minY, maxY := max(int(cy-r), b.Min.Y), min(int(cy+r)+1, b.Max.Y)
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r*r {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
