package domain

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Width  = 720
	Height = 960

	maxFlowerLength = 20
)

var ErrInvalidCard = errors.New("invalid share card request")

// Stage is how far the user's flower has grown.
type Stage int

const (
	StageSeed Stage = iota
	StageSprout
	StageBud
	StageBloom
	StageFullBloom
)

var stageNames = [...]string{"seed", "sprout", "bud", "bloom", "full_bloom"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	for i, name := range stageNames {
		if name == string(b) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", b)
}

// stageThresholds[i] is the streak needed to reach stage i+1.
var stageThresholds = [...]int{3, 7, 14, 30}

var _ = [1]struct{}{}[len(stageNames)-len(stageThresholds)-1]

// StageFor maps a streak length to a bloom stage.
func StageFor(streakDays int) Stage {
	stage := StageSeed
	for i, threshold := range stageThresholds {
		if streakDays >= threshold {
			stage = Stage(i + 1)
		}
	}
	return stage
}

// Progress returns how far the streak is toward the next stage in [0, 1].
func Progress(streakDays int) float64 {
	prev := 0
	for _, threshold := range stageThresholds {
		if streakDays < threshold {
			return float64(max(streakDays-prev, 0)) / float64(threshold-prev)
		}
		prev = threshold
	}
	return 1
}

// Request describes the card to render.
type Request struct {
	Flower     string `json:"flower"`
	StreakDays int    `json:"streak_days"`
}

func (r *Request) Normalize() error {
	r.Flower = strings.TrimSpace(r.Flower)
	if r.StreakDays < 0 {
		return errors.Join(ErrInvalidCard, errors.New("streak_days must not be negative"))
	}
	if utf8.RuneCountInString(r.Flower) > maxFlowerLength {
		return errors.Join(ErrInvalidCard, errors.New("flower name is too long"))
	}
	return nil
}

// Card is a rendered and uploaded share card.
type Card struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Flower     string    `json:"flower"`
	StreakDays int       `json:"streak_days"`
	Stage      Stage     `json:"stage"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Palette is the background gradient for a stage.
type Palette struct {
	Top    color.NRGBA
	Bottom color.NRGBA
}

var palettes = [...]Palette{
	StageSeed:      {Top: color.NRGBA{0xF3, 0xEC, 0xE0, 0xFF}, Bottom: color.NRGBA{0xD9, 0xC8, 0xB0, 0xFF}},
	StageSprout:    {Top: color.NRGBA{0xEA, 0xF6, 0xE4, 0xFF}, Bottom: color.NRGBA{0xB7, 0xDB, 0xA8, 0xFF}},
	StageBud:       {Top: color.NRGBA{0xE6, 0xF4, 0xF1, 0xFF}, Bottom: color.NRGBA{0x9F, 0xD3, 0xC7, 0xFF}},
	StageBloom:     {Top: color.NRGBA{0xFD, 0xEE, 0xF3, 0xFF}, Bottom: color.NRGBA{0xF6, 0xB8, 0xCB, 0xFF}},
	StageFullBloom: {Top: color.NRGBA{0xFF, 0xF4, 0xDC, 0xFF}, Bottom: color.NRGBA{0xFB, 0xC4, 0x7A, 0xFF}},
}

var _ = [1]struct{}{}[len(palettes)-len(stageNames)]

func (s Stage) Palette() Palette {
	if s < 0 || int(s) >= len(palettes) {
		return palettes[StageSeed]
	}
	return palettes[s]
}

var defaultPetal = color.NRGBA{0xF0, 0x8F, 0xB0, 0xFF}

// PetalColor returns the petal color for a flower name.
func PetalColor(flower string) color.NRGBA {
	switch flower {
	case "장미":
		return color.NRGBA{0xE5, 0x48, 0x5F, 0xFF}
	case "튤립":
		return color.NRGBA{0xF2, 0x7A, 0xA0, 0xFF}
	case "해바라기", "민들레":
		return color.NRGBA{0xF5, 0xC2, 0x2E, 0xFF}
	case "라벤더":
		return color.NRGBA{0xA5, 0x8B, 0xD6, 0xFF}
	case "수국":
		return color.NRGBA{0x7F, 0xA8, 0xE0, 0xFF}
	default:
		return defaultPetal
	}
}
