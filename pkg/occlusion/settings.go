package occlusion

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/df07/go-gi-shading/pkg/core"
	"github.com/df07/go-gi-shading/pkg/log"
)

var logger = log.New("occlusion")

var (
	// ErrNoFaces is returned when no face in the scene takes part in occlusion
	ErrNoFaces = errors.New("occlusion: no occluding faces")

	// ErrTooManyFaces is returned when the face count exceeds Settings.MaxFaces
	ErrTooManyFaces = errors.New("occlusion: too many faces")

	// ErrInvalidSettings is returned by Settings.Validate
	ErrInvalidSettings = errors.New("occlusion: invalid settings")

	// ErrInconsistentTree is returned by Tree.Validate
	ErrInconsistentTree = errors.New("occlusion: inconsistent tree")
)

// SplitStrategy selects how a group of faces is divided between children
type SplitStrategy int

const (
	// SplitMidpoint cuts the longest axis at the middle of the bounding box
	SplitMidpoint SplitStrategy = iota
	// SplitMedian cuts the longest axis so both halves hold the same count
	SplitMedian
)

func (s SplitStrategy) String() string {
	if s == SplitMedian {
		return "median"
	}
	return "midpoint"
}

// Settings configures building and sampling the occlusion tree
type Settings struct {
	Error           float64 // admissibility threshold, smaller is more accurate
	DistanceFalloff float64 // 0 disables distance attenuation
	Passes          int     // occlusion refinement passes
	Bounces         int     // indirect bounces, 0 disables indirect light
	BentNormal      bool    // accumulate a bent normal for environment lookups
	Split           SplitStrategy

	ThreadedThreshold int // build root children in parallel above this face count
	NumWorkers        int // 0 uses runtime.NumCPU
	MaxFaces          int // 0 means unlimited

	CacheEnabled     bool          // interpolate samples in screen space
	ProgressInterval time.Duration // how often long passes report progress
	Logger           core.Logger
}

// DefaultSettings returns settings matching a typical approximate AO setup
func DefaultSettings() Settings {
	return Settings{
		Error:             0.25,
		Passes:            0,
		Bounces:           0,
		Split:             SplitMidpoint,
		ThreadedThreshold: 10000,
		CacheEnabled:      true,
		ProgressInterval:  time.Second,
	}
}

// Indirect reports whether face radiance is gathered for indirect light
func (s Settings) Indirect() bool {
	return s.Bounces > 0
}

// Validate checks the settings for values the tree cannot work with
func (s Settings) Validate() error {
	if s.Error <= 0 {
		return fmt.Errorf("%w: error threshold %g must be positive", ErrInvalidSettings, s.Error)
	}
	if s.DistanceFalloff < 0 {
		return fmt.Errorf("%w: negative distance falloff %g", ErrInvalidSettings, s.DistanceFalloff)
	}
	if s.Passes < 0 || s.Bounces < 0 {
		return fmt.Errorf("%w: negative pass or bounce count", ErrInvalidSettings)
	}
	return nil
}

func (s Settings) workers() int {
	if s.NumWorkers > 0 {
		return s.NumWorkers
	}
	return runtime.NumCPU()
}

func (s Settings) logger() core.Logger {
	if s.Logger == nil {
		return logger
	}
	return s.Logger
}
