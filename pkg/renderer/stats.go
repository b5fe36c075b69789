package renderer

import (
	"time"

	"github.com/df07/go-gi-shading/pkg/shading"
)

// Stage names recorded in RenderStats
const (
	StageOcclusion  = "occlusion"
	StageSubsurface = "subsurface"
	StageShading    = "shading"
)

// StageStats times one step of a frame
type StageStats struct {
	Name     string
	Detail   string // what the stage produced, or why it was skipped
	Duration time.Duration
	Failed   bool // the stage failed and the frame went on without it
}

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Stages  []StageStats
	Shading shading.ThreadStats // work summed over every worker

	TotalPixels int // Total number of pixels rendered
	Tiles       int
	Workers     int
	Samples     int // Camera rays per pixel

	RenderTime time.Duration // Total time for the entire frame
}

// Stage returns the stats of the named stage
func (s RenderStats) Stage(name string) (StageStats, bool) {
	for _, st := range s.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return StageStats{}, false
}

// timeStage runs fn and records how long it took. fn returns a detail
// string, whether the stage failed softly and a fatal error.
func (s *RenderStats) timeStage(name string, fn func() (string, bool, error)) error {
	start := time.Now()
	detail, failed, err := fn()
	s.Stages = append(s.Stages, StageStats{
		Name:     name,
		Detail:   detail,
		Duration: time.Since(start),
		Failed:   failed || err != nil,
	})
	return err
}
