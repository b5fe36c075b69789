package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/df07/go-gi-shading/pkg/shading"
)

func TestWorkerPool(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		wantErr error
		samples int64
	}{
		{"renders every tile", context.Background(), nil, 8 * 8},
		{"cancelled", cancelled, context.Canceled, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, camera := wallContext(t, 8, 8)
			frame := NewFrame(8, 8)
			tiles := NewTileGrid(8, 8, 4)

			pool := NewWorkerPool(rc, NewTileRenderer(rc, camera, 1), frame, len(tiles), 3)
			if pool.GetNumWorkers() != 3 {
				t.Fatalf("Expected 3 workers, got %d", pool.GetNumWorkers())
			}
			pool.Start(tt.ctx)
			for i, tile := range tiles {
				pool.SubmitTask(TileTask{Tile: tile, TaskID: i})
			}

			seen := make(map[int]bool)
			for range tiles {
				result, ok := pool.GetResult()
				if !ok {
					t.Fatal("Result queue closed early")
				}
				if !errors.Is(result.Error, tt.wantErr) && result.Error != tt.wantErr {
					t.Errorf("Task %d: expected error %v, got %v", result.TaskID, tt.wantErr, result.Error)
				}
				seen[result.TaskID] = true
			}
			pool.Stop()

			if len(seen) != len(tiles) {
				t.Errorf("Expected a result for each of %d tiles, got %d", len(tiles), len(seen))
			}
			if got := pool.Stats().Samples; got != tt.samples {
				t.Errorf("Expected %d samples, got %d", tt.samples, got)
			}
		})
	}
}

func TestWorkerPool_OwnThreadContexts(t *testing.T) {
	rc, camera := wallContext(t, 4, 4)
	pool := NewWorkerPool(rc, NewTileRenderer(rc, camera, 1), NewFrame(4, 4), 1, 4)

	seen := make(map[*shading.ThreadContext]bool)
	for i, w := range pool.workers {
		if w.ID != i || w.thread.ID != i {
			t.Errorf("Worker %d has id %d and thread %d", i, w.ID, w.thread.ID)
		}
		if seen[w.thread] {
			t.Errorf("Worker %d shares its thread context", i)
		}
		seen[w.thread] = true
	}
}
