package lights

import (
	"math"
	"testing"

	"github.com/df07/go-gi-shading/pkg/core"
)

func TestLampVisibility_Falloff(t *testing.T) {
	tests := []struct {
		name     string
		falloff  Falloff
		linear   float64
		quad     float64
		curve    func(float64) float64
		dist     float64
		expected float64
	}{
		{"constant", FalloffConstant, 0, 0, nil, 5, 1},
		{"inverse linear at reference", FalloffInvLinear, 0, 0, nil, 2, 0.5},
		{"inverse square", FalloffInvSquare, 0, 0, nil, 1, 2.0 / 3.0},
		{"linear slider", FalloffSliders, 1, 0, nil, 2, 0.5},
		{"quadratic slider", FalloffSliders, 0, 1, nil, 2, 0.5},
		{"both sliders", FalloffSliders, 1, 1, nil, 2, 0.25},
		{"curve", FalloffCurve, 0, 0, func(t float64) float64 { return 1 - t/4 }, 2, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lamp := NewPointLamp(core.NewVec3(0, tt.dist, 0), core.Splat(1), 1)
			lamp.Distance = 2
			lamp.Falloff = tt.falloff
			lamp.Linear = tt.linear
			lamp.Quadratic = tt.quad
			lamp.Curve = tt.curve
			lamp.Prepare()

			lv, dist, fac := lamp.Visibility(core.Vec3{})
			if math.Abs(dist-tt.dist) > 1e-12 {
				t.Errorf("Expected distance %f, got %f", tt.dist, dist)
			}
			if math.Abs(lv.Y-1) > 1e-12 {
				t.Errorf("Expected direction toward lamp (0,1,0), got %v", lv)
			}
			if math.Abs(fac-tt.expected) > 1e-9 {
				t.Errorf("Expected falloff %f, got %f", tt.expected, fac)
			}
		})
	}
}

func TestLampVisibility_SphereCutoff(t *testing.T) {
	lamp := NewPointLamp(core.Vec3{}, core.Splat(1), 1)
	lamp.Falloff = FalloffConstant
	lamp.Distance = 4
	lamp.SphereCutoff = true
	lamp.Prepare()

	if _, _, fac := lamp.Visibility(core.NewVec3(2, 0, 0)); math.Abs(fac-0.5) > 1e-9 {
		t.Errorf("Expected half intensity halfway to the cutoff, got %f", fac)
	}
	if _, _, fac := lamp.Visibility(core.NewVec3(5, 0, 0)); fac != 0 {
		t.Errorf("Expected no light beyond the cutoff sphere, got %f", fac)
	}
}

func TestLampVisibility_Directional(t *testing.T) {
	for _, typ := range []LampType{LampSun, LampHemi} {
		lamp := NewSunLamp(core.NewVec3(0, -2, 0), core.Splat(1), 1)
		lamp.Type = typ
		lamp.Prepare()

		lv, dist, fac := lamp.Visibility(core.NewVec3(100, -50, 3))
		if lv != core.NewVec3(0, 1, 0) || dist != 1 || fac != 1 {
			t.Errorf("%s lamp: expected ((0,1,0), 1, 1), got (%v, %f, %f)", typ, lv, dist, fac)
		}
	}
}

func TestSpotCone(t *testing.T) {
	down := core.NewVec3(0, -1, 0)
	size := 60 * math.Pi / 180

	tan25 := math.Tan(25 * math.Pi / 180)
	corner := core.NewVec3(tan25, -1, tan25)

	tests := []struct {
		name   string
		square bool
		point  core.Vec3
		lit    bool
	}{
		{"round cone center", false, core.NewVec3(0, -1, 0), true},
		{"round cone outside", false, core.NewVec3(1, -1, 0), false},
		{"round cone misses the diagonal", false, corner, false},
		{"square cone keeps the diagonal", true, corner, true},
		{"square cone outside", true, core.NewVec3(1, -1, 0), false},
		{"behind the lamp", true, core.NewVec3(0, 1, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lamp := NewSpotLamp(core.Vec3{}, down, core.Splat(1), 1, size, 0)
			lamp.Falloff = FalloffConstant
			lamp.SquareSpot = tt.square
			lamp.Prepare()

			_, _, fac := lamp.Visibility(tt.point)
			if tt.lit && fac <= 0 {
				t.Errorf("Expected %v to be inside the cone", tt.point)
			}
			if !tt.lit && fac != 0 {
				t.Errorf("Expected %v to be outside the cone, got %f", tt.point, fac)
			}
		})
	}
}

func TestSpotBlend_SoftensEdge(t *testing.T) {
	lamp := NewSpotLamp(core.Vec3{}, core.NewVec3(0, -1, 0), core.Splat(1), 1, math.Pi/2, 1)
	lamp.Falloff = FalloffConstant
	lamp.Prepare()

	prev := math.Inf(1)
	for deg := 0.0; deg < 45; deg += 5 {
		a := deg * math.Pi / 180
		_, _, fac := lamp.Visibility(core.NewVec3(math.Sin(a), -math.Cos(a), 0))
		if fac > prev+1e-12 {
			t.Fatalf("Expected intensity to decrease toward the edge: %f after %f at %f degrees", fac, prev, deg)
		}
		prev = fac
	}
	if prev <= 0 || prev > 0.2 {
		t.Errorf("Expected a faint but non-zero value near the edge, got %f", prev)
	}
}

func TestAreaEnergy(t *testing.T) {
	lamp := NewAreaLamp(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0), core.NewVec3(1, 0, 0), 0.05, 0.05, core.Splat(1), 1, 3)
	lamp.Distance = 5
	lamp.Prepare()

	up := core.NewVec3(0, 1, 0)
	if e := lamp.AreaEnergy(core.Vec3{}, up); math.Abs(e-1) > 1e-3 {
		t.Errorf("Expected unit energy on axis at the reference distance, got %f", e)
	}
	if e := lamp.AreaEnergy(core.NewVec3(0, 10, 0), up.Negate()); e != 0 {
		t.Errorf("Expected no energy behind a single sided lamp, got %f", e)
	}
	if e := lamp.AreaEnergy(core.Vec3{}, up.Negate()); e != 0 {
		t.Errorf("Expected no energy for a surface facing away, got %f", e)
	}

	near := lamp.AreaEnergy(core.Vec3{}, up)
	far := lamp.AreaEnergy(core.NewVec3(0, -5, 0), up)
	if math.Abs(far/near-0.25) > 1e-3 {
		t.Errorf("Expected inverse square behaviour for a small lamp, ratio %f", far/near)
	}
}

func TestSamplePosition_StaysOnLampPlane(t *testing.T) {
	lamp := NewAreaLamp(core.NewVec3(1, 4, 2), core.NewVec3(0, -1, 0), core.NewVec3(1, 0, 0), 2, 1, core.Splat(1), 1, 4)
	lamp.Prepare()

	for _, off := range lamp.Jitter(0, 0) {
		p := lamp.SamplePosition(off, core.Vec3{})
		if math.Abs(p.Y-4) > 1e-9 {
			t.Fatalf("Sample left the lamp plane: %v", p)
		}
		if math.Abs(p.X-1) > 1+1e-9 || math.Abs(p.Z-2) > 0.5+1e-9 {
			t.Fatalf("Sample outside the lamp rectangle: %v", p)
		}
	}
	if got := len(lamp.Jitter(0, 0)); got != 16 {
		t.Errorf("Expected 16 jitter samples, got %d", got)
	}
}
