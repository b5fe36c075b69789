package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/df07/go-gi-shading/pkg/occlusion"
	"github.com/df07/go-gi-shading/pkg/renderer"
	"github.com/df07/go-gi-shading/pkg/shading"
)

// RenderFlags are the flags of the render command
var RenderFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "scene, s",
		Value: "occluder",
		Usage: "built-in scene to render, see list-scenes",
	},
	cli.StringFlag{
		Name:  "mesh",
		Usage: "PLY file for scenes that load a mesh",
	},
	cli.StringFlag{
		Name:  "texture",
		Usage: "image file for scenes that load a texture",
	},
	cli.IntFlag{
		Name:  "max-texture-size",
		Value: 1024,
		Usage: "scale textures down to fit this size, 0 keeps the image size",
	},
	cli.IntFlag{
		Name:  "width",
		Value: 400,
		Usage: "frame width",
	},
	cli.IntFlag{
		Name:  "height",
		Value: 300,
		Usage: "frame height",
	},
	cli.IntFlag{
		Name:  "tile",
		Value: 64,
		Usage: "tile size in pixels",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "number of render workers, 0 uses every cpu",
	},
	cli.IntFlag{
		Name:  "spp",
		Value: 1,
		Usage: "camera samples per pixel",
	},
	cli.BoolFlag{
		Name:  "no-ao",
		Usage: "disable the occlusion tree",
	},
	cli.Float64Flag{
		Name:  "error",
		Value: 0.25,
		Usage: "occlusion error threshold, smaller is more accurate",
	},
	cli.IntFlag{
		Name:  "passes",
		Usage: "occlusion refinement passes",
	},
	cli.IntFlag{
		Name:  "bounces",
		Usage: "indirect light bounces gathered by the occlusion tree",
	},
	cli.Float64Flag{
		Name:  "falloff",
		Usage: "occlusion distance falloff, 0 disables it",
	},
	cli.BoolFlag{
		Name:  "bent-normal",
		Usage: "look the environment up along the bent normal",
	},
	cli.StringFlag{
		Name:  "split",
		Value: "midpoint",
		Usage: "occlusion tree split strategy: midpoint or median",
	},
	cli.IntFlag{
		Name:  "max-faces",
		Usage: "refuse to build an occlusion tree over more faces, 0 means unlimited",
	},
	cli.BoolFlag{
		Name:  "no-cache",
		Usage: "look every pixel up in the occlusion tree instead of interpolating",
	},
	cli.StringFlag{
		Name:  "ao-mode",
		Value: "multiply",
		Usage: "how occlusion changes diffuse light: multiply, add or subtract",
	},
	cli.Float64Flag{
		Name:  "ao-energy",
		Value: 1,
		Usage: "strength of the occlusion pass",
	},
	cli.BoolFlag{
		Name:  "no-sss",
		Usage: "disable subsurface scattering",
	},
	cli.IntFlag{
		Name:  "sss-subdivisions",
		Value: 4,
		Usage: "irradiance samples per face edge for subsurface materials",
	},
	cli.IntFlag{
		Name:  "ray-depth",
		Value: 4,
		Usage: "maximum mirror recursion",
	},
	cli.IntFlag{
		Name:  "trans-depth",
		Value: 4,
		Usage: "maximum refraction recursion",
	},
	cli.IntFlag{
		Name:  "shadow-depth",
		Value: 8,
		Usage: "transparent surfaces a shadow ray may cross",
	},
	cli.StringSliceFlag{
		Name:  "exclude, x",
		Usage: "leave light components out of the combined pass, repeated or comma separated (diffuse, specular, shadow, ao, environment, indirect, reflection, refraction, emit, subsurface)",
	},
	cli.StringSliceFlag{
		Name:  "channel, c",
		Usage: "also save these render channels next to the output, repeated or comma separated, e.g. ao,normal,z",
	},
	cli.StringFlag{
		Name:  "out, o",
		Value: "frame.png",
		Usage: "image filename for the rendered frame",
	},
}

var passNames = map[string]shading.Pass{
	"diffuse":     shading.PassDiffuse,
	"specular":    shading.PassSpecular,
	"shadow":      shading.PassShadow,
	"ao":          shading.PassAO,
	"environment": shading.PassEnvironment,
	"indirect":    shading.PassIndirect,
	"reflection":  shading.PassReflection,
	"refraction":  shading.PassRefraction,
	"emit":        shading.PassEmit,
	"subsurface":  shading.PassSubsurface,
}

// optionsFromFlags maps the render flags onto renderer options
func optionsFromFlags(ctx *cli.Context) (renderer.Options, error) {
	opts := renderer.DefaultOptions()
	opts.Width = ctx.Int("width")
	opts.Height = ctx.Int("height")
	opts.TileSize = ctx.Int("tile")
	opts.NumWorkers = ctx.Int("workers")
	opts.Samples = ctx.Int("spp")
	opts.Occlusion = !ctx.Bool("no-ao")
	opts.Subsurface = !ctx.Bool("no-sss")
	opts.SSSSubdivisions = ctx.Int("sss-subdivisions")
	opts.RayDepth = ctx.Int("ray-depth")
	opts.RayDepthTransmission = ctx.Int("trans-depth")
	opts.ShadowDepth = ctx.Int("shadow-depth")

	settings := &opts.OcclusionSettings
	settings.Error = ctx.Float64("error")
	settings.Passes = ctx.Int("passes")
	settings.Bounces = ctx.Int("bounces")
	settings.DistanceFalloff = ctx.Float64("falloff")
	settings.BentNormal = ctx.Bool("bent-normal")
	settings.MaxFaces = ctx.Int("max-faces")
	settings.CacheEnabled = !ctx.Bool("no-cache")
	switch ctx.String("split") {
	case "midpoint":
		settings.Split = occlusion.SplitMidpoint
	case "median":
		settings.Split = occlusion.SplitMedian
	default:
		return opts, fmt.Errorf("%w: unknown split strategy %q", renderer.ErrInvalidOptions, ctx.String("split"))
	}
	if opts.Occlusion {
		if err := settings.Validate(); err != nil {
			return opts, err
		}
	}

	for _, name := range listFlag(ctx, "exclude") {
		pass, ok := passNames[strings.ToLower(name)]
		if !ok {
			return opts, fmt.Errorf("%w: unknown pass %q", renderer.ErrInvalidOptions, name)
		}
		opts.Passes &^= pass
	}

	return opts, opts.Validate()
}

// worldFromFlags applies the occlusion blending flags to w
func worldFromFlags(ctx *cli.Context, w shading.World) (shading.World, error) {
	switch ctx.String("ao-mode") {
	case "multiply":
		w.AOMode = shading.AOMultiply
	case "add":
		w.AOMode = shading.AOAdd
	case "subtract":
		w.AOMode = shading.AOSubtract
	default:
		return w, fmt.Errorf("%w: unknown ao mode %q", renderer.ErrInvalidOptions, ctx.String("ao-mode"))
	}
	w.AOEnergy = ctx.Float64("ao-energy")
	return w, nil
}

// channelsFromFlags parses the extra channels to save
func channelsFromFlags(ctx *cli.Context) ([]renderer.Channel, error) {
	var channels []renderer.Channel
	for _, name := range listFlag(ctx, "channel") {
		c, err := renderer.ParseChannel(strings.ToLower(name))
		if err != nil {
			return nil, err
		}
		channels = append(channels, c)
	}
	return channels, nil
}

// listFlag returns the values of a repeatable flag with comma separated
// entries split apart. urfave/cli rejects mixing the short and long names
// of one slice flag, so a single form with commas covers several values.
func listFlag(ctx *cli.Context, name string) []string {
	var out []string
	for _, v := range ctx.StringSlice(name) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
