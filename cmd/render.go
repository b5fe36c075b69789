package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-gi-shading/pkg/renderer"
	"github.com/df07/go-gi-shading/pkg/scene"
)

// RenderFrame renders a still frame of a built-in scene.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := optionsFromFlags(ctx)
	if err != nil {
		return err
	}
	channels, err := channelsFromFlags(ctx)
	if err != nil {
		return err
	}

	sceneID := ctx.String("scene")
	if ctx.NArg() > 0 {
		sceneID = ctx.Args().First()
	}
	sc, err := scene.Load(sceneID, scene.Assets{
		Mesh:           ctx.String("mesh"),
		Texture:        ctx.String("texture"),
		MaxTextureSize: ctx.Int("max-texture-size"),
	})
	if err != nil {
		return err
	}
	world, err := worldFromFlags(ctx, sc.World)
	if err != nil {
		return err
	}
	logger.Noticef("rendering %q (%d faces, %d lamps) at %dx%d", sc.Name, sc.FaceCount(), len(sc.Geometry.Lamps), opts.Width, opts.Height)

	r, err := renderer.New(sc.Geometry, &sc.Camera, world, opts)
	if err != nil {
		return err
	}

	// Ctrl-C stops the frame at the next tile
	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frame, stats, err := r.Render(renderCtx)
	if err != nil {
		return err
	}
	displayFrameStats(stats)

	out := ctx.String("out")
	if err := saveChannel(frame, renderer.ChannelCombined, out); err != nil {
		return err
	}
	for _, c := range channels {
		if err := saveChannel(frame, c, channelPath(out, c)); err != nil {
			return err
		}
	}
	return nil
}

// channelPath inserts the channel name before the extension of out
func channelPath(out string, c renderer.Channel) string {
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(out, ext), c, ext)
}

func saveChannel(frame *renderer.Frame, c renderer.Channel, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := imaging.Save(frame.Image(c), path); err != nil {
		return fmt.Errorf("saving %s channel: %w", c, err)
	}
	logger.Noticef("wrote %s channel to %s", c, path)
	return nil
}

func displayFrameStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Stage", "Status", "Detail", "Time"})
	for _, stage := range stats.Stages {
		status := "ok"
		if stage.Failed {
			status = "failed"
		}
		table.Append([]string{stage.Name, status, stage.Detail, stage.Duration.String()})
	}
	table.SetFooter([]string{"", "", "TOTAL", stats.RenderTime.String()})
	table.Render()

	work := stats.Shading
	counters := tablewriter.NewWriter(&buf)
	counters.SetAutoFormatHeaders(false)
	counters.SetHeader([]string{"Pixels", "Samples", "Rays", "Shadow rays", "AO lookups", "Cache hits", "Scatter hits"})
	counters.Append([]string{
		fmt.Sprintf("%d", stats.TotalPixels),
		fmt.Sprintf("%d", work.Samples),
		fmt.Sprintf("%d", work.Rays),
		fmt.Sprintf("%d", work.ShadowRays),
		fmt.Sprintf("%d", work.AOLookups),
		fmt.Sprintf("%d", work.CacheHits),
		fmt.Sprintf("%d", work.ScatterHits),
	})
	counters.Render()

	logger.Noticef("frame statistics (%d tiles on %d workers)\n%s", stats.Tiles, stats.Workers, buf.String())
}
