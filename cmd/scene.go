package cmd

import (
	"encoding/json"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-gi-shading/pkg/scene"
)

// ListScenes prints the built-in scenes as a table or as JSON.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	groups := scene.ListGroups()
	if ctx.Bool("json") {
		enc := json.NewEncoder(ctx.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Group", "ID", "Name", "Assets", "Description"})
	for _, g := range groups {
		for _, info := range g.Scenes {
			table.Append([]string{g.Name, info.ID, info.Name, info.Assets, info.Description})
		}
	}
	table.Render()
	return nil
}
