package scene

import (
	"fmt"
	"strings"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Assets      string `json:"assets"`      // Asset files the scene reads, if any
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

type builtin struct {
	info  SceneInfo
	build func(info SceneInfo, assets Assets) (*Scene, error)
}

var builtins = []builtin{
	{SceneInfo{
		ID:          "occluder",
		Name:        "Occluder",
		Description: "Sphere on a floor under an area light, showing contact occlusion",
		Group:       "Global Illumination",
	}, NewOccluderScene},
	{SceneInfo{
		ID:          "cornell-box",
		Name:        "Cornell Box",
		Description: "Cornell box with mirror and glass spheres and one bounce of color bleeding",
		Group:       "Global Illumination",
	}, NewCornellScene},
	{SceneInfo{
		ID:          "translucent",
		Name:        "Translucent",
		Description: "Subsurface scattering sphere lit from behind",
		Group:       "Global Illumination",
	}, NewTranslucentScene},
	{SceneInfo{
		ID:          "sphere-grid",
		Name:        "Sphere Grid",
		Description: "Every diffuse shader against every specular shader",
		Group:       "Materials",
	}, NewSphereGridScene},
	{SceneInfo{
		ID:          "glass",
		Name:        "Glass",
		Description: "Glass and mirror spheres on a checker floor",
		Group:       "Materials",
	}, NewGlassScene},
	{SceneInfo{
		ID:          "textured",
		Name:        "Textured",
		Description: "Image and procedural textures on a floor, a sphere and a panel",
		Group:       "Materials",
		Assets:      "texture (optional)",
	}, NewTexturedScene},
	{SceneInfo{
		ID:          "mesh",
		Name:        "PLY Mesh",
		Description: "A PLY mesh fitted onto a floor",
		Group:       "Assets",
		Assets:      "mesh",
	}, NewMeshScene},
}

// List returns the built-in scenes in display order
func List() []SceneInfo {
	infos := make([]SceneInfo, len(builtins))
	for i, b := range builtins {
		infos[i] = b.info
	}
	return infos
}

// ListGroups returns the built-in scenes grouped by category, groups in
// the order they first appear
func ListGroups() []SceneGroup {
	var groups []SceneGroup
	index := make(map[string]int)
	for _, info := range List() {
		i, ok := index[info.Group]
		if !ok {
			i = len(groups)
			index[info.Group] = i
			groups = append(groups, SceneGroup{Name: info.Group})
		}
		groups[i].Scenes = append(groups[i].Scenes, info)
	}
	return groups
}

// Load builds the scene with the given id. Ids are matched case
// insensitively and spaces or underscores may stand for hyphens.
func Load(id string, assets Assets) (*Scene, error) {
	key := normalizeID(id)
	for _, b := range builtins {
		if b.info.ID == key {
			s, err := b.build(b.info, assets)
			if err != nil {
				return nil, fmt.Errorf("scene %s: %w", b.info.ID, err)
			}
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.ReplaceAll(id, "_", "-")
	return strings.ReplaceAll(id, " ", "-")
}

// titleCase converts a filename-style string to title case
// e.g., "stanford-bunny" -> "Stanford Bunny"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
