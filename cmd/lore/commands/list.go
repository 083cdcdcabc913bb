package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/pkg/skillbook"
)

var listSection string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List learned skills across all collections",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listSection, "section", "", "Only show skills from this section")
	rootCmd.AddCommand(listCmd)
}

// collection is one skillbook file with a display label.
type collection struct {
	Label string
	Path  string
}

// enumerate lists every existing collection in hierarchy order.
func enumerate(hierarchy skillbook.Hierarchy) []collection {
	collections := []collection{{Label: "Universal", Path: hierarchy.Universal()}}

	for _, dir := range []struct{ label, path string }{
		{"Language", filepath.Join(hierarchy.BaseDir, hierarchy.LanguagesDir)},
		{"Framework", filepath.Join(hierarchy.BaseDir, hierarchy.FrameworksDir)},
	} {
		entries, err := os.ReadDir(dir.path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".json")
			collections = append(collections, collection{
				Label: dir.label + "/" + name,
				Path:  filepath.Join(dir.path, entry.Name()),
			})
		}
	}
	return collections
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := skillbook.NewStore()
	total := 0

	for _, col := range enumerate(cfg.SkillbookHierarchy()) {
		skills := store.Load(col.Path)
		if listSection != "" {
			filtered := skills[:0]
			for _, skill := range skills {
				if skill.Section == listSection {
					filtered = append(filtered, skill)
				}
			}
			skills = filtered
		}
		if len(skills) == 0 {
			continue
		}

		printer.Header("%s (%d skills)", col.Label, len(skills))
		for _, skill := range skills {
			printer.Printf("  [%s] %s\n", skill.ID, skill.Content)
			printer.Field("score", "+%d/-%d (net %d)", skill.Helpful, skill.Harmful, skill.NetScore())
		}
		printer.Println()
		total += len(skills)
	}

	if total == 0 {
		printer.Info("No skills learned yet. Run 'lore serve' alongside OpenCode to start learning.\n")
		return nil
	}
	printer.Info("%s\n", fmt.Sprintf("%d skills total", total))
	return nil
}
