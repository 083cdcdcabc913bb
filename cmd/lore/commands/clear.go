package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/pkg/skillbook"
)

var (
	clearScope   string
	clearName    string
	clearConfirm bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Erase all skills in a collection",
	Long: `Erase every skill in one collection. This is destructive and
refused without --confirm.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().StringVar(&clearScope, "scope", "", "Collection scope: universal, language or framework")
	clearCmd.Flags().StringVar(&clearName, "name", "", "Language or framework name (required for those scopes)")
	clearCmd.Flags().BoolVar(&clearConfirm, "confirm", false, "Actually erase the collection")
	clearCmd.MarkFlagRequired("scope")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := resolveCollection(cfg, clearScope, clearName)
	if err != nil {
		return err
	}

	store := skillbook.NewStore()
	count := len(store.Load(path))

	if err := store.Clear(path, clearConfirm); err != nil {
		return printer.Error(
			"Refusing to clear collection",
			err.Error(),
			[]string{"Re-run with --confirm to erase it"},
		)
	}

	printer.Success("cleared %d skills from %s\n", count, path)
	return nil
}
