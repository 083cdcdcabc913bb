package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/lore/internal/config"
	"github.com/dyluth/lore/internal/printer"
	"github.com/dyluth/lore/internal/resolver"
	"github.com/dyluth/lore/pkg/skillbook"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <skill-id> <helpful|harmful|neutral>",
	Short: "Reinforce or penalize a learned skill",
	Long: `Record feedback on a skill. Helpful reinforcements raise a skill's
net score (and eventually qualify it for promotion); harmful ones lower
it until injection stops surfacing the skill.

The skill ID may be a unique prefix, e.g. 'success-3' for
'success-00003'.`,
	Args: cobra.ExactArgs(2),
	RunE: runFeedback,
}

var removeCmd = &cobra.Command{
	Use:   "remove <skill-id>",
	Short: "Delete a learned skill",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var editCmd = &cobra.Command{
	Use:   "edit <skill-id> <content>",
	Short: "Rewrite a skill's content",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(editCmd)
}

// findSkill resolves a skill ID prefix across every collection.
func findSkill(cfg *config.Config, store *skillbook.Store, shortID string) (resolver.Match, error) {
	var paths []string
	for _, col := range enumerate(cfg.SkillbookHierarchy()) {
		paths = append(paths, col.Path)
	}

	match, err := resolver.ResolveSkillID(store, paths, shortID)
	if err != nil {
		if ambiguous, ok := err.(*resolver.AmbiguousError); ok {
			printer.Println(resolver.FormatAmbiguousError(ambiguous))
		}
		return resolver.Match{}, err
	}
	return match, nil
}

func runFeedback(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	feedback := skillbook.Feedback(args[1])
	if err := feedback.Validate(); err != nil {
		return err
	}

	store := skillbook.NewStore()
	match, err := findSkill(cfg, store, args[0])
	if err != nil {
		return err
	}

	skill, err := store.TagSkill(match.Path, match.Skill.ID, feedback, 1)
	if err != nil {
		return err
	}
	printer.Success("recorded %s feedback on %s (net score now %d)\n",
		feedback, skill.ID, skill.NetScore())
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := skillbook.NewStore()
	match, err := findSkill(cfg, store, args[0])
	if err != nil {
		return err
	}

	removed, err := store.Remove(match.Path, match.Skill.ID)
	if err != nil {
		return err
	}
	if !removed {
		return printer.Error("Skill not found", "The skill disappeared between lookup and removal.", nil)
	}
	printer.Success("removed %s\n", match.Skill.ID)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Validator().Check(args[1]); err != nil {
		return printer.Error("Content rejected", err.Error(), []string{
			"Skills must be specific, evidence-backed lessons",
		})
	}

	store := skillbook.NewStore()
	match, err := findSkill(cfg, store, args[0])
	if err != nil {
		return err
	}

	skill, err := store.UpdateContent(match.Path, match.Skill.ID, args[1])
	if err != nil {
		return err
	}
	printer.Success("updated %s\n", skill.ID)
	return nil
}
