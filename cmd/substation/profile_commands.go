package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"substation/internal/scoring"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage custom score profiles",
	}

	cmd.AddCommand(newProfileListCommand(ctx))
	cmd.AddCommand(newProfileShowCommand(ctx))
	cmd.AddCommand(newProfileAddCommand(ctx))
	cmd.AddCommand(newProfileUpdateCommand(ctx))
	cmd.AddCommand(newProfileRemoveCommand(ctx))

	return cmd
}

func newProfileListCommand(ctx *commandContext) *cobra.Command {
	var mediaFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored score profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openProfileStore()
			if err != nil {
				return err
			}
			defer store.Close()

			profiles, err := store.List(cmd.Context(), mediaFilter)
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No profiles stored.")
				return nil
			}

			rows := make([][]string, 0, len(profiles))
			for _, profile := range profiles {
				rows = append(rows, []string{
					strconv.FormatInt(profile.ID, 10),
					profile.Name,
					profile.Media,
					strconv.Itoa(profile.Score),
					strconv.Itoa(len(profile.Conditions)),
				})
			}
			table := renderTable(
				[]tableColumn{
					numericCol("ID"), col("Name"), col("Media"),
					numericCol("Score"), numericCol("Conditions"),
				},
				rows,
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().StringVar(&mediaFilter, "media", "", "Filter by media kind (series or movies)")
	return cmd
}

func newProfileShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a profile and its conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProfileID(args[0])
			if err != nil {
				return err
			}

			store, err := ctx.openProfileStore()
			if err != nil {
				return err
			}
			defer store.Close()

			profile, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			fmt.Fprintf(stdout, "Profile %d: %s\n", profile.ID, profile.Name)
			fmt.Fprintf(stdout, "Media: %s\n", profile.Media)
			fmt.Fprintf(stdout, "Score: %d\n", profile.Score)
			if len(profile.Conditions) == 0 {
				fmt.Fprintln(stdout, "No conditions.")
				return nil
			}
			rows := make([][]string, 0, len(profile.Conditions))
			for i, condition := range profile.Conditions {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					condition.Type,
					condition.Value,
					boolYesNo(condition.Required),
					boolYesNo(condition.Negate),
				})
			}
			table := renderTable(
				[]tableColumn{
					numericCol("#"), col("Type"), col("Value"),
					col("Required"), col("Negate"),
				},
				rows,
			)
			fmt.Fprintln(stdout, table)
			return nil
		},
	}
}

func newProfileAddCommand(ctx *commandContext) *cobra.Command {
	var (
		mediaKind  string
		score      int
		conditions []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a score profile",
		Long: `Create a score profile. Conditions use the form
type:value[:required][:negate], where type is one of provider, uploader,
language or regex. Example:

  substation profile add trusted --media series --score 25 \
    --condition provider:opensubtitles \
    --condition uploader:SomeUploader:required`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseConditionFlags(conditions)
			if err != nil {
				return err
			}

			store, err := ctx.openProfileStore()
			if err != nil {
				return err
			}
			defer store.Close()

			profile, err := store.Create(cmd.Context(), args[0], mediaKind, score, parsed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile %d (%s, %s, score %d, %d conditions)\n",
				profile.ID, profile.Name, profile.Media, profile.Score, len(profile.Conditions))
			return nil
		},
	}

	cmd.Flags().StringVar(&mediaKind, "media", "", "Media kind the profile applies to (series or movies)")
	cmd.Flags().IntVar(&score, "score", 0, "Score added when the profile matches (negative to penalize)")
	cmd.Flags().StringArrayVar(&conditions, "condition", nil, "Condition as type:value[:required][:negate], repeatable")
	_ = cmd.MarkFlagRequired("media")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newProfileUpdateCommand(ctx *commandContext) *cobra.Command {
	var (
		score      int
		conditions []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a profile's score and conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProfileID(args[0])
			if err != nil {
				return err
			}
			parsed, err := parseConditionFlags(conditions)
			if err != nil {
				return err
			}

			store, err := ctx.openProfileStore()
			if err != nil {
				return err
			}
			defer store.Close()

			profile, err := store.Update(cmd.Context(), id, score, parsed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile %d (%s, score %d, %d conditions)\n",
				profile.ID, profile.Name, profile.Score, len(profile.Conditions))
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "New score value")
	cmd.Flags().StringArrayVar(&conditions, "condition", nil, "Condition as type:value[:required][:negate], repeatable")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newProfileRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a score profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProfileID(args[0])
			if err != nil {
				return err
			}

			store, err := ctx.openProfileStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %d\n", id)
			return nil
		},
	}
}

func parseProfileID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid profile id %q", arg)
	}
	return id, nil
}

var conditionTypes = map[string]bool{
	scoring.ConditionProvider: true,
	scoring.ConditionUploader: true,
	scoring.ConditionLanguage: true,
	scoring.ConditionRegex:    true,
}

// parseConditionFlags parses the type:value[:required][:negate] flag
// syntax. Regex values may contain colons, so only the modifiers at the
// tail are split off.
func parseConditionFlags(flags []string) ([]scoring.Condition, error) {
	conditions := make([]scoring.Condition, 0, len(flags))
	for _, raw := range flags {
		condition, err := parseCondition(raw)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, condition)
	}
	return conditions, nil
}

func parseCondition(raw string) (scoring.Condition, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return scoring.Condition{}, fmt.Errorf("invalid condition %q: want type:value[:required][:negate]", raw)
	}

	condType := strings.ToLower(strings.TrimSpace(parts[0]))
	if !conditionTypes[condType] {
		return scoring.Condition{}, fmt.Errorf("unknown condition type %q", parts[0])
	}

	rest := parts[1:]
	condition := scoring.Condition{Type: condType}
	for len(rest) > 1 {
		modifier := strings.ToLower(rest[len(rest)-1])
		if modifier == "required" {
			condition.Required = true
		} else if modifier == "negate" {
			condition.Negate = true
		} else {
			break
		}
		rest = rest[:len(rest)-1]
	}
	condition.Value = strings.Join(rest, ":")
	if strings.TrimSpace(condition.Value) == "" {
		return scoring.Condition{}, fmt.Errorf("condition %q has an empty value", raw)
	}
	return condition, nil
}

func boolYesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
