package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lifelog-coach/internal/app"
	"lifelog-coach/internal/model"
)

var profilePatch struct {
	name   string
	age    int
	gender string
	height float64
	target float64
	goals  []string
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the user profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			p, err := a.Service.Profile()
			if err != nil {
				return err
			}
			return writeProfile(cmd, p)
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the user profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch model.ProfilePatch
		flags := cmd.Flags()
		if flags.Changed("name") {
			patch.Name = &profilePatch.name
		}
		if flags.Changed("age") {
			patch.Age = &profilePatch.age
		}
		if flags.Changed("gender") {
			g := model.Gender(profilePatch.gender)
			patch.Gender = &g
		}
		if flags.Changed("height") {
			patch.Height = &profilePatch.height
		}
		if flags.Changed("target-weight") {
			patch.TargetWeight = &profilePatch.target
		}
		if flags.Changed("goal") {
			patch.HealthGoals = &profilePatch.goals
		}

		return withApp(cmd.Context(), func(a *app.App) error {
			p, err := a.Service.UpdateProfile(cmd.Context(), patch)
			if err != nil {
				if _, getErr := a.Service.Profile(); getErr == nil {
					return err
				}
				// No profile yet.
				p, err = a.Service.SetProfile(cmd.Context(), patch.Apply(model.UserProfile{}))
				if err != nil {
					return err
				}
			}
			return writeProfile(cmd, p)
		})
	},
}

func writeProfile(cmd *cobra.Command, p model.UserProfile) error {
	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), p)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.ID)
	if p.Age > 0 {
		fmt.Fprintf(out, "Age: %d\n", p.Age)
	}
	if p.Gender != "" {
		fmt.Fprintf(out, "Gender: %s\n", p.Gender)
	}
	if p.Height > 0 {
		fmt.Fprintf(out, "Height: %.1fcm\n", p.Height)
	}
	if p.TargetWeight > 0 {
		fmt.Fprintf(out, "Target weight: %.1fkg\n", p.TargetWeight)
	}
	if len(p.HealthGoals) > 0 {
		fmt.Fprintf(out, "Goals: %s\n", strings.Join(p.HealthGoals, ", "))
	}
	return nil
}

func init() {
	f := profileSetCmd.Flags()
	f.StringVar(&profilePatch.name, "name", "", "Display name")
	f.IntVar(&profilePatch.age, "age", 0, "Age in years")
	f.StringVar(&profilePatch.gender, "gender", "", "male, female or other")
	f.Float64Var(&profilePatch.height, "height", 0, "Height in cm")
	f.Float64Var(&profilePatch.target, "target-weight", 0, "Target weight in kg")
	f.StringSliceVar(&profilePatch.goals, "goal", nil, "Health goal (repeatable)")

	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
