package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sadopc/lapse/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change tracker settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Idle threshold: %ds\n", cfg.IdleThresholdSeconds)
		fmt.Printf("Break reminder: every %ds\n", cfg.BreakReminderInterval)
		fmt.Printf("Notifications: %v\n", cfg.NotificationsEnabled)
		fmt.Printf("Password gate: %v\n", cfg.PasswordHash != "")

		fmt.Println("\nGoals:")
		if len(cfg.Goals) == 0 {
			fmt.Println("  (none)")
		}
		for category, hours := range cfg.Goals {
			fmt.Printf("  %s: %gh/day\n", category, hours)
		}

		fmt.Println("\nCustom rules (checked in order):")
		if len(cfg.CustomRules) == 0 {
			fmt.Println("  (none)")
		}
		for i, r := range cfg.CustomRules {
			fmt.Printf("  %d. %q -> %s\n", i+1, r.Pattern, r.Category)
		}

		fmt.Printf("\nExcluded apps: %s\n", orNone(cfg.ExcludedApps))
		fmt.Printf("Focus mode blocks: %s\n", orNone(cfg.FocusModeBlocked))
		fmt.Printf("Productive categories: %s\n", orNone(cfg.ProductiveCategories))

		if len(cfg.Projects) > 0 {
			fmt.Println("\nProjects:")
			for name, p := range cfg.Projects {
				if p.Description != "" {
					fmt.Printf("  %s: %s\n", name, p.Description)
				} else {
					fmt.Printf("  %s\n", name)
				}
			}
		}
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit core settings interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		idle := strconv.Itoa(cfg.IdleThresholdSeconds)
		breakEvery := strconv.Itoa(cfg.BreakReminderInterval)
		notify := cfg.NotificationsEnabled

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Idle threshold (seconds)").
					Description("Stop counting after this long without input").
					Value(&idle).
					Validate(validateSeconds),
				huh.NewInput().
					Title("Break reminder interval (seconds)").
					Description("0 disables break reminders").
					Value(&breakEvery).
					Validate(validateSeconds),
				huh.NewConfirm().
					Title("Desktop notifications").
					Value(&notify),
			),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		idleSecs, _ := strconv.Atoi(idle)
		breakSecs, _ := strconv.Atoi(breakEvery)
		if err := cfg.SetIdleThreshold(idleSecs); err != nil {
			return err
		}
		cfg.BreakReminderInterval = breakSecs
		cfg.NotificationsEnabled = notify
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println("Settings saved.")
		return nil
	},
}

var configGoalCmd = &cobra.Command{
	Use:   "goal <category> <hours>",
	Short: "Set a daily goal for a category (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("hours must be a number: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.SetGoal(args[0], hours); err != nil {
			return err
		}
		if hours == 0 {
			fmt.Printf("Removed goal for %s.\n", args[0])
		} else {
			fmt.Printf("Goal set: %s %gh/day.\n", args[0], hours)
		}
		return nil
	},
}

var configRuleRemove bool

var configRuleCmd = &cobra.Command{
	Use:   "rule <pattern> [category]",
	Short: "Add or remove a classification rule",
	Long: `Adds a rule mapping any app whose name contains <pattern> to
<category>. Rules are checked before the built-in tables, in the order
they were added. With --remove, deletes the rule for <pattern>.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if configRuleRemove {
			if err := cfg.RemoveRule(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed rule for %q.\n", args[0])
			return nil
		}
		if len(args) != 2 {
			return errors.New("usage: lapse config rule <pattern> <category>")
		}
		if err := cfg.AddRule(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Rule added: %q -> %s.\n", args[0], args[1])
		return nil
	},
}

var configExcludeCmd = &cobra.Command{
	Use:   "exclude <pattern>",
	Short: "Never record apps matching a pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.AddExclusion(args[0]); err != nil {
			return err
		}
		fmt.Printf("Apps matching %q will not be recorded.\n", args[0])
		return nil
	},
}

var configBlockRemove bool

var configBlockCmd = &cobra.Command{
	Use:   "block <pattern>",
	Short: "Add or remove a focus-mode block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if configBlockRemove {
			if err := cfg.RemoveFocusBlock(args[0]); err != nil {
				return err
			}
			fmt.Printf("Unblocked %q.\n", args[0])
			return nil
		}
		if err := cfg.AddFocusBlock(args[0]); err != nil {
			return err
		}
		fmt.Printf("Blocked %q during focus mode.\n", args[0])
		return nil
	},
}

var configProjectDesc string

var configProjectCmd = &cobra.Command{
	Use:   "project <name>",
	Short: "Register a project tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.AddProject(args[0], config.Project{Description: configProjectDesc}); err != nil {
			return err
		}
		fmt.Printf("Project %q registered.\n", args[0])
		return nil
	},
}

var configPasswordCmd = &cobra.Command{
	Use:   "password [password]",
	Short: "Set or clear the stats password",
	Long: `Requires the password before report, insights and export run. With
no argument the password is cleared.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		password := ""
		if len(args) == 1 {
			password = args[0]
		}
		if err := cfg.SetPassword(password); err != nil {
			return err
		}
		if password == "" {
			fmt.Println("Password cleared.")
		} else {
			fmt.Println("Password set.")
		}
		return nil
	},
}

func init() {
	configRuleCmd.Flags().BoolVar(&configRuleRemove, "remove", false, "remove the rule instead of adding")
	configBlockCmd.Flags().BoolVar(&configBlockRemove, "remove", false, "remove the block instead of adding")
	configProjectCmd.Flags().StringVarP(&configProjectDesc, "description", "d", "", "project description")

	configCmd.AddCommand(configShowCmd, configEditCmd, configGoalCmd,
		configRuleCmd, configExcludeCmd, configBlockCmd,
		configProjectCmd, configPasswordCmd)
	rootCmd.AddCommand(configCmd)
}

func validateSeconds(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of seconds")
	}
	if n < 0 {
		return errors.New("must be >= 0")
	}
	return nil
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
