package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hollowpoint-games/accountsync/internal/model"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and update the player profile",
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileUnlockCmd())
	cmd.AddCommand(newProfileAdvanceCmd())
	cmd.AddCommand(newProfileGrantCmd())

	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cached player profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := app.Profiles.Current()
			if p == nil {
				p = app.Profiles.LoadCached()
			}
			if p == nil {
				return model.ErrNoSession
			}
			printProfile(p)
			return nil
		},
	}
}

func newProfileUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <cosmetic-id>",
		Short: "Unlock a cosmetic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireProfile(); err != nil {
				return err
			}
			if err := app.Profiles.UnlockCosmetic(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Unlocked %s\n", args[0])
			return nil
		},
	}
}

func newProfileAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Advance level progression by one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireProfile(); err != nil {
				return err
			}
			if err := app.Profiles.AdvanceLevel(cmd.Context()); err != nil {
				return err
			}
			p := app.Profiles.Current()
			fmt.Printf("Levels unlocked: %d\n", p.LevelsUnlocked)
			return nil
		},
	}
}

func newProfileGrantCmd() *cobra.Command {
	var amount int

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant (or deduct) currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireProfile(); err != nil {
				return err
			}
			if err := app.Profiles.GrantMoney(cmd.Context(), amount); err != nil {
				return err
			}
			p := app.Profiles.Current()
			fmt.Printf("Balance: %d\n", p.Money)
			return nil
		},
	}

	cmd.Flags().IntVar(&amount, "amount", 0, "Amount to grant; negative deducts")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// requireProfile hydrates the store from the cache so profile commands work
// across CLI invocations without an explicit restore.
func requireProfile() error {
	if app.Profiles.Current() != nil {
		return nil
	}
	if app.Profiles.LoadCached() == nil {
		return model.ErrNoSession
	}
	token, err := cfg.LoadToken()
	if err != nil {
		return err
	}
	app.Profiles.SetAccessToken(token)
	return nil
}

func printProfile(p *model.PlayerProfile) {
	kind := "registered"
	if p.IsGuest {
		kind = "guest"
	}
	fmt.Printf("User:       %s (%s)\n", p.UserID, kind)
	fmt.Printf("Name:       %s\n", p.DisplayName)
	if p.Email != "" {
		fmt.Printf("Email:      %s\n", p.Email)
	}
	fmt.Printf("Levels:     %d\n", p.LevelsUnlocked)
	fmt.Printf("Money:      %d\n", p.Money)
	fmt.Printf("Cosmetics:  %s\n", formatCosmetics(p.UnlockedCosmetics))
}

func formatCosmetics(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
