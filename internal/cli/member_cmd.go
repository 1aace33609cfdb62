package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskseq/internal/cli/formatter"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/spf13/cobra"
)

func newMemberCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage household members",
	}
	cmd.AddCommand(
		newMemberAddCmd(a),
		newMemberListCmd(a),
		newMemberSkillCmd(a),
		newMemberRemoveCmd(a),
	)
	return cmd
}

func newMemberAddCmd(a *App) *cobra.Command {
	var id string
	role := roleFlag()

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a household member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := &domain.Member{
				ID:       id,
				FamilyID: a.familyID(),
				Name:     args[0],
				Role:     domain.MemberRole(role.String()),
			}
			if err := a.Members.Create(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) %s\n", formatter.Bold(m.Name), m.Role, formatter.TruncID(m.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Member id (default: generated)")
	cmd.Flags().Var(role, "role", "Role in the household")
	return cmd
}

func newMemberListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List household members",
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.Members.List(cmd.Context(), a.familyID())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatMembers(members))
			return nil
		},
	}
}

func newMemberSkillCmd(a *App) *cobra.Command {
	var level int
	var tags []string

	cmd := &cobra.Command{
		Use:   "skill <member> <category>",
		Short: "Record how good a member is at a category of tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveMemberID(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			m, err := a.Members.SetSkill(cmd.Context(), id, domain.Skill{
				Category: strings.TrimSpace(args[1]),
				Tags:     tags,
				Level:    level,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %d/5\n", formatter.Bold(m.Name), args[1], level)
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 3, "Skill level 1-5")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Other categories this skill covers")
	return cmd
}

func newMemberRemoveCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <member>",
		Short: "Remove a household member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveMemberID(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			if err := a.Members.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Member removed.")
			return nil
		},
	}
}
