package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/vault"
)

func newVaultCommand(ctx *commandContext) *cobra.Command {
	vaultCmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage encrypted credentials and access codes",
	}

	vaultCmd.AddCommand(newVaultSaveCommand(ctx))
	vaultCmd.AddCommand(newVaultListCommand(ctx))
	vaultCmd.AddCommand(newVaultDeleteCommand(ctx))
	vaultCmd.AddCommand(newVaultWipeCommand(ctx))
	vaultCmd.AddCommand(newVaultIssueCodeCommand(ctx))
	vaultCmd.AddCommand(newVaultVerifyCodeCommand(ctx))

	return vaultCmd
}

func newVaultSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		user   string
		kind   string
		value  string
		master string
	)

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save or overwrite an encrypted secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withVault(func(vs *vault.Store) error {
				secretKind := vault.Kind(kind)
				if err := vs.SaveSecret(cmd.Context(), user, args[0], secretKind, value, master); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "secret %q saved for %s\n", args[0], user)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Owner of the secret")
	cmd.Flags().StringVar(&kind, "kind", string(vault.KindPassword), "Secret kind: password or card")
	cmd.Flags().StringVar(&value, "value", "", "Secret payload")
	cmd.Flags().StringVar(&master, "master", "", "Master password used for encryption")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("master")
	return cmd
}

func newVaultListCommand(ctx *commandContext) *cobra.Command {
	var (
		user   string
		master string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List secrets, decrypted when a master password is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withVault(func(vs *vault.Store) error {
				secrets, err := vs.Secrets(cmd.Context(), user, master)
				if err != nil {
					return err
				}
				if len(secrets) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No secrets stored")
					return nil
				}
				rows := make([][]string, 0, len(secrets))
				for _, secret := range secrets {
					rows = append(rows, []string{
						secret.Name,
						string(secret.Kind),
						secret.Value,
						yesNo(secret.Masked),
						secret.UpdatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Name", "Kind", "Value", "Masked", "Updated"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Owner of the secrets")
	cmd.Flags().StringVar(&master, "master", "", "Master password; omit to list masked values only")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newVaultDeleteCommand(ctx *commandContext) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete one secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withVault(func(vs *vault.Store) error {
				removed, err := vs.DeleteSecret(cmd.Context(), user, args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("secret %q not found for %s", args[0], user)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "secret %q deleted\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Owner of the secret")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newVaultWipeCommand(ctx *commandContext) *cobra.Command {
	var (
		user    string
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every secret and access code for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("wipe is irreversible; re-run with --yes to confirm")
			}
			return ctx.withVault(func(vs *vault.Store) error {
				counts, err := vs.WipeUser(cmd.Context(), user)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wiped %d passwords, %d cards, %d access codes for %s\n",
					counts.Passwords, counts.Cards, counts.AccessCodes, user)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User to wipe")
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the wipe")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newVaultIssueCodeCommand(ctx *commandContext) *cobra.Command {
	var (
		user  string
		scope string
	)

	cmd := &cobra.Command{
		Use:   "issue-code",
		Short: "Issue a one-time access code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withVault(func(vs *vault.Store) error {
				var (
					code string
					err  error
				)
				if scope == "" {
					code, err = vs.IssueCode(cmd.Context(), user)
				} else {
					code, err = vs.IssueScopedCode(cmd.Context(), user, scope)
				}
				if err != nil {
					return err
				}
				// The code is shown exactly once; only its hash is stored.
				fmt.Fprintln(cmd.OutOrStdout(), code)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User the code authenticates")
	cmd.Flags().StringVar(&scope, "scope", "", "Optional scope; scoped codes expire after 30 minutes")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newVaultVerifyCodeCommand(ctx *commandContext) *cobra.Command {
	var (
		user  string
		scope string
	)

	cmd := &cobra.Command{
		Use:   "verify-code <code>",
		Short: "Verify a one-time access code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withVault(func(vs *vault.Store) error {
				result, err := vs.VerifyCode(cmd.Context(), user, scope, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "outcome: %s\n", result.Outcome)
				if result.Outcome == vault.OutcomeWrongCode {
					fmt.Fprintf(out, "remaining attempts: %d\n", result.RemainingAttempts)
				}
				if result.DataDeleted {
					fmt.Fprintf(out, "vault wiped: %d passwords, %d cards\n", result.Wiped.Passwords, result.Wiped.Cards)
				}
				if !result.Success {
					return fmt.Errorf("verification failed: %s", result.Outcome)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User the code authenticates")
	cmd.Flags().StringVar(&scope, "scope", "", "Scope the code was issued for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
