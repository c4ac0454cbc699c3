package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qcr/internal/audit"
	"qcr/internal/auth"
	"qcr/internal/config"
)

// passwordEnv supplies the password when --password is not given, to keep
// it out of shell history.
const passwordEnv = config.EnvPrefix + "_USER_PASSWORD"

func newUserCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	cmd.AddCommand(newUserCreateCmd(o))
	return cmd
}

func newUserCreateCmd(o *options) *cobra.Command {
	var nu auth.NewUser
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Example: `  qcr user create --username admin --role admin --password 'S3cure!pass'
  QCR_USER_PASSWORD='S3cure!pass' qcr user create --username qa`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if nu.Password == "" {
				nu.Password = os.Getenv(passwordEnv)
			}
			if nu.Password == "" {
				return errors.New("a password is required: pass --password or set " + passwordEnv)
			}

			cfg, log, err := o.load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := auth.CreateUser(ctx, db, nu)
			if err != nil {
				return fmt.Errorf("create user %q: %w", nu.Username, err)
			}
			audit.NewRecorder(db, nil, log).Record(ctx, "system", audit.ActionCreate, "users", u.ID,
				"Created user "+u.Username+" ("+u.Role+") from the command line")

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&nu.Username, "username", "u", "", "Login name")
	cmd.Flags().StringVar(&nu.DisplayName, "display-name", "", "Display name")
	cmd.Flags().StringVarP(&nu.Password, "password", "p", "", "Password (or set "+passwordEnv+")")
	cmd.Flags().StringVarP(&nu.Role, "role", "r", "user", "Role: admin, user or readonly")
	if err := cmd.MarkFlagRequired("username"); err != nil {
		panic(err)
	}
	return cmd
}
