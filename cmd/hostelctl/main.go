package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/config"
	"github.com/Ostech2/uhsms/internal/database"
	"github.com/Ostech2/uhsms/internal/services"
)

// dbOpener returns the database a command operates on.
type dbOpener func() (*gorm.DB, error)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := config.Load()
	rootCmd := newRootCmd(cfg, func() (*gorm.DB, error) { return database.Connect(cfg) })
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, open dbOpener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hostelctl",
		Short:         "Hostel management maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		migrateCmd(open),
		seedCmd(cfg, open),
		createUserCmd(open),
	)
	return rootCmd
}

func migrateCmd(open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration completed")
			return nil
		},
	}
}

func seedCmd(cfg *config.Config, open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the initial admin and the default inventory categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			if err := database.SeedAdmin(db, cfg); err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			if err := database.SeedCategories(db); err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Seed completed")
			return nil
		},
	}
}

func createUserCmd(open dbOpener) *cobra.Command {
	var in services.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user profile with a login",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := open()
			if err != nil {
				return err
			}
			users := &services.UserService{DB: db}
			profile, err := users.Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) as %s\n", profile.Email, profile.ID, profile.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&in.Role, "role", "", "Role: admin, male-warden or female-warden")
	cmd.Flags().StringVar(&in.AssignedHostel, "hostel", "", "Assigned hostel name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
