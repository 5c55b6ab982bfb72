package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/speakdoc/speakdoc/internal/config"
)

// profilesCmd manages saved settings profiles. Profiles are JSON; the
// export and import subcommands translate to and from INI for hand editing.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage saved settings profiles",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		store, err := config.DefaultStore()
		if err != nil {
			return err
		}
		names, err := store.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No saved profiles. Use --save-config to create one.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a settings profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := config.DefaultStore()
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted profile:", args[0])
		return nil
	},
}

var profilesExportCmd = &cobra.Command{
	Use:   "export <name> <file.ini>",
	Short: "Export a profile to an INI file",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := config.DefaultStore()
		if err != nil {
			return err
		}
		settings, err := store.Load(args[0])
		if err != nil {
			return err
		}
		if err := config.ExportINI(args[1], settings); err != nil {
			return err
		}
		fmt.Println("Exported to:", args[1])
		return nil
	},
}

var profilesImportCmd = &cobra.Command{
	Use:   "import <name> <file.ini>",
	Short: "Import a profile from an INI file",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := config.DefaultStore()
		if err != nil {
			return err
		}
		settings, err := config.ImportINI(args[1])
		if err != nil {
			return err
		}
		if err := store.Save(args[0], settings); err != nil {
			return err
		}
		fmt.Println("Imported profile:", args[0])
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesDeleteCmd, profilesExportCmd, profilesImportCmd)
}
