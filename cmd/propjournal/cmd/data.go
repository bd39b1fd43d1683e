package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/store"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export, import, back up and restore the whole store",
	Long: `Move the whole store in and out as a single JSON snapshot.

Import replaces the collections present in the snapshot and leaves the
others alone. A snapshot with any malformed collection is rejected and
nothing is written.

Examples:
  propjournal data export -o snapshot.json
  propjournal data import snapshot.json
  propjournal data backup
  propjournal data backups
  propjournal data restore backup_20240315_093000.json`,
}

var dataExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a snapshot of every collection",
	Args:  cobra.NoArgs,
	RunE:  runDataExport,
}

var dataImportCmd = &cobra.Command{
	Use:   "import <snapshot.json>",
	Short: "Replace collections from a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runDataImport,
}

var dataBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a timestamped snapshot to the backup directory",
	Args:  cobra.NoArgs,
	RunE:  runDataBackup,
}

var dataBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDataBackups,
}

var dataRestoreCmd = &cobra.Command{
	Use:   "restore <backup>",
	Short: "Restore a backup by file name or path",
	Args:  cobra.ExactArgs(1),
	RunE:  runDataRestore,
}

var dataExportOutput string

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataExportCmd)
	dataCmd.AddCommand(dataImportCmd)
	dataCmd.AddCommand(dataBackupCmd)
	dataCmd.AddCommand(dataBackupsCmd)
	dataCmd.AddCommand(dataRestoreCmd)

	dataExportCmd.Flags().StringVarP(&dataExportOutput, "output", "o", "", "output file (default stdout)")
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func collectionNames(cs []store.Collection) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func runDataExport(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	data, err := st.ExportJSON()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if dataExportOutput == "" {
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := writeFile(dataExportOutput, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported to %s\n", dataExportOutput)
	return nil
}

func runDataImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	st, err := app.store()
	if err != nil {
		return err
	}
	cs, err := st.Import(data)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d collection(s): %s\n", len(cs), collectionNames(cs))
	return nil
}

func backupDir() (string, error) {
	cfg, err := app.config()
	if err != nil {
		return "", err
	}
	return cfg.BackupDir(), nil
}

func runDataBackup(cmd *cobra.Command, args []string) error {
	dir, err := backupDir()
	if err != nil {
		return err
	}
	st, err := app.store()
	if err != nil {
		return err
	}
	path, err := st.Backup(dir)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Backup written to %s\n", path)
	return nil
}

func runDataBackups(cmd *cobra.Command, args []string) error {
	dir, err := backupDir()
	if err != nil {
		return err
	}
	backups, err := store.ListBackups(dir)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No backups in %s\n", dir)
		return nil
	}
	table := newTable(cmd.OutOrStdout(), "Name", "Taken", "Size")
	for _, b := range backups {
		table.Append([]string{b.Name, b.Taken.Format("2006-01-02 15:04:05"), fmt.Sprintf("%d B", b.Size)})
	}
	table.Render()
	return nil
}

func runDataRestore(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		dir, derr := backupDir()
		if derr != nil {
			return derr
		}
		path = filepath.Join(dir, filepath.Base(args[0]))
	}
	st, err := app.store()
	if err != nil {
		return err
	}
	cs, err := st.Restore(path)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored %d collection(s) from %s\n", len(cs), filepath.Base(path))
	return nil
}
