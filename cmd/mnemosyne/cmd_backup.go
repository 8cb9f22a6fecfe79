package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/mnemosyne/internal/backup"
	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export every stored blob to a backup file",
		Long: `Backup the saved run, the seed history and the assessment history to a
compressed, checksummed file.

Default location: <data dir>/backups/mnemosyne-backup-YYYYMMDD-HHMMSS.mmm.json.gz
Keeps the most recent backup.max_count files (default: 10).

Examples:
  mnemosyne backup                              # Backup to the default location
  mnemosyne backup --output my-backup.json.gz   # Backup to a specific file
  mnemosyne backup list                         # List all backups
  mnemosyne backup verify <file>                # Verify backup integrity
  mnemosyne backup restore <file> --mode replace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath, _ := cmd.Flags().GetString("output")

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			dir := backup.DefaultBackupDir(env.dataDir)
			if outputPath == "" {
				outputPath = backup.GenerateBackupPath(dir, time.Now())
			}

			result, err := backup.Backup(cmd.Context(), env.store, outputPath, time.Now())
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			// Retention only applies to the managed directory
			if filepath.Dir(outputPath) == dir {
				policy := &backup.CountPolicy{MaxCount: env.cfg.Backup.MaxCount}
				if _, err := backup.ApplyRetention(dir, policy); err != nil {
					env.logger.Warn("failed to apply retention", "error", err)
				}
			}

			if env.jsonOut {
				var sizeBytes int64
				if info, err := os.Stat(outputPath); err == nil {
					sizeBytes = info.Size()
				}
				return env.printJSON(map[string]interface{}{
					"path":       outputPath,
					"blob_count": len(result.Blobs),
					"version":    result.Version,
					"size_bytes": sizeBytes,
				})
			}
			fmt.Fprintf(env.out, "Backup created: %d blobs\n", len(result.Blobs))
			fmt.Fprintf(env.out, "  Path: %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output file path (default: auto-generated in <data dir>/backups/)")

	cmd.AddCommand(
		newBackupListCmd(),
		newBackupVerifyCmd(),
		newBackupRestoreCmd(),
	)
	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all backups with metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			_, dataDir, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := backup.DefaultBackupDir(dataDir)

			backups, err := backup.ListBackups(dir)
			if err != nil {
				return fmt.Errorf("failed to list backups: %w", err)
			}

			if jsonOut {
				if backups == nil {
					backups = []backup.BackupInfo{}
				}
				return printJSON(out, map[string]interface{}{
					"backups":     backups,
					"total_count": len(backups),
					"directory":   dir,
				})
			}

			if len(backups) == 0 {
				fmt.Fprintf(out, "No backups found in %s\n", dir)
				return nil
			}

			fmt.Fprintf(out, "Backups in %s:\n", dir)
			var totalSize int64
			for _, b := range backups {
				totalSize += b.Size
				fmt.Fprintf(out, "  %s  v%d  %s  %d blobs  %s\n",
					b.CreatedAt.Format("2006-01-02 15:04"),
					b.Version,
					formatBytes(b.Size),
					b.BlobCount,
					filepath.Base(b.Path),
				)
			}
			fmt.Fprintf(out, "Total: %d backups, %s\n", len(backups), formatBytes(totalSize))
			return nil
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a backup's checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			path := args[0]

			version, err := backup.DetectFormat(path)
			if err != nil {
				return err
			}
			if version == backup.FormatV1 {
				if _, err := backup.ReadBackup(path); err != nil {
					return err
				}
			} else if err := backup.VerifyChecksum(path); err != nil {
				return err
			}

			if jsonOut {
				return printJSON(out, map[string]interface{}{"path": path, "version": version, "valid": true})
			}
			fmt.Fprintf(out, "Backup OK (v%d): %s\n", version, path)
			return nil
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore blobs from a backup file",
		Long: `Restore from a backup file (V1 or V2 format, auto-detected).

Modes:
  merge   - Keep keys that already exist (default)
  replace - Make the store match the backup exactly`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := backup.Restore(cmd.Context(), env.store, args[0], backup.RestoreMode(mode))
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if env.jsonOut {
				return env.printJSON(result)
			}
			fmt.Fprintf(env.out, "Restore complete (mode: %s)\n", mode)
			fmt.Fprintf(env.out, "  Blobs: %d restored, %d skipped, %d removed\n", result.Restored, result.Skipped, result.Removed)
			return nil
		},
	}
	cmd.Flags().String("mode", string(backup.RestoreMerge), "Restore mode: merge or replace")
	return cmd
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b int64) string {
	const (
		kb = 1024
		mb = kb * 1024
	)
	switch {
	case b >= mb:
		return fmt.Sprintf("%.1fMB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.1fKB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%dB", b)
	}
}
