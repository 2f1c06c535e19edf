// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/manhwa-translate/internal/project"
	"github.com/pdiddy/manhwa-translate/pkg/types"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage uploaded documents and their runs",
	Long: `Project keeps a local SQLite record of uploaded PDFs and the outcome of
their pipeline runs. Create a project from a PDF, run it with
"run --project ID", then check its status or fetch the translated PDF.`,
}

// --- create subcommand ---

var projectCreateCmd = &cobra.Command{
	Use:   "create file.pdf",
	Short: "Upload a PDF as a new pending project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		title, _ := cmd.Flags().GetString("title")
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}

		p, err := store.Create(cmd.Context(), title, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", p.ID, p.PDFPath)
		return nil
	},
}

// --- status subcommand ---

var projectStatusCmd = &cobra.Command{
	Use:   "status ID",
	Short: "Print a project record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

// --- list subcommand ---

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		status, _ := cmd.Flags().GetString("status")
		projects, err := store.List(cmd.Context(), project.ListOptions{Status: types.ProjectStatus(status)})
		if err != nil {
			return err
		}
		return formatProjectList(projects)
	},
}

func formatProjectList(projects []types.Project) error {
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-10s  %-30s  %s\n", "ID", "Status", "Title", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, p := range projects {
		title := p.Title
		if len([]rune(title)) > 30 {
			title = string([]rune(title)[:27]) + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-10s  %-30s  %s\n",
			p.ID, p.Status, title, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(os.Stdout, "\n%d projects\n", len(projects))
	return nil
}

// --- export subcommand ---

var projectExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all projects to YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		format, _ := cmd.Flags().GetString("format")
		status, _ := cmd.Flags().GetString("status")
		path, err := store.Export(cmd.Context(), format, project.ListOptions{Status: types.ProjectStatus(status)})
		if err != nil {
			return err
		}
		fmt.Println("Exported to", path)
		return nil
	},
}

// --- download subcommand ---

var projectDownloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Copy a project's translated PDF to a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		dest, _ := cmd.Flags().GetString("to")
		path, err := project.Download(p, dest)
		if err != nil {
			return err
		}
		fmt.Println("Saved", path)
		return nil
	},
}

// --- shared helpers ---

func openProjectStore(cmd *cobra.Command) (*project.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return project.Open(cfg.Project)
}

func init() {
	projectCreateCmd.Flags().String("title", "", "project title (default: file name)")

	projectListCmd.Flags().String("status", "", "filter by status: pending, processing, completed, failed")

	projectExportCmd.Flags().String("format", project.FormatYAML, "export format: yaml or json")
	projectExportCmd.Flags().String("status", "", "filter by status for partial export")

	projectDownloadCmd.Flags().String("to", ".", "destination directory")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectStatusCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectExportCmd)
	projectCmd.AddCommand(projectDownloadCmd)

	rootCmd.AddCommand(projectCmd)
}
