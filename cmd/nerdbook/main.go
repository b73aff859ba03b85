// nerdbook is a terminal notebook: Go code cells and markdown cells in a
// virtualized scrolling list, executed in-process by a yaegi kernel.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nerdbook/internal/config"
	"nerdbook/internal/export"
	"nerdbook/internal/logging"
	"nerdbook/internal/notebook"
	"nerdbook/internal/store"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "nerdbook [notebook.yaml]",
	Short: "nerdbook - a terminal notebook for Go",
	Long: `nerdbook renders a notebook of Go code cells and markdown cells in the
terminal. Code cells execute in-process through the yaegi interpreter; the
cell list is virtualized, so notebooks of any length stay cheap to scroll.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stateDir := filepath.Join(os.Getenv("HOME"), ".local", "state", "nerdbook")
		if err := logging.Initialize(stateDir, debug); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var path string
		var doc *notebook.Document
		if len(args) == 1 {
			path = args[0]
			doc, err = store.Load(path)
			if err != nil {
				return err
			}
		} else {
			doc = starterDocument()
		}

		return runApp(cfg, doc, path)
	},
}

var renderWidth int

var renderCmd = &cobra.Command{
	Use:   "render <notebook.yaml>",
	Short: "Print a notebook as styled text without opening the UI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		doc, err := store.Load(args[0])
		if err != nil {
			return err
		}
		r, err := export.New(cfg, renderWidth)
		if err != nil {
			return err
		}
		out, err := r.Render(doc)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// starterDocument is shown when no notebook file is given.
func starterDocument() *notebook.Document {
	doc := notebook.NewDocument()
	doc.Append(notebook.NewCell(notebook.MarkupCell,
		"# Welcome to nerdbook\n\nPress `r` to run a code cell, `e` to edit a markdown cell, `s` to save."))
	doc.Append(notebook.NewCell(notebook.CodeCell,
		"fmt.Println(\"hello, notebook\")"))
	return doc
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	renderCmd.Flags().IntVar(&renderWidth, "width", 80, "wrap width in columns")
	rootCmd.AddCommand(renderCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
