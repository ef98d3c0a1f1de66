package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"docsema/internal/comment"
	"docsema/internal/diagfmt"
	"docsema/internal/driver"
)

func newDumpCmd(g *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump [flags] <file.dact>",
		Short: "Print the comment trees built from an action script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "tree" && format != "json" {
				return fmt.Errorf("unknown format: %s (must be tree or json)", format)
			}
			table, err := g.cfg.Registry()
			if err != nil {
				return err
			}
			fs, res, err := driver.CheckFile(cmd.Context(), args[0], driver.Options{
				Table:          table,
				MaxDiagnostics: g.maxDiagnostics,
				Logger:         g.logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				roots := make([]comment.NodeID, len(res.Comments))
				for i, c := range res.Comments {
					roots[i] = c.Root
				}
				if err := diagfmt.FormatCommentJSON(out, res.Nodes, roots, fs); err != nil {
					return err
				}
			} else {
				for i, c := range res.Comments {
					if i > 0 {
						fmt.Fprintln(out)
					}
					header := fmt.Sprintf("comment #%d", i+1)
					if c.Decl != nil {
						header += fmt.Sprintf(" on %s %s", c.Decl.DeclKind, c.Decl.DeclName)
					}
					fmt.Fprintln(out, header)
					if err := diagfmt.FormatCommentPretty(out, res.Nodes, c.Root, fs); err != nil {
						return err
					}
				}
			}

			if !g.quiet {
				if err := diagfmt.Short(cmd.ErrOrStderr(), res.Bag, fs, false); err != nil {
					return err
				}
			}
			if res.Bag.HasErrors() {
				return errDiagnostics
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "tree", "output format (tree|json)")
	return cmd
}
