package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"docsema/internal/version"
)

type versionOptions struct {
	format   string
	showHash bool
	showDate bool
	showFull bool
}

func newVersionCmd(g *globalOptions) *cobra.Command {
	o := &versionOptions{}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show docsema build fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := strings.ToLower(o.format)
			if o.showFull {
				o.showHash, o.showDate = true, true
			}
			info := version.Collect()
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return renderVersionJSON(out, info, o)
			case "pretty":
				renderVersionPretty(out, info, o, g.useColor(out))
				return nil
			}
			return fmt.Errorf("unsupported format %q (must be pretty or json)", o.format)
		},
	}
	cmd.Flags().BoolVar(&o.showHash, "hash", false, "include git commit hash")
	cmd.Flags().BoolVar(&o.showDate, "date", false, "include build timestamp")
	cmd.Flags().BoolVar(&o.showFull, "full", false, "show every recorded bit of build metadata")
	cmd.Flags().StringVar(&o.format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

func renderVersionPretty(out io.Writer, info version.Info, o *versionOptions, color bool) {
	fmt.Fprintf(out, "docsema %s\n", version.Colored(info.Version, color))
	if o.showHash {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(info.GitCommit))
	}
	if o.showDate {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(info.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, info version.Info, o *versionOptions) error {
	payload := version.Info{Version: info.Version}
	if o.showHash {
		payload.GitCommit = valueOrUnknown(info.GitCommit)
	}
	if o.showDate {
		payload.BuildDate = valueOrUnknown(info.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
