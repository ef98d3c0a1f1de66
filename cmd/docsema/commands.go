package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"docsema/internal/commands"
)

type commandJSON struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Args      int    `json:"args"`
	Render    string `json:"render,omitempty"`
	Singleton string `json:"singleton,omitempty"`
	Requires  string `json:"requires,omitempty"`
	End       string `json:"end,omitempty"`
	Param     bool   `json:"param,omitempty"`
	TParam    bool   `json:"tparam,omitempty"`
	Builtin   bool   `json:"builtin"`
}

func newCommandsCmd(g *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List the effective documentation command table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := g.cfg.Registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				list := make([]commandJSON, 0, len(reg.Names()))
				for _, info := range reg.All() {
					list = append(list, toCommandJSON(info))
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			case "table":
				fmt.Fprintln(out, commandTable(reg, g.useColor(out)))
				return nil
			}
			return fmt.Errorf("unknown format: %s (must be table or json)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format (table|json)")
	return cmd
}

func toCommandJSON(info *commands.Info) commandJSON {
	out := commandJSON{
		Name:      info.Name,
		Kind:      info.Kind.String(),
		Args:      info.NumArgs,
		Singleton: info.Singleton.String(),
		Requires:  info.Requires.String(),
		End:       info.EndName,
		Param:     info.IsParam,
		TParam:    info.IsTParam,
		Builtin:   info.Builtin,
	}
	if info.Kind == commands.KindInline {
		out.Render = info.Render.String()
	}
	return out
}

// lipgloss/table передаёт строку заголовка в StyleFunc как row 0.
const headerRow = 0

func commandTable(reg *commands.Registry, color bool) string {
	header := lipgloss.NewStyle().Bold(color).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "KIND", "ARGS", "DETAILS", "ORIGIN").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == headerRow {
				return header
			}
			return cell
		})
	for _, info := range reg.All() {
		origin := "config"
		if info.Builtin {
			origin = "builtin"
		}
		t.Row(`\`+info.Name, info.Kind.String(), strconv.Itoa(info.NumArgs), commandDetails(info), origin)
	}
	return t.String()
}

func commandDetails(info *commands.Info) string {
	var parts []string
	if info.Kind == commands.KindInline {
		parts = append(parts, "render="+info.Render.String())
	}
	if s := info.Singleton.String(); s != "" {
		parts = append(parts, "singleton="+s)
	}
	if r := info.Requires.String(); r != "" {
		parts = append(parts, "requires="+r)
	}
	if info.EndName != "" {
		parts = append(parts, `end=\`+info.EndName)
	}
	if info.IsParam {
		parts = append(parts, "param")
	}
	if info.IsTParam {
		parts = append(parts, "tparam")
	}
	if info.EmptyAllowed {
		parts = append(parts, "empty-ok")
	}
	return strings.Join(parts, " ")
}
