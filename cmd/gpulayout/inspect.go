package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/gpu-layout/compiler"
	"github.com/wippyai/gpu-layout/schema"
)

var interactive bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [schema]",
	Short: "Show computed offsets, sizes and tags",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse layouts in a terminal UI")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
)

func runInspect(cmd *cobra.Command, args []string) error {
	targets, err := resolveTargets(args, "", configPath)
	if err != nil {
		return err
	}
	t := targets[0]
	res, err := compileTarget(t)
	if err != nil {
		return err
	}

	views := layoutViews(res)
	if interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("--interactive needs a terminal")
		}
		return runInteractive(t.Schema, views)
	}

	out := cmd.OutOrStdout()
	for _, v := range views {
		fmt.Fprintln(out, v.title())
		fmt.Fprintln(out, renderTable(v))
		fmt.Fprintln(out)
	}
	return nil
}

// declView is the flattened layout of one declaration, shared by the table
// and the interactive browser.
type declView struct {
	name    string
	kind    string
	summary string
	headers []string
	rows    [][]string
}

func (v declView) title() string {
	return v.kind + " " + v.name + " (" + v.summary + ")"
}

// layoutViews lists declarations in source order.
func layoutViews(res *compiler.Result) []declView {
	var views []declView
	for _, d := range res.Table.Decls() {
		switch d.(type) {
		case *schema.StructDef:
			info := res.Struct(d.DeclName())
			if info == nil {
				continue
			}
			v := declView{
				name:    info.Name,
				kind:    "struct",
				summary: "size " + u32(info.Size) + ", align " + u32(info.Align),
				headers: []string{"Field", "Type", "Offset", "Size", "Align"},
			}
			if info.Tagged {
				v.kind = "tagged struct"
				v.rows = append(v.rows, []string{"(tag)", "u32", "0", "4", "4"})
			}
			for _, f := range info.Fields {
				v.rows = append(v.rows, []string{f.Name, f.Type.String(), u32(f.Offset), u32(f.Size), u32(f.Align)})
			}
			views = append(views, v)

		case *schema.EnumDef:
			info := res.Enum(d.DeclName())
			if info == nil {
				continue
			}
			v := declView{
				name:    info.Name,
				kind:    "enum",
				summary: "size " + u32(info.Size) + ", " + u32(info.BodyWords) + " body words",
				headers: []string{"Variant", "Tag", "Payload", "Offset", "Bytes"},
			}
			for _, vi := range info.Variants {
				if len(vi.Fields) == 0 {
					v.rows = append(v.rows, []string{vi.Name, u32(vi.Tag), "-", "-", u32(vi.Bytes)})
					continue
				}
				for _, f := range vi.Fields {
					v.rows = append(v.rows, []string{vi.Name, u32(vi.Tag), f.Type.String(), u32(f.Offset), u32(vi.Bytes)})
				}
			}
			views = append(views, v)
		}
	}
	return views
}

func renderTable(v declView) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(v.headers...).
		Rows(v.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func u32(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
