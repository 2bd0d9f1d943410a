package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000")).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFA500")).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888")).
				Italic(true)
)

// StyledHelpPrinter creates a custom help printer with Lipgloss styling.
// Help for a command lists its arguments and flags followed by the global flags.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		root := ctx.Model.Node
		node := ctx.Selected()
		if node == nil {
			node = root
		}

		sb.WriteString(helpTitleStyle.Render("okng"))
		sb.WriteString("\n")
		desc := ctx.Model.Help
		if node != root && node.Help != "" {
			desc = node.Help
		}
		sb.WriteString(helpDescStyle.Render(desc))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		if node == root {
			sb.WriteString(fmt.Sprintf("%s <command> [flags]", ctx.Model.Name))
		} else {
			sb.WriteString(fmt.Sprintf("%s [flags]%s", node.FullPath(), positionalSummary(node)))
		}
		sb.WriteString("\n")

		if cmds := getCommands(node); len(cmds) > 0 {
			writeEntries(&sb, "Commands:", cmds, helpArgStyle)
		}
		if args := getArguments(node); len(args) > 0 {
			writeEntries(&sb, "Arguments:", args, helpArgStyle)
		}
		if node != root {
			if flags := getFlags(node.Flags, false); len(flags) > 0 {
				writeEntries(&sb, "Flags:", flags, helpFlagStyle)
			}
		}
		title := "Global Flags:"
		if node == root {
			title = "Flags:"
		}
		writeEntries(&sb, title, getFlags(root.Flags, true), helpFlagStyle)

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

type entry struct {
	name       string
	help       string
	defaultVal string
}

func writeEntries(sb *strings.Builder, title string, entries []entry, style lipgloss.Style) {
	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(style.Render(e.name))
		if e.help != "" {
			sb.WriteString("  ")
			sb.WriteString(e.help)
		}
		if e.defaultVal != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + e.defaultVal + ")"))
		}
		sb.WriteString("\n")
	}
}

func positionalSummary(node *kong.Node) string {
	var sb strings.Builder
	for _, arg := range node.Positional {
		sb.WriteString(" ")
		sb.WriteString(arg.Summary())
	}
	return sb.String()
}

func getCommands(node *kong.Node) []entry {
	var cmds []entry
	for _, child := range node.Children {
		if child.Type != kong.CommandNode || child.Hidden {
			continue
		}
		cmds = append(cmds, entry{name: child.Name, help: child.Help})
	}
	return cmds
}

func getArguments(node *kong.Node) []entry {
	var args []entry
	for _, arg := range node.Positional {
		args = append(args, entry{name: arg.Summary(), help: arg.Help, defaultVal: arg.Default})
	}
	return args
}

func getFlags(nodeFlags []*kong.Flag, withHelp bool) []entry {
	var flags []entry

	if withHelp {
		flags = append(flags, entry{
			name: "-h, --help",
			help: "Show context-sensitive help.",
		})
	}

	for _, f := range nodeFlags {
		if f.Name == "help" || f.Hidden {
			continue
		}

		flagStr := ""
		if f.Short != 0 {
			flagStr = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		} else {
			flagStr = fmt.Sprintf("--%s", f.Name)
		}

		if !f.IsBool() && f.PlaceHolder != "" {
			flagStr += "=" + strings.ToUpper(f.PlaceHolder)
		}

		flags = append(flags, entry{
			name:       flagStr,
			help:       f.Help,
			defaultVal: f.Default,
		})
	}

	return flags
}
