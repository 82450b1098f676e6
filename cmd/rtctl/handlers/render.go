package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/rtctl/internal/config"
	"github.com/imamik/rtctl/internal/inventory"
	"github.com/imamik/rtctl/internal/orchestration"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	badStyle = lipgloss.NewStyle().
			Foreground(colorRed)
)

// painter applies styles only when writing to a terminal.
type painter struct {
	color bool
}

func newPainter(w io.Writer) painter {
	f, ok := w.(*os.File)
	return painter{color: ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))}
}

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// writeResult renders an operation result in the requested format.
func writeResult(w io.Writer, format string, res *orchestration.Result) error {
	if format == config.OutputJSON {
		return writeJSON(w, res)
	}
	_, err := io.WriteString(w, renderResult(newPainter(w), res))
	return err
}

// writeNetworks renders network views in the requested format.
func writeNetworks(w io.Writer, format string, views []inventory.NetworkView) error {
	if format == config.OutputJSON {
		return writeJSON(w, views)
	}
	_, err := io.WriteString(w, renderNetworks(newPainter(w), views))
	return err
}

func renderResult(p painter, res *orchestration.Result) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(p.paint(titleStyle, fmt.Sprintf("  rtctl %s: %s", res.Operation, res.State)))
	b.WriteString("\n")
	b.WriteString(p.paint(dimStyle, "  "+strings.Repeat("═", 30)))
	b.WriteString("\n")

	if res.NoOp {
		b.WriteString(p.paint(dimStyle, "  No common route target; nothing to do."))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "  Route target: %s (%s)%s\n", res.Target, res.TargetUUID, targetNote(p, res))
	}

	for _, s := range res.Sides {
		instance := s.InstanceName
		if instance == "" {
			instance = "-"
		}
		fmt.Fprintf(&b, "    %-8s %-36s %-16s %s%s\n",
			s.Side, s.NetworkName, instance, renderOutcome(p, s.Outcome), sideNote(s))
	}

	if len(res.Networks) > 0 {
		b.WriteString(renderNetworks(p, res.Networks))
	}
	return b.String()
}

func targetNote(p painter, res *orchestration.Result) string {
	switch {
	case res.TargetCreated:
		return " " + p.paint(okStyle, "created")
	case res.TargetDeleted:
		return " " + p.paint(okStyle, "deleted")
	default:
		return ""
	}
}

func sideNote(s orchestration.SideResult) string {
	var notes []string
	if s.Direction != "" && s.Outcome == orchestration.OutcomeLinked {
		notes = append(notes, "direction "+s.Direction)
	}
	if s.InstanceCreated {
		notes = append(notes, "instance created")
	}
	if s.InstanceDeleted {
		notes = append(notes, "instance deleted")
	}
	if len(notes) == 0 {
		return ""
	}
	return " (" + strings.Join(notes, ", ") + ")"
}

func renderOutcome(p painter, o orchestration.Outcome) string {
	switch o {
	case orchestration.OutcomeLinked, orchestration.OutcomeUnlinked:
		return p.paint(okStyle, string(o))
	case orchestration.OutcomeSkipped:
		return p.paint(badStyle, string(o))
	default:
		return p.paint(dimStyle, string(o))
	}
}

func renderNetworks(p painter, views []inventory.NetworkView) string {
	var b strings.Builder
	if len(views) == 0 {
		b.WriteString("\n")
		b.WriteString(p.paint(dimStyle, "  No virtual networks found."))
		b.WriteString("\n")
		return b.String()
	}
	for _, vn := range views {
		b.WriteString("\n")
		b.WriteString(p.paint(sectionStyle, "  "+vn.Name))
		b.WriteString(p.paint(dimStyle, "  "+vn.UUID))
		b.WriteString("\n")
		b.WriteString(p.paint(dimStyle, "  "+strings.Repeat("─", 50)))
		b.WriteString("\n")
		fmt.Fprintf(&b, "    Tenant:    %s\n", vn.TenantID)
		for _, s := range vn.Subnets {
			fmt.Fprintf(&b, "    Subnet:    %-18s %s\n", s.CIDR, p.paint(dimStyle, s.UUID))
		}
		for _, ri := range vn.Instances {
			label := ri.Name
			if ri.Primary {
				label += " " + p.paint(dimStyle, "(primary)")
			}
			fmt.Fprintf(&b, "    Instance:  %s  %s\n", label, p.paint(dimStyle, ri.UUID))
			if len(ri.Targets) == 0 {
				b.WriteString(p.paint(dimStyle, "      no route targets"))
				b.WriteString("\n")
			}
			for _, t := range ri.Targets {
				fmt.Fprintf(&b, "      %-28s %-7s %s\n", t.Key, t.Direction, p.paint(dimStyle, t.UUID))
			}
		}
	}
	return b.String()
}
