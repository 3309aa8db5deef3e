package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/model"
	"github.com/pable/go-nhl-metrics/internal/report"
	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/storage"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellSession keeps the entity selected by the last goalie, skater or team
// command so that ref and metric can re-render it.
type shellSession struct {
	db     *storage.DB
	out    io.Writer
	entity *model.Entity
	bundle series.Bundle
	metric string
	ref    string
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("nhlmetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	s := &shellSession{db: db, out: os.Stdout}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("nhlmetrics")
		if s.entity != nil {
			cMuted.Printf(" [%s]", s.entity.Name)
		}
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !s.exec(line) {
			return nil
		}
	}
	return scanner.Err()
}

// exec runs one shell line. It returns false when the session should end.
func (s *shellSession) exec(line string) bool {
	tokens := strings.Fields(line)
	cmd, args := tokens[0], tokens[1:]
	rest := strings.Join(args, " ")

	switch cmd {
	case "exit", "quit":
		return false
	case "help":
		shellHelp()
	case "list":
		s.list(rest)
	case "goalie", "skater", "team":
		if rest == "" {
			cError.Fprintf(os.Stderr, "usage: %s <id-or-name>\n", cmd)
			return true
		}
		s.selectEntity(model.ParseKind(cmd), rest)
	case "metric":
		if s.requireEntity() {
			s.metric = rest
			s.render()
		}
	case "ref":
		if !s.requireEntity() {
			return true
		}
		if _, ok := viewer.ParseReference(rest); !ok && rest != "" {
			cWarn.Fprintf(os.Stderr, "%q is not a number — reference cleared\n", rest)
		}
		s.ref = rest
		s.render()
	case "trend":
		if s.requireEntity() {
			report.PrintTrendTable(s.out, viewer.Trend(s.bundle))
		}
	default:
		cWarn.Fprintf(os.Stderr, "unknown command %q — type 'help'\n", cmd)
	}
	return true
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list [skater|goalie|team]", "list stored entities"},
		{"goalie <id-or-name>", "shots against, saves and goals against"},
		{"skater <id-or-name>", "points distribution of a skater"},
		{"team <id-or-name>", "period transition heatmaps and total goals"},
		{"metric <points|goals|assists|shots|all>", "switch the skater metric"},
		{"ref <line>", "set the reference line (blank clears it)"},
		{"trend", "game-by-game listing of the current entity"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-42s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (s *shellSession) list(kindArg string) {
	kind := model.ParseKind(kindArg)
	if kindArg != "" && kind == model.KindUnknown {
		cError.Fprintf(os.Stderr, "unknown kind %q\n", kindArg)
		return
	}
	ents, err := s.db.ListEntities(kind)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(ents) == 0 {
		cMuted.Println("Nothing stored yet.")
		return
	}
	cHeader.Fprintf(s.out, "%-8s  %-12s  %-28s  %5s\n", "KIND", "ID", "NAME", "GAMES")
	cMuted.Fprintf(s.out, "%-8s  %-12s  %-28s  %5s\n", "────────", "────────────", "────────────────────────────", "─────")
	for _, e := range ents {
		fmt.Fprintf(s.out, "%-8s  %-12s  %-28s  %5d\n", e.Kind, e.ID, e.Name, e.Games)
	}
}

func (s *shellSession) selectEntity(kind model.Kind, query string) {
	e, b, err := resolveBundle(s.db, kind, query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if e == nil {
		cError.Fprintf(os.Stderr, "no %s found matching %q\n", kind, query)
		return
	}
	if s.entity == nil || s.entity.Kind != e.Kind {
		s.metric = ""
	}
	s.entity, s.bundle = e, b
	s.render()
}

func (s *shellSession) requireEntity() bool {
	if s.entity == nil {
		cWarn.Fprintln(os.Stderr, "select a goalie, skater or team first")
		return false
	}
	return true
}

func (s *shellSession) render() {
	report.PrintEntityHeader(s.out, s.entity.Kind.String(), s.entity.Name, s.entity.ID, s.entity.Games)
	if err := printBundle(s.out, s.bundle, s.metric, s.ref); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
	}
}
