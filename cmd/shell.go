package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-cs-matchstats/internal/config"
	"github.com/pable/go-cs-matchstats/internal/log"
	"github.com/pable/go-cs-matchstats/internal/model"
	"github.com/pable/go-cs-matchstats/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
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

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer log.Closer(db)

	cGreeting.Println("csmatchstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("csmatchstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		if tokens[0] == "exit" || tokens[0] == "quit" {
			return nil
		}
		if err := shellDispatch(db, tokens[0], tokens[1:]); err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func shellDispatch(db *storage.DB, cmd string, args []string) error {
	switch cmd {
	case "help":
		shellHelp()
	case "list":
		observer, err := shellObserver(args)
		if err != nil {
			return err
		}
		return printMatchList(db, observer)
	case "show":
		if len(args) == 0 {
			return fmt.Errorf("usage: show <hash-prefix> [--observer <steamid>]")
		}
		observer, err := shellObserver(args[1:])
		if err != nil {
			return err
		}
		return showMatch(db, args[0], observer)
	case "history":
		if len(args) != 1 {
			return fmt.Errorf("usage: history <steamid>")
		}
		id, err := requireSteamID(args[0])
		if err != nil {
			return err
		}
		return printHistory(db, id)
	case "verdict":
		if len(args) != 2 {
			return fmt.Errorf("usage: verdict <hash-prefix> <steamid>")
		}
		id, err := requireSteamID(args[1])
		if err != nil {
			return err
		}
		return printVerdict(db, args[0], id)
	default:
		cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
	}
	return nil
}

// shellObserver reads an optional "--observer <id>" pair, falling back to the
// configured observer.
func shellObserver(args []string) (model.PlayerID, error) {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "--observer" {
			return config.ParseSteamID(args[i+1])
		}
	}
	return conf.ObserverID()
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list [--observer <id>]", "list all stored matches"},
		{"show <hash-prefix>", "show a match's scoreboard"},
		{"show <hash-prefix> --observer <id>", "same, highlighting one player"},
		{"history <steamid>", "one player's matches, oldest first"},
		{"verdict <hash-prefix> <steamid>", "one player's outcome of a match"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}
