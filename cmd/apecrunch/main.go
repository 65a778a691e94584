package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/openapeshop/apecrunch"
	"github.com/openapeshop/apecrunch/config"
	"github.com/openapeshop/apecrunch/history"
	"github.com/openapeshop/apecrunch/logger"
)

func main() {
	log.SetFlags(0)
	var (
		places  int
		hist    string
		noexact bool
	)
	flag.IntVar(&places, "p", -1, "decimal places in results (overrides config)")
	flag.StringVar(&hist, "history", "", "history file (overrides config)")
	flag.BoolVar(&noexact, "noexact", false, "suppress the exact fraction alongside decimal results")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger.SetLevel(cfg.LogLevel)
	if places < 0 {
		places = cfg.DecimalPlaces
	}
	if hist == "" {
		hist = cfg.HistoryPath()
	}

	store, lerr := history.Open(hist, history.SaveEvery(cfg.SaveEvery))
	if lerr != nil {
		fmt.Fprintf(os.Stderr, "note: %v; starting with empty history\n", lerr)
	}
	eng := apecrunch.NewEngine(store, places)

	// Non-interactive: evaluate the arguments and exit.
	if flag.NArg() > 0 {
		code := 0
		for _, arg := range flag.Args() {
			if !evalLine(eng, arg, noexact) {
				code = 1
			}
		}
		finish(eng)
		os.Exit(code)
	}

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == ":quit" || line == ":q":
			finish(eng)
			return
		case line == ":vars":
			showVars(eng)
		case line == ":history":
			showHistory(eng)
		case strings.HasPrefix(line, ":"):
			fmt.Printf("unknown command %s (have :vars, :history, :quit)\n", line)
		default:
			evalLine(eng, line, noexact)
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatal(err)
	}
	fmt.Println()
	finish(eng)
}

func evalLine(eng *apecrunch.Engine, line string, noexact bool) bool {
	r, err := eng.Evaluate(line)
	if err != nil {
		fmt.Println(err)
		return false
	}
	if r.Value == nil {
		return true
	}
	fmt.Println(r.Rendition)
	if !noexact && !r.Value.IsInt() && !r.Value.Approximate() {
		fmt.Printf("  exactly %v\n", r.Value)
	}
	return true
}

func showVars(eng *apecrunch.Engine) {
	vars := eng.Variables()
	if len(vars) == 0 {
		fmt.Println("no variables")
		return
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s = %v\n", name, vars[name])
	}
}

func showHistory(eng *apecrunch.Engine) {
	sessions := eng.Sessions()
	for _, s := range sessions {
		if len(s.Entries) == 0 {
			continue
		}
		fmt.Printf("-- session %s (%s)\n", s.ID, s.Start.Format("2006-01-02 15:04"))
		for _, e := range s.Entries {
			fmt.Println(e.Rendition)
		}
	}
}

func finish(eng *apecrunch.Engine) {
	if err := eng.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "saving history: %v\n", err)
	}
}
