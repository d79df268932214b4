// Package main provides the recall CLI: a reference resolver for a
// personal markdown vault that learns how you refer to your documents.
// Speak (or type) a nickname, a pronoun, or a typo; recall maps it to
// a concrete document, asking for confirmation when it has to guess,
// and remembering the answer so it never has to ask twice.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	appconfig "github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/memory"
	"github.com/entrhq/recall/pkg/prompt"
	"github.com/entrhq/recall/pkg/resolver"
	"github.com/entrhq/recall/pkg/session"
	"github.com/entrhq/recall/pkg/vault"
)

const version = "0.1.0"

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// cliConfig holds the flag-level configuration.
type cliConfig struct {
	vaultDir    string
	memoryDir   string
	copyToClip  bool
	plainPrompt bool
	showVersion bool
}

func parseFlags() *cliConfig {
	cfg := &cliConfig{}
	flag.StringVar(&cfg.vaultDir, "vault", "", "vault directory (overrides config and RECALL_VAULT_DIR)")
	flag.StringVar(&cfg.memoryDir, "memory", "", "memory directory (overrides config)")
	flag.BoolVar(&cfg.copyToClip, "copy", false, "copy resolved paths to the clipboard")
	flag.BoolVar(&cfg.plainPrompt, "plain", false, "use a plain line prompt for disambiguation instead of the picker")
	flag.BoolVar(&cfg.showVersion, "version", false, "print version and exit")
	flag.Parse()
	return cfg
}

func main() {
	cli := parseFlags()

	if cli.showVersion {
		fmt.Printf("recall v%s\n", version)
		return
	}

	cfg, err := appconfig.Load()
	if err != nil {
		fatal(err)
	}
	if cli.vaultDir != "" {
		cfg.VaultDir = cli.vaultDir
	}
	if cli.memoryDir != "" {
		cfg.MemoryDir = cli.memoryDir
	}

	// init only needs the config, not a working vault.
	if flag.Arg(0) == "init" {
		if err := writeConfigScaffold(cfg); err != nil {
			fatal(err)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	app, err := buildApp(cfg, cli)
	if err != nil {
		fatal(err)
	}

	switch verb := flag.Arg(0); verb {
	case "":
		app.runInteractive()
	case "resolve":
		if flag.NArg() < 2 {
			fatal(fmt.Errorf("usage: recall resolve <term>"))
		}
		app.resolveOnce(strings.Join(flag.Args()[1:], " "))
	case "completions":
		if flag.NArg() < 2 {
			fatal(fmt.Errorf("usage: recall completions <partial>"))
		}
		app.printCompletions(strings.Join(flag.Args()[1:], " "))
	case "stats":
		app.printStats()
	case "clear":
		app.clearMemory()
	default:
		fatal(fmt.Errorf("unknown command %q (expected resolve, completions, stats, clear or init)", verb))
	}
}

// app wires the stores, session and engine together for one run.
type app struct {
	cfg     *appconfig.Config
	memory  *memory.Store
	session *session.Context
	engine  *resolver.Engine
	chooser prompt.Chooser
	copy    bool
}

func buildApp(cfg *appconfig.Config, cli *cliConfig) (*app, error) {
	store, err := vault.NewFS(cfg.VaultDir,
		vault.WithExtension(cfg.Extension),
		vault.WithIgnorePatterns(cfg.IgnorePatterns),
	)
	if err != nil {
		return nil, err
	}

	mem, err := memory.New(cfg.MemoryDir)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(mem,
		session.WithMaxHistory(cfg.MaxHistory),
		session.WithMaxOperations(cfg.MaxOperations),
	)
	if err != nil {
		return nil, err
	}

	engine, err := resolver.New(mem, sess, store, resolver.WithTopK(cfg.MaxCandidates))
	if err != nil {
		return nil, err
	}

	var chooser prompt.Chooser = &prompt.TUIChooser{}
	if cli.plainPrompt {
		chooser = &prompt.StdinChooser{In: os.Stdin, Out: os.Stdout}
	}

	return &app{
		cfg:     cfg,
		memory:  mem,
		session: sess,
		engine:  engine,
		chooser: chooser,
		copy:    cli.copyToClip,
	}, nil
}

// runInteractive is the session loop: one reference per line, resolved
// synchronously, with the session focus updated on every hit so that
// pronouns keep working turn over turn.
func (a *app) runInteractive() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nbye")
		os.Exit(0)
	}()

	fmt.Printf("recall v%s (vault: %s)\n", version, a.cfg.VaultDir)
	fmt.Println(dimStyle.Render("type a reference to resolve it; 'stats', 'clear' or 'quit' also work"))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return
		case "stats":
			a.printStats()
			continue
		case "clear":
			a.clearMemory()
			continue
		}
		a.resolveOnce(line)
	}
}

// resolveOnce runs the full resolve/disambiguate/learn flow for one
// term and prints the result.
func (a *app) resolveOnce(term string) {
	outcome := a.engine.Resolve(term)

	switch outcome.Status {
	case resolver.StatusResolved:
		a.report(outcome.Path, string(outcome.Source))
		a.session.UpdateFocus(outcome.Path, session.OpOpen)

	case resolver.StatusNeedsDisambiguation:
		choice, err := a.chooser.Choose(term, outcome.Candidates)
		if err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("disambiguation failed: %v", err)))
			return
		}
		if choice.Cancelled {
			fmt.Println(dimStyle.Render("cancelled"))
			return
		}
		path := choice.Path
		if choice.Manual {
			// A typed-in name still goes through the engine so the
			// literal-path check and learning both apply.
			manual := a.engine.Resolve(path)
			if manual.Status != resolver.StatusResolved {
				fmt.Println(warnStyle.Render(fmt.Sprintf("no document named %q", path)))
				return
			}
			path = manual.Path
		}
		if err := a.engine.ConfirmResolution(term, path); err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("could not remember choice: %v", err)))
		}
		a.report(path, "confirmed")
		a.session.UpdateFocus(path, session.OpOpen)

	case resolver.StatusNotFound:
		fmt.Println(warnStyle.Render(fmt.Sprintf("no document matches %q", term)))

	case resolver.StatusInvalid:
		fmt.Println(warnStyle.Render("empty reference"))
	}
}

func (a *app) report(path, source string) {
	fmt.Printf("%s %s\n", okStyle.Render(path), dimStyle.Render("("+source+")"))
	if a.copy {
		full := filepath.Join(a.cfg.VaultDir, filepath.FromSlash(path))
		if err := clipboard.WriteAll(full); err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("clipboard: %v", err)))
		}
	}
}

func (a *app) printCompletions(partial string) {
	for _, suggestion := range a.memory.SuggestCompletions(partial) {
		fmt.Println(suggestion)
	}
}

func (a *app) printStats() {
	stats := a.session.Stats()
	fmt.Printf("aliases: %d\nentities: %d\npatterns: %d\nunique documents: %d\n",
		stats.Memory.Aliases, stats.Memory.Entities, stats.Memory.Patterns, stats.Memory.UniqueDocuments)
	fmt.Printf("session turns: %d, recent operations: %d\n", stats.Turns, stats.RecentOperations)
}

func (a *app) clearMemory() {
	if err := a.memory.Clear(); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("clear failed: %v", err)))
		return
	}
	fmt.Println(okStyle.Render("memory cleared"))
}

// writeConfigScaffold writes a commented starter config next to where
// Load expects to find one.
func writeConfigScaffold(cfg *appconfig.Config) error {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	dir = filepath.Join(dir, "recall")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "recall: %v\n", err)
	os.Exit(1)
}
