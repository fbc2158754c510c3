package main

import (
	"bufio"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lotas/tabsave/internal/analyzer"
	"github.com/lotas/tabsave/internal/applog"
	"github.com/lotas/tabsave/internal/config"
	"github.com/lotas/tabsave/internal/export"
	"github.com/lotas/tabsave/internal/firefox"
	"github.com/lotas/tabsave/internal/snapshot"
	"github.com/lotas/tabsave/internal/storage"
	"github.com/lotas/tabsave/internal/tabgroup"
	"github.com/lotas/tabsave/internal/tui"
	"github.com/lotas/tabsave/internal/types"
)

func main() {
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := c.run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the standard streams so commands can be driven from tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "profiles":
			return c.runProfiles(args[1:])
		case "snapshot":
			return c.runSnapshot(args[1:])
		case "help", "--help", "-h":
			c.printHelp()
			return nil
		}
	}
	return c.runExtract(args)
}

func (c *cli) printHelp() {
	fmt.Fprint(c.stdout, `tabsave: export Firefox session tabs grouped by tab group

Usage:
  tabsave [flags]                                      Extract tabs from a session file
    -f, -file_path <path>        Session file (sessionstore.js or *.jsonlz4)
                                 (default: the profile's session file)
    -o, -save_text               Write the text listing
    -op, -output_path <path>     Text output path (default: urls.txt)
    -j, -save_json               Write the JSON mapping
    -jp, -json_path <path>       JSON output path (default: urls.json)
    -y, -save_yaml               Write the YAML mapping
    -yp, -yaml_path <path>       YAML output path (default: urls.yaml)
    -m, -save_markdown           Write a markdown listing
    -mp, -markdown_path <path>   Markdown output path (default: urls.md)
    -profile <name>              Firefox profile name
    -pick                        Choose the profile interactively

  tabsave profiles                                     List Firefox profiles

  tabsave snapshot [--profile X] [--label "text"]      Snapshot tabs (only if changed)
  tabsave snapshot list [--profile X]                  List saved snapshots
  tabsave snapshot diff [rev] [--profile X]            Compare a snapshot with current tabs
  tabsave snapshot delete <rev> [--profile X] [--yes]  Delete a snapshot

Environment:
  TABSAVE_PROFILE        Default Firefox profile (overridden by --profile flag)
  TABSAVE_FIREFOX_DIR    Firefox configuration directory
  TABSAVE_DATA_DIR       Log and snapshot directory (default: ~/.local/share/tabsave)
  TABSAVE_LOG_LEVEL      debug, info, warn or error (default: info)
`)
}

// setup loads the configuration and starts logging. The returned func
// closes the log.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := applog.Init(cfg.DataDir, cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("init log: %w", err)
	}
	return cfg, applog.Close, nil
}

type extractOptions struct {
	filePath     string
	saveText     bool
	textPath     string
	saveJSON     bool
	jsonPath     string
	saveYAML     bool
	yamlPath     string
	saveMarkdown bool
	markdownPath string
	profile      string
	pick         bool
}

// stringFlag registers one string option under a short and a long name.
func stringFlag(fs *flag.FlagSet, p *string, short, long, value, usage string) {
	fs.StringVar(p, short, value, usage)
	fs.StringVar(p, long, value, usage)
}

func boolFlag(fs *flag.FlagSet, p *bool, short, long, usage string) {
	fs.BoolVar(p, short, false, usage)
	fs.BoolVar(p, long, false, usage)
}

func (c *cli) runExtract(args []string) error {
	var opts extractOptions
	fs := flag.NewFlagSet("tabsave", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = c.printHelp
	stringFlag(fs, &opts.filePath, "f", "file_path", "", "Session file to read")
	boolFlag(fs, &opts.saveText, "o", "save_text", "Write the text listing")
	stringFlag(fs, &opts.textPath, "op", "output_path", "urls.txt", "Text output path")
	boolFlag(fs, &opts.saveJSON, "j", "save_json", "Write the JSON mapping")
	stringFlag(fs, &opts.jsonPath, "jp", "json_path", "urls.json", "JSON output path")
	boolFlag(fs, &opts.saveYAML, "y", "save_yaml", "Write the YAML mapping")
	stringFlag(fs, &opts.yamlPath, "yp", "yaml_path", "urls.yaml", "YAML output path")
	boolFlag(fs, &opts.saveMarkdown, "m", "save_markdown", "Write a markdown listing")
	stringFlag(fs, &opts.markdownPath, "mp", "markdown_path", "urls.md", "Markdown output path")
	fs.StringVar(&opts.profile, "profile", "", "Firefox profile name")
	fs.BoolVar(&opts.pick, "pick", false, "Choose the profile interactively")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q (see tabsave help)", fs.Arg(0))
	}

	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	var doc *firefox.Document
	source := opts.filePath
	if opts.filePath != "" {
		doc, err = firefox.LoadDocument(opts.filePath)
	} else {
		var profile types.Profile
		profile, err = c.chooseProfile(cfg, opts.profile, opts.pick)
		if err != nil {
			return err
		}
		source = profile.Name
		doc, err = firefox.LoadProfileDocument(profile)
	}
	if err != nil {
		return err
	}

	p, err := tabgroup.Extract(doc)
	if err != nil {
		return err
	}

	outputs, err := renderOutputs(p, opts, source)
	if err != nil {
		return err
	}
	if err := export.WriteAll(outputs); err != nil {
		return err
	}

	stats := analyzer.ComputeStats(p)
	fmt.Fprintf(c.stderr, "%d tabs in %d groups (%d untitled, %d duplicates) from %s\n",
		stats.TotalTabs, stats.TotalGroups, stats.UntitledTabs, stats.DuplicateTabs, source)
	for _, o := range outputs {
		fmt.Fprintf(c.stderr, "  wrote %s\n", o.Path)
	}
	return nil
}

// renderOutputs renders every enabled output in memory, so nothing is
// written when one of them fails.
func renderOutputs(p *types.Projection, opts extractOptions, source string) ([]export.Output, error) {
	var outputs []export.Output
	if opts.saveText {
		outputs = append(outputs, export.Output{Path: opts.textPath, Data: []byte(export.Text(p))})
	}
	if opts.saveJSON {
		data, err := export.JSON(p)
		if err != nil {
			return nil, fmt.Errorf("render JSON: %w", err)
		}
		outputs = append(outputs, export.Output{Path: opts.jsonPath, Data: data})
	}
	if opts.saveYAML {
		data, err := export.YAML(p)
		if err != nil {
			return nil, fmt.Errorf("render YAML: %w", err)
		}
		outputs = append(outputs, export.Output{Path: opts.yamlPath, Data: data})
	}
	if opts.saveMarkdown {
		outputs = append(outputs, export.Output{Path: opts.markdownPath, Data: []byte(export.Markdown(p, source))})
	}
	return outputs, nil
}

// chooseProfile discovers profiles and picks one by name, interactively,
// or falls back to the default profile.
func (c *cli) chooseProfile(cfg *config.Config, flagValue string, pick bool) (types.Profile, error) {
	profiles, err := firefox.DiscoverProfiles(cfg.FirefoxDir)
	if err != nil {
		return types.Profile{}, err
	}
	if pick && len(profiles) > 0 {
		return tui.PickProfile(profiles)
	}
	return firefox.SelectProfile(profiles, cfg.ProfileName(flagValue))
}

// currentProjection loads and reconciles the session of the chosen profile.
func (c *cli) currentProjection(cfg *config.Config, flagValue string) (types.Profile, *types.Projection, error) {
	profile, err := c.chooseProfile(cfg, flagValue, false)
	if err != nil {
		return types.Profile{}, nil, err
	}
	doc, err := firefox.LoadProfileDocument(profile)
	if err != nil {
		return types.Profile{}, nil, err
	}
	p, err := tabgroup.Extract(doc)
	if err != nil {
		return types.Profile{}, nil, err
	}
	return profile, p, nil
}

func (c *cli) runProfiles(args []string) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	profiles, err := firefox.DiscoverProfiles(cfg.FirefoxDir)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return errors.New("no Firefox profiles with a session file found")
	}

	for _, p := range profiles {
		suffix := ""
		if p.IsDefault {
			suffix = " [default]"
		}
		fmt.Fprintf(c.stdout, "%s (%s)%s\n", p.Name, p.SessionFile, suffix)
	}
	return nil
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := storage.OpenDB(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// reorderArgs moves flag arguments before positional arguments so that
// flag.Parse handles them correctly (it stops at the first non-flag arg).
// A flag consumes the following argument as its value unless it is a
// boolean flag or carries its value after "=".
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") || isBoolFlag(fs, name) {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(fs *flag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func parseRev(s string) (int, error) {
	rev, err := strconv.Atoi(s)
	if err != nil || rev < 1 {
		return 0, fmt.Errorf("invalid revision number: %s", s)
	}
	return rev, nil
}

func (c *cli) runSnapshot(args []string) error {
	// If no args or first arg is a flag, it's the auto-create flow.
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return c.runSnapshotCreate(args)
	}

	subcmd := args[0]
	subArgs := args[1:]

	switch subcmd {
	case "create":
		return c.runSnapshotCreate(subArgs)
	case "list":
		return c.runSnapshotList(subArgs)
	case "diff":
		return c.runSnapshotDiff(subArgs)
	case "delete":
		return c.runSnapshotDelete(subArgs)
	default:
		return fmt.Errorf("unknown snapshot command %q, use list, diff or delete", subcmd)
	}
}

func (c *cli) runSnapshotCreate(args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	profileName := fs.String("profile", "", "Firefox profile name")
	label := fs.String("label", "", "Optional label for the snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	profile, p, err := c.currentProjection(cfg, *profileName)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rev, created, diff, err := snapshot.Create(db, profile.Name, p, *label)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	if !created {
		fmt.Fprintf(c.stdout, "No changes since snapshot #%d\n", rev)
		return nil
	}

	fmt.Fprintf(c.stdout, "Snapshot #%d created: %d tabs in %d groups\n", rev, p.TabCount(), len(p.Groups))
	if diff != nil && (len(diff.Added) > 0 || len(diff.Removed) > 0) {
		fmt.Fprintln(c.stdout)
		fmt.Fprint(c.stdout, snapshot.FormatDiff(diff))
	}
	return nil
}

func (c *cli) runSnapshotList(args []string) error {
	fs := flag.NewFlagSet("snapshot list", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	profileName := fs.String("profile", "", "Only list snapshots of this profile")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	snaps, err := snapshot.List(db, *profileName)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	if len(snaps) == 0 {
		fmt.Fprintln(c.stdout, "No snapshots found.")
		return nil
	}

	fmt.Fprintf(c.stdout, "%-5s %5s  %-16s %-20s  %s\n", "REV", "TABS", "PROFILE", "LABEL", "CREATED")
	for _, s := range snaps {
		fmt.Fprintf(c.stdout, "%5d %5d  %-16s %-20s  %s\n",
			s.Rev,
			s.TabCount,
			s.Profile,
			s.Name,
			s.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func (c *cli) runSnapshotDiff(args []string) error {
	fs := flag.NewFlagSet("snapshot diff", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	profileName := fs.String("profile", "", "Firefox profile name")
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		return err
	}

	rev := 0 // latest
	switch fs.NArg() {
	case 0:
	case 1:
		var err error
		if rev, err = parseRev(fs.Arg(0)); err != nil {
			return err
		}
	default:
		return errors.New("usage: tabsave snapshot diff [rev] [--profile name]")
	}

	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	profile, p, err := c.currentProjection(cfg, *profileName)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := snapshot.DiffAgainstCurrent(db, profile.Name, rev, p)
	if err != nil {
		return err
	}
	fmt.Fprint(c.stdout, snapshot.FormatDiff(result))
	return nil
}

func (c *cli) runSnapshotDelete(args []string) error {
	fs := flag.NewFlagSet("snapshot delete", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	profileName := fs.String("profile", "", "Firefox profile name")
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return errors.New("usage: tabsave snapshot delete <rev> [--profile name] [--yes]")
	}
	rev, err := parseRev(fs.Arg(0))
	if err != nil {
		return err
	}

	cfg, done, err := setup()
	if err != nil {
		return err
	}
	defer done()

	profile := cfg.ProfileName(*profileName)
	if profile == "" {
		p, err := c.chooseProfile(cfg, "", false)
		if err != nil {
			return err
		}
		profile = p.Name
	}

	if !*yes {
		fmt.Fprintf(c.stdout, "Delete snapshot #%d of %s? [y/N] ", rev, profile)
		answer, _ := bufio.NewReader(c.stdin).ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(c.stdout, "Aborted.")
			return nil
		}
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.DeleteSnapshot(db, profile, rev); err != nil {
		return err
	}
	applog.Info("snapshot.deleted", "rev", rev, "profile", profile)
	fmt.Fprintf(c.stdout, "Snapshot #%d deleted.\n", rev)
	return nil
}
