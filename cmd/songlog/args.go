package main

import (
	"fmt"
	"os"
)

type command int

const (
	cmdSearch command = iota
	cmdImport
	cmdCacheArt
	cmdTrim
)

type options struct {
	command    command
	configPath string
	verbose    bool

	// search
	query  string
	kind   string
	limit  int
	asJSON bool

	// import
	csvPath string
	month   string
	dryRun  bool
}

// parseArgs parses command-line arguments.
// Usage: songlog [flags] <command> [args]
func parseArgs() (options, error) {
	args := os.Args[1:]
	opts := options{limit: 0}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help", "-h":
			printUsage()
			os.Exit(0)

		case "--verbose", "-v":
			opts.verbose = true

		case "--json":
			opts.asJSON = true

		case "--dry-run", "-n":
			opts.dryRun = true

		case "--config", "-c":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--config requires a path argument")
			}
			i++
			opts.configPath = args[i]

		case "--kind", "-k":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--kind requires a value")
			}
			i++
			opts.kind = args[i]

		case "--limit", "-l":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--limit requires a number argument")
			}
			i++
			if _, err := fmt.Sscanf(args[i], "%d", &opts.limit); err != nil {
				return opts, fmt.Errorf("invalid limit value: %s", args[i])
			}

		case "--month", "-m":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--month requires a YYYY-MM argument")
			}
			i++
			opts.month = args[i]

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return opts, fmt.Errorf("unknown flag: %s", arg)
			}
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return opts, fmt.Errorf("a command is required: search, import, cache-art, trim")
	}

	switch positional[0] {
	case "search":
		opts.command = cmdSearch
		if len(positional) < 2 {
			return opts, fmt.Errorf("search requires a query argument")
		}
		// Join the rest so unquoted multi-word queries work.
		opts.query = positional[1]
		for _, p := range positional[2:] {
			opts.query += " " + p
		}

	case "import":
		opts.command = cmdImport
		if len(positional) < 2 {
			return opts, fmt.Errorf("import requires a CSV file path")
		}
		opts.csvPath = positional[1]

	case "cache-art":
		opts.command = cmdCacheArt

	case "trim":
		opts.command = cmdTrim

	default:
		return opts, fmt.Errorf("unknown command: %s", positional[0])
	}

	return opts, nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("songlog - search MusicBrainz and maintain a song collection")
	fmt.Println()
	fmt.Println("Usage: songlog [options] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  search <query>    Search for tracks. Supports s: aa: al: prefixes,")
	fmt.Println("                    e.g. 'songlog search 's:\"hello world\" aa:cook''")
	fmt.Println("  import <file.csv> Append songs from a CSV export (artist,title,album)")
	fmt.Println("  cache-art         Download cover art for the collection")
	fmt.Println("  trim              Strip stray whitespace from saved songs")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -k, --kind <kind>      Search sub-resource: recording, release, artist")
	fmt.Println("  -l, --limit <n>        Maximum results (default from config)")
	fmt.Println("      --json             Print search results as JSON")
	fmt.Println("  -m, --month <YYYY-MM>  Month to stamp imported songs with")
	fmt.Println("  -n, --dry-run          Import: show what would be added")
	fmt.Println("  -c, --config <path>    Path to config file")
	fmt.Println("  -v, --verbose          Show detailed output")
	fmt.Println("  -h, --help             Show this help message")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./songlog.yaml")
	fmt.Println("  ~/.config/songlog/config.yaml")
	fmt.Println("  ~/.songlog.yaml")
}
