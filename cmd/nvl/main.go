package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"novel_lens/internal/analyze"
	"novel_lens/internal/db"
	"novel_lens/internal/dict"
	"novel_lens/internal/ingest"
	"novel_lens/internal/vocabcache"
	"novel_lens/internal/workspace"
)

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	case "health":
		err = runHealth(os.Args[2:])
	case "caches":
		err = runCaches(os.Args[2:])
	case "ignore":
		err = runIgnore(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("nvl %s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: nvl <command> [flags]

commands:
  analyze  -file NOVEL [-cache NAME] [-workspace DIR] [-json] [-no-save]
  history  [-limit N] [-file NAME] [-id N] [-delete N] [-workspace DIR]
  health
  caches   [-workspace DIR]
  ignore   -add WORD | -remove WORD | -list [-workspace DIR]`)
}

func ensureWorkspace(dir string) (workspace.Paths, error) {
	if dir != "" {
		return workspace.EnsureAt(dir)
	}
	return workspace.EnsureDefault()
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	file := fs.String("file", "", "novel file to analyze (.txt, .md, .epub, .pdf)")
	cacheName := fs.String("cache", "", "vocabulary cache filename or note-type key")
	wsDir := fs.String("workspace", "", "workspace directory (default ~/NovelLens)")
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	noSave := fs.Bool("no-save", false, "skip saving the scan to history")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	paths, err := ensureWorkspace(*wsDir)
	if err != nil {
		return err
	}

	parsed, err := ingest.ParseFile(*file)
	if err != nil {
		return err
	}

	vocabulary := map[string]struct{}{}
	if *cacheName != "" {
		var meta vocabcache.Metadata
		meta, vocabulary, err = loadCache(paths.Data, *cacheName)
		if err != nil {
			return err
		}
		log.Printf("vocabulary: %s/%s, %d cards, %d words", meta.NoteType, meta.FieldName, meta.TotalCards, len(vocabulary))
	} else {
		log.Printf("no vocabulary cache selected, every word will be unknown")
	}

	ignored, err := workspace.LoadIgnored(paths.Data)
	if err != nil {
		return err
	}

	analyzer := analyze.NewAnalyzerFromEnv(dict.NewClientFromEnv())
	tracker := analyze.NewTracker()
	runID := uuid.NewString()
	onProgress := tracker.Observe(runID)

	result, err := analyzer.Run(context.Background(), parsed.Text, vocabulary, ignored, func(u analyze.Update) {
		onProgress(u)
		if u.TotalChunks > 1 {
			log.Printf("[%s] %s %d%% (%d/%d chunks)", u.Stage, u.Message, u.Progress, u.CompletedChunks, u.TotalChunks)
		} else {
			log.Printf("[%s] %s %d%%", u.Stage, u.Message, u.Progress)
		}
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printSummary(parsed.Title, result)
	}

	if !*noSave {
		store, err := db.Open(paths.History)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.SaveScan(parsed.Title, parsed.Text, result)
		if err != nil {
			return err
		}
		log.Printf("scan saved as #%d", id)
	}
	return nil
}

func loadCache(dataDir, name string) (vocabcache.Metadata, map[string]struct{}, error) {
	if meta, vocab, err := vocabcache.Load(dataDir, name); err == nil {
		return meta, vocab, nil
	}
	return vocabcache.LoadByKey(dataDir, name)
}

func printSummary(title string, result *analyze.Result) {
	fmt.Printf("%s\n", title)
	fmt.Printf("  words:         %d total, %d unique\n", result.TotalWords, result.UniqueWords)
	fmt.Printf("  known:         %d unique (%d occurrences)\n", len(result.Known), result.KnownOccurrences)
	fmt.Printf("  unknown:       %d unique (%d occurrences)\n", len(result.Unknown), result.UnknownOccurrences)
	fmt.Printf("  ignored:       %d unique (%d occurrences)\n", len(result.Ignored), result.IgnoredOccurrences)
	fmt.Printf("  comprehension: %.2f%%\n", result.ComprehensionRate)
	fmt.Printf("  difficulty:    %s\n", result.DifficultyLevel)
	fmt.Printf("  avg rating:    known %.2f, unknown %.2f\n",
		result.Stars.Known.AverageRating, result.Stars.Unknown.AverageRating)
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "maximum scans to list")
	file := fs.String("file", "", "only scans of this file")
	id := fs.Int64("id", 0, "show one scan in full")
	del := fs.Int64("delete", 0, "delete a scan by id")
	wsDir := fs.String("workspace", "", "workspace directory (default ~/NovelLens)")
	fs.Parse(args)

	paths, err := ensureWorkspace(*wsDir)
	if err != nil {
		return err
	}
	store, err := db.Open(paths.History)
	if err != nil {
		return err
	}
	defer store.Close()

	if *del != 0 {
		if err := store.DeleteScan(*del); err != nil {
			return err
		}
		log.Printf("scan #%d deleted", *del)
		return nil
	}

	if *id != 0 {
		scan, err := store.ScanByID(*id)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scan)
	}

	var scans []db.Scan
	if *file != "" {
		scans, err = store.ScansByFilename(*file)
	} else {
		scans, err = store.History(*limit)
	}
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		fmt.Println("no scans recorded")
		return nil
	}
	for _, s := range scans {
		fmt.Printf("#%-4d %-30s %8d words  %6.2f%%  %-12s %s\n",
			s.ID, s.Filename, s.TotalWords, s.ComprehensionRate, s.DifficultyLevel,
			s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runHealth(args []string) error {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	fs.Parse(args)

	client := dict.NewClientFromEnv()
	status := client.Health(context.Background())
	fmt.Printf("dictionary server: healthy=%v busy=%v (%dms) %s\n",
		status.Healthy, status.Busy, status.ResponseMillis, status.Message)
	if !status.Healthy {
		os.Exit(1)
	}
	return nil
}

func runCaches(args []string) error {
	fs := flag.NewFlagSet("caches", flag.ExitOnError)
	wsDir := fs.String("workspace", "", "workspace directory (default ~/NovelLens)")
	fs.Parse(args)

	paths, err := ensureWorkspace(*wsDir)
	if err != nil {
		return err
	}
	caches := vocabcache.List(paths.Data)
	if len(caches) == 0 {
		fmt.Println("no vocabulary caches found; export one into", paths.Data)
		return nil
	}
	for _, c := range caches {
		fmt.Printf("%-30s %-30s %6d cards  updated %s\n", c.Filename, c.Key, c.TotalCards, c.LastUpdated)
	}
	return nil
}

func runIgnore(args []string) error {
	fs := flag.NewFlagSet("ignore", flag.ExitOnError)
	add := fs.String("add", "", "word to add to the ignored list")
	remove := fs.String("remove", "", "word to remove from the ignored list")
	list := fs.Bool("list", false, "print the ignored list")
	wsDir := fs.String("workspace", "", "workspace directory (default ~/NovelLens)")
	fs.Parse(args)

	paths, err := ensureWorkspace(*wsDir)
	if err != nil {
		return err
	}

	switch {
	case *add != "":
		return workspace.AddIgnored(paths.Data, *add)
	case *remove != "":
		return workspace.RemoveIgnored(paths.Data, *remove)
	case *list:
		words, err := workspace.LoadIgnored(paths.Data)
		if err != nil {
			return err
		}
		for w := range words {
			fmt.Println(w)
		}
		return nil
	default:
		return fmt.Errorf("one of -add, -remove or -list is required")
	}
}
