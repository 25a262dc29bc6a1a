// kbinspect previews what the knowledge base loader would feed to the AI
// providers: which files it picks up, which it skips, and how large the
// combined preamble comes out.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"

	"whatsapp-ai-bridge/pkg/knowledge"
)

func main() {
	dir := flag.String("dir", "", "knowledge base directory to inspect")
	docs := flag.Bool("docs", true, "enable document extractors (.pdf, .docx, .xlsx)")
	preview := flag.Int("preview", 120, "characters of extracted text to preview per file")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: kbinspect -dir <path> [-docs=false] [-preview N]")
		os.Exit(2)
	}

	registry := knowledge.NewRegistry()
	if *docs {
		knowledge.RegisterDocumentExtractors(registry)
	}

	header := color.New(color.FgCyan, color.Bold)
	okLabel := color.New(color.FgGreen).SprintFunc()
	skipLabel := color.New(color.FgYellow).SprintFunc()
	failLabel := color.New(color.FgRed).SprintFunc()

	header.Printf("Knowledge base: %s\n", *dir)
	fmt.Printf("Extractors: %v\n\n", registry.Supported())

	entries, err := os.ReadDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s cannot read directory: %v\n", failLabel("FAIL"), err)
		os.Exit(1)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var loaded, skipped, failed int
	for _, name := range names {
		path := filepath.Join(*dir, name)
		extractor, ok := registry.Lookup(name)
		if !ok {
			fmt.Printf("%s  %-40s unsupported extension\n", skipLabel("SKIP"), name)
			skipped++
			continue
		}

		text, err := extractor.Extract(path)
		if err != nil {
			fmt.Printf("%s  %-40s %v\n", failLabel("FAIL"), name, err)
			failed++
			continue
		}

		snippet := text
		if len(snippet) > *preview {
			snippet = snippet[:*preview] + "..."
		}
		fmt.Printf("%s    %-40s %d chars\n", okLabel("OK"), name, len(text))
		if snippet != "" {
			fmt.Printf("      %q\n", snippet)
		}
		loaded++
	}

	fmt.Println()
	header.Printf("Summary: %d loaded, %d skipped, %d failed\n", loaded, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
