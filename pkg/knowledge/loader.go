package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"whatsapp-ai-bridge/internal/pkg/logger"
)

// LoadFromDirectory concatenates the extracted text of every supported file
// directly inside dir, each chunk labeled with its source filename. The scan
// is non-recursive and processed in lexicographic filename order so the
// result is deterministic across restarts.
//
// A missing or non-directory path yields "" with a warning; the bridge runs
// fine without a knowledge base. A single file failing to extract is logged
// and contributes nothing; the rest of the directory still loads.
func LoadFromDirectory(dir string, reg *Registry, log logger.ILogger) string {
	if dir == "" {
		return ""
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Warn("knowledge", "Knowledge base directory not found, continuing without it", map[string]interface{}{
			"path": dir,
		})
		return ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("knowledge", "Failed to read knowledge base directory", map[string]interface{}{
			"path":  dir,
			"error": err.Error(),
		})
		return ""
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var chunks []string
	for _, name := range names {
		extractor, ok := reg.Lookup(name)
		if !ok {
			log.Debug("knowledge", "Skipping unsupported file", map[string]interface{}{
				"file": name,
			})
			continue
		}

		text, err := extractor.Extract(filepath.Join(dir, name))
		if err != nil {
			log.Warn("knowledge", "Failed to extract file, omitting it", map[string]interface{}{
				"file":  name,
				"error": err.Error(),
			})
			continue
		}
		if text == "" {
			continue
		}
		chunks = append(chunks, fmt.Sprintf("--- Content from: %s ---\n%s\n\n", name, text))
	}

	if len(chunks) == 0 {
		log.Info("knowledge", "No supported files found in knowledge base directory", map[string]interface{}{
			"path": dir,
		})
		return ""
	}

	content := strings.Join(chunks, "")
	log.Info("knowledge", "Knowledge base loaded", map[string]interface{}{
		"path":  dir,
		"files": len(chunks),
		"chars": len(content),
	})
	return content
}
