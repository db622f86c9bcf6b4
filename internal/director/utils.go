package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const TimelineFile = "timeline.yaml"

// GenerateScriptPath creates a timestamped script filename in dir
func GenerateScriptPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("script_%s.yaml", timestamp))
}

// FindLatestTimeline finds the most recent timeline manifest under outputDir.
// Each publish run writes its manifest into its own subdirectory.
func FindLatestTimeline(outputDir string) (string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}

	var timelines []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(outputDir, entry.Name(), TimelineFile)
		if _, err := os.Stat(path); err == nil {
			timelines = append(timelines, path)
		}
	}

	if len(timelines) == 0 {
		return "", fmt.Errorf("no timeline files found in %s", outputDir)
	}

	// Sort by modification time (newest first)
	sort.Slice(timelines, func(i, j int) bool {
		infoI, _ := os.Stat(timelines[i])
		infoJ, _ := os.Stat(timelines[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return timelines[0], nil
}

// SafeName turns a link or path into something usable as a file name
func SafeName(s string) string {
	s = filepath.Base(strings.TrimRight(s, "/"))
	s = strings.TrimSuffix(s, filepath.Ext(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "diagram"
	}
	return b.String()
}
