package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var sceneExtensions = []string{".excalidraw", ".excalidrawlib"}

// DefaultWorkers returns the number of logical cores.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// MemoryUsage describes system memory for the stats report.
func MemoryUsage() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "n/a"
	}
	return fmt.Sprintf("%d MiB / %d MiB (%.1f%%)", vm.Used>>20, vm.Total>>20, vm.UsedPercent)
}

// FindLatestScene returns the newest scene or library file in dir.
func FindLatestScene(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !isSceneFile(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no .excalidraw or .excalidrawlib files found in %s", dir)
	}
	return latestFile, nil
}

func isSceneFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range sceneExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
