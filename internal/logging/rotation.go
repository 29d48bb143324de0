package logging

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// filePrefix marks log files owned by this program; rotation ignores anything else.
const filePrefix = "tab-recall_"

// rotate removes the oldest log files in dir so that at most keep remain.
func rotate(dir string, keep int) error {
	if keep <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	type logFile struct {
		path string
		mod  int64
	}
	var files []logFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		lf := logFile{path: filepath.Join(dir, name)}
		if info, err := entry.Info(); err == nil {
			lf.mod = info.ModTime().UnixNano()
		}
		files = append(files, lf)
	}
	if len(files) <= keep {
		return nil
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod == files[j].mod {
			return files[i].path < files[j].path
		}
		return files[i].mod < files[j].mod
	})
	for _, f := range files[:len(files)-keep] {
		os.Remove(f.path) // best effort
	}
	return nil
}
