package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Instance is a translation call located in the scanned tree.
type Instance struct {
	Key       string
	Value     string
	RawParams string
	// File is the path of the source file the call was found in.
	File string
	// Line is the 1-based line number within that file.
	Line int
}

// FileError records a non-fatal per-file failure (unreadable file,
// permission problem). One bad file never aborts the scan.
type FileError struct {
	File    string
	Message string
}

// Result is the outcome of a single scan.
type Result struct {
	// FilesScanned counts files actually opened, successfully or not.
	// Files rejected by the extension filter are not counted.
	FilesScanned int
	// Instances are all matches in discovery order (lexical file walk,
	// then position within each file).
	Instances []Instance
	// Errors are per-file failures in discovery order.
	Errors []FileError
}

// Walker enumerates source files under a root and extracts translation
// calls from each. Configuration is explicit: the extension allowlist and
// skip-directory set are fixed at construction.
type Walker struct {
	exts     map[string]bool
	skipDirs map[string]bool

	// OnFile, when set, is called after each scanned file with the number
	// of matches found. Used for --log output.
	OnFile func(path string, found int)
}

// NewWalker builds a Walker for the given extension allowlist and
// skip-directory names. Extensions are matched case-insensitively and a
// missing leading dot is tolerated ("vue" and ".VUE" both mean ".vue").
func NewWalker(extensions, skipDirs []string) *Walker {
	w := &Walker{
		exts:     make(map[string]bool, len(extensions)),
		skipDirs: make(map[string]bool, len(skipDirs)),
	}
	for _, ext := range extensions {
		w.exts[normalizeExt(ext)] = true
	}
	for _, dir := range skipDirs {
		if dir != "" {
			w.skipDirs[dir] = true
		}
	}
	return w
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// allowed reports whether a file path passes the extension filter.
func (w *Walker) allowed(path string) bool {
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// Scan walks root and extracts translation calls from every file whose
// extension is allowed. Root may be a single file; a file whose extension
// is not allowed yields an empty result. A nonexistent root is fatal.
func (w *Walker) Scan(root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root %s: %w", root, err)
	}

	res := &Result{}

	if !info.IsDir() {
		if w.allowed(root) {
			w.scanFile(root, res)
		}
		return res, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// Unreadable subtree entry: record and keep walking.
			res.Errors = append(res.Errors, FileError{File: path, Message: err.Error()})
			return nil
		}
		if d.IsDir() {
			if path != root && w.skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if w.allowed(path) {
			w.scanFile(path, res)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	return res, nil
}

// scanFile reads one file and appends its matches (or its read error).
// The file counts as scanned either way.
func (w *Walker) scanFile(path string, res *Result) {
	res.FilesScanned++

	data, err := os.ReadFile(path)
	if err != nil {
		res.Errors = append(res.Errors, FileError{File: path, Message: err.Error()})
		if w.OnFile != nil {
			w.OnFile(path, 0)
		}
		return
	}

	matches := Extract(string(data))
	for _, m := range matches {
		res.Instances = append(res.Instances, Instance{
			Key:       m.Key,
			Value:     m.Value,
			RawParams: m.RawParams,
			File:      path,
			Line:      m.Line,
		})
	}
	if w.OnFile != nil {
		w.OnFile(path, len(matches))
	}
}
