package agr

import (
	"bufio"
	"os"
	"path/filepath"
)

// WriteFile replaces the file at path with lines, newline terminated.
// Content goes to a temporary file in the same directory which is synced
// and renamed over path, so readers see either the old or the new file.
// Parent directories are created as needed.
func WriteFile(path string, lines []string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, l := range lines {
		if _, err := w.WriteString(l); err != nil {
			return &IOError{Op: "write", Path: path, Err: err}
		}
		if err := w.WriteByte('\n'); err != nil {
			return &IOError{Op: "write", Path: path, Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// ReadLines returns the lines of the file at path without line endings.
// A missing file yields no lines and no error.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		t := sc.Text()
		if n := len(t); n > 0 && t[n-1] == '\r' {
			t = t[:n-1]
		}
		lines = append(lines, t)
	}
	if err := sc.Err(); err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return lines, nil
}
