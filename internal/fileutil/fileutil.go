package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// AppendFiles streams every source into dst in the given order, creating or
// truncating dst. Each source is appended byte for byte; when progress is
// non-nil it receives a copy of everything written. Returns the byte count.
func AppendFiles(dst string, sources []string, progress io.Writer) (int64, error) {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	var w io.Writer = out
	if progress != nil {
		w = io.MultiWriter(out, progress)
	}

	var total int64
	for _, src := range sources {
		n, err := appendOne(w, src)
		total += n
		if err != nil {
			return total, fmt.Errorf("append %s: %w", src, err)
		}
	}
	if err := out.Close(); err != nil {
		return total, err
	}
	return total, nil
}

func appendOne(w io.Writer, src string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	return io.Copy(w, in)
}

// TotalSize sums the sizes of the given files. Missing files count as zero.
func TotalSize(paths []string) int64 {
	var total int64
	for _, path := range paths {
		total += FileSize(path)
	}
	return total
}

// FileSize returns the size of path, or zero when it cannot be stat'ed.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsRegularFile reports whether path resolves to a regular file. Directories
// and device nodes report false.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// RemoveIfExists deletes path, treating an already-missing file as success.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
