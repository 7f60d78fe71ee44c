package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// pathRule describes what a path must be for a check to pass.
type pathRule struct {
	dir    bool
	access uint32
	okNote string
}

var (
	writableDir = pathRule{dir: true, access: unix.R_OK | unix.W_OK | unix.X_OK, okNote: "read/write ok"}
	listableDir = pathRule{dir: true, access: unix.R_OK | unix.X_OK, okNote: "readable"}
	readable    = pathRule{access: unix.R_OK, okNote: "readable"}
)

// CheckDirectoryAccess passes when path is a directory the process can
// list, create files in, and remove files from.
func CheckDirectoryAccess(name, path string) Result {
	return checkPath(name, path, writableDir)
}

// CheckDirectoryReadable passes when path is a directory the process can list.
func CheckDirectoryReadable(name, path string) Result {
	return checkPath(name, path, listableDir)
}

// CheckFileReadable passes when path is a regular file the process can read.
func CheckFileReadable(name, path string) Result {
	return checkPath(name, path, readable)
}

func checkPath(name, path string, rule pathRule) Result {
	res := Result{Name: name}
	if path == "" {
		res.Detail = "not configured"
		return res
	}
	if problem := rule.problem(path); problem != "" {
		res.Detail = fmt.Sprintf("%s (error: %s)", path, problem)
		return res
	}
	res.Passed = true
	res.Detail = fmt.Sprintf("%s (%s)", path, rule.okNote)
	return res
}

func (r pathRule) problem(path string) string {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "does not exist"
	case err != nil:
		return fmt.Sprintf("stat: %v", err)
	case r.dir && !info.IsDir():
		return "is not a directory"
	case !r.dir && !info.Mode().IsRegular():
		return "not a regular file"
	}
	if err := unix.Access(path, r.access); err != nil {
		return fmt.Sprintf("insufficient permissions: %v", err)
	}
	return ""
}
