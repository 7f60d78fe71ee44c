// Package deps reports whether the external binaries chunkmux shells out to
// are installed, and which versions they are.
package deps
