// Package storage defines the vault file-system abstraction.
package storage

// Provider is the interface for vault file operations. This tool only
// ever reads and rewrites notes; it never deletes or moves them.
type Provider interface {
	// List returns the relative paths of every .md file under dir
	// (relative to vault root).
	List(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
	// Exists reports whether a file exists at path (relative to vault root).
	Exists(path string) (bool, error)
}
