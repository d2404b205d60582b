// Package vault reads and writes markdown notes on disk. Notes carry an
// optional YAML frontmatter block delimited by "---" lines; the tag list
// lives under the "tags" key.
package vault

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Vault is rooted at a directory of markdown notes.
type Vault struct {
	root string
}

// New creates a vault over the given root directory.
func New(root string) (*Vault, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to access vault root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("vault root %s is not a directory", root)
	}
	return &Vault{root: root}, nil
}

// Root returns the vault root directory.
func (v *Vault) Root() string { return v.root }

// Filter selects notes for batch runs. Zero-value fields are ignored;
// non-zero fields must all match.
type Filter struct {
	// Folder restricts matches to a subdirectory (relative to the root).
	Folder string
	// Glob is matched against the note path relative to the root.
	Glob string
	// Regex is matched against the note path relative to the root.
	Regex string
}

// List returns the relative paths of markdown notes matching the filter,
// in lexical walk order.
func (v *Vault) List(filter Filter) ([]string, error) {
	var re *regexp.Regexp
	if filter.Regex != "" {
		var err error
		re, err = regexp.Compile(filter.Regex)
		if err != nil {
			return nil, errors.Wrap(err, "invalid note filter regex")
		}
	}

	var paths []string
	walkErr := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != v.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if filter.Folder != "" {
			folder := strings.Trim(filepath.ToSlash(filter.Folder), "/")
			if rel != folder && !strings.HasPrefix(rel, folder+"/") {
				return nil
			}
		}
		if filter.Glob != "" {
			ok, err := filepath.Match(filter.Glob, rel)
			if err != nil {
				return errors.Wrap(err, "invalid note filter glob")
			}
			if !ok {
				// Also try matching the base name so "*.md"-style
				// patterns work for nested notes.
				if ok, _ = filepath.Match(filter.Glob, filepath.Base(rel)); !ok {
					return nil
				}
			}
		}
		if re != nil && !re.MatchString(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrap(walkErr, "failed to walk vault")
	}
	return paths, nil
}

// Read loads and parses one note by its path relative to the root.
func (v *Vault) Read(rel string) (*Note, error) {
	data, err := os.ReadFile(filepath.Join(v.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read note %s", rel)
	}
	note, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse note %s", rel)
	}
	note.Path = rel
	return note, nil
}

// WriteTags replaces the note's tag list and rewrites the file. This is a
// plain read-modify-write: a concurrent external edit in the window is
// overwritten, last write wins.
func (v *Vault) WriteTags(note *Note, tags []string) error {
	note.SetTags(tags)
	data, err := note.Render()
	if err != nil {
		return errors.Wrapf(err, "failed to render note %s", note.Path)
	}
	path := filepath.Join(v.root, filepath.FromSlash(note.Path))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write note %s", note.Path)
	}
	return nil
}
