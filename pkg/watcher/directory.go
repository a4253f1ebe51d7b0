/*
Copyright 2026 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"sigs.k8s.io/release-utils/hash"
)

func NewDirectory(path string, include ...string) *Directory {
	return &Directory{
		Path:      path,
		Include:   include,
		Snapshots: []Snapshot{},
	}
}

// Directory watches the files in a directory tree
type Directory struct {
	Path string

	// Include limits the snapshot to files whose path relative to
	// Path matches one of the patterns. Empty means every file.
	Include []string

	Snapshots []Snapshot
}

// Snap takes a snapshot of the directory. A directory that does not
// exist yet yields an empty snapshot.
func (d *Directory) Snap() error {
	if d.Path == "" {
		return errors.New("directory watcher has no path defined")
	}

	root, err := filepath.Abs(d.Path)
	if err != nil {
		return fmt.Errorf("normalizing path %s: %w", d.Path, err)
	}

	snap := Snapshot{}
	if err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		if !d.included(rel) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("reading file info of %s: %w", path, err)
		}

		sha, err := hash.SHA256ForFile(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", path, err)
		}

		snap[rel] = Artifact{
			Path: rel,
			Hash: sha,
			Time: info.ModTime(),
		}
		return nil
	}); err != nil && !errors.Is(err, filepath.SkipDir) {
		return fmt.Errorf("walking directory: %w", err)
	}

	d.Snapshots = append(d.Snapshots, snap)
	return nil
}

// Changes returns the files created or modified between the first
// and the last snapshot
func (d *Directory) Changes() []Artifact {
	if len(d.Snapshots) < 2 {
		return []Artifact{}
	}
	return d.Snapshots[0].Delta(&d.Snapshots[len(d.Snapshots)-1])
}

func (d *Directory) included(rel string) bool {
	if len(d.Include) == 0 {
		return true
	}
	for _, pattern := range d.Include {
		if ok, err := filepath.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
