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
	"sort"
	"time"
)

// Watcher observes a location before and after a run to find
// the artifacts the run produced
type Watcher interface {
	Snap() error
	Changes() []Artifact
}

// Artifact is a file observed by a watcher
type Artifact struct {
	Path string    `json:"path"`
	Hash string    `json:"sha256"`
	Time time.Time `json:"time"`
}

// Snapshot indexes the artifacts seen at a point in time by path
type Snapshot map[string]Artifact

// Delta takes a snapshot, assumed to be later in time and returns
// a directed delta, the files which were created or modified. The
// list is sorted by path.
func (snap *Snapshot) Delta(post *Snapshot) []Artifact {
	results := []Artifact{}
	for path, f := range *post {
		pre, ok := (*snap)[path]
		if !ok || !pre.Time.Equal(f.Time) || pre.Hash != f.Hash {
			results = append(results, f)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results
}
