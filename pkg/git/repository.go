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

package git

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"
	"sigs.k8s.io/release-utils/helpers"
)

const defaultRemote = "origin"

type Repository struct {
	Options Options
}

func NewRepository(dir string) *Repository {
	return &Repository{
		Options: Options{
			CWD:    dir,
			Remote: defaultRemote,
		},
	}
}

type Options struct {
	CWD    string
	Remote string
}

// IsRepository returns true if the directory is the root of a git repository
func (r *Repository) IsRepository() bool {
	return helpers.Exists(filepath.Join(r.Options.CWD, ".git"))
}

// SourceURL returns the repository URL. A directory that is not a
// repository or has no remote returns an empty string.
func (r *Repository) SourceURL() (string, error) {
	if !r.IsRepository() {
		logrus.Debugf("Directory %s is not a git repository", r.Options.CWD)
		return "", nil
	}

	repo, err := gogit.PlainOpen(r.Options.CWD)
	if err != nil {
		return "", fmt.Errorf("opening git repo at %s: %w", r.Options.CWD, err)
	}

	remote, err := repo.Remote(r.Options.Remote)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting repository remote: %w", err)
	}

	if len(remote.Config().URLs) == 0 {
		return "", errors.New("repo remote does not have URLs")
	}

	return remote.Config().URLs[0], nil
}

// HeadCommit returns the hash of the commit checked out. It returns a
// blank string when the directory is not a repository or HEAD points
// to a branch without commits.
func (r *Repository) HeadCommit() (string, error) {
	if !r.IsRepository() {
		return "", nil
	}

	repo, err := gogit.PlainOpen(r.Options.CWD)
	if err != nil {
		return "", fmt.Errorf("opening git repo at %s: %w", r.Options.CWD, err)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading repository HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
