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
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `[core]
	repositoryformatversion = 0
	filemode = true
	bare = false
	logallrefupdates = true

[remote "origin"]
	url = git@github.com:kubernetes-sigs/tollgate.git
	fetch = +refs/heads/*:refs/remotes/origin/*
`

// writeMinimalRepo writes enough of a .git directory to be opened
func writeMinimalRepo(t *testing.T, config string) string {
	t.Helper()
	tmpdir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmpdir, ".git"), os.FileMode(0o755)))
	require.NoError(t, os.WriteFile(
		filepath.Join(tmpdir, ".git", "config"), []byte(config), os.FileMode(0o644),
	))
	require.NoError(t, os.WriteFile(
		filepath.Join(tmpdir, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), os.FileMode(0o644),
	))
	return tmpdir
}

func TestSourceURL(t *testing.T) {
	repo := NewRepository(writeMinimalRepo(t, minimalConfig))
	url, err := repo.SourceURL()
	require.NoError(t, err)
	require.Equal(t, "git@github.com:kubernetes-sigs/tollgate.git", url)
}

func TestSourceURLNoRemote(t *testing.T) {
	repo := NewRepository(writeMinimalRepo(t, "[core]\n\tbare = false\n"))
	url, err := repo.SourceURL()
	require.NoError(t, err)
	require.Empty(t, url)
}

func TestNotARepository(t *testing.T) {
	repo := NewRepository(t.TempDir())
	require.False(t, repo.IsRepository())

	url, err := repo.SourceURL()
	require.NoError(t, err)
	require.Empty(t, url)

	commit, err := repo.HeadCommit()
	require.NoError(t, err)
	require.Empty(t, commit)
}

func TestHeadCommitUnborn(t *testing.T) {
	repo := NewRepository(writeMinimalRepo(t, minimalConfig))
	commit, err := repo.HeadCommit()
	require.NoError(t, err)
	require.Empty(t, commit)
}

func TestHeadCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), os.FileMode(0o644)))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	hash, err := wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	commit, err := NewRepository(dir).HeadCommit()
	require.NoError(t, err)
	require.Equal(t, hash.String(), commit)
}
