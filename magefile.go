//go:build mage

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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/uwu-tools/magex/pkg"
)

const binDir = "bin"

// Default target to run when none is specified
var Default = Verify

// Verify runs the repository verification scripts
func Verify() error {
	fmt.Println("Ensuring mage is available...")
	if err := pkg.EnsureMage(""); err != nil {
		return err
	}

	fmt.Println("Checking go.mod is tidy...")
	if err := sh.RunV("go", "mod", "tidy", "-diff"); err != nil {
		return fmt.Errorf("go.mod needs to be tidied: %w", err)
	}

	fmt.Println("Running go vet...")
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}

	mg.Deps(Test)
	return nil
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Build compiles the tollgate binary into bin/
func Build() error {
	if err := os.MkdirAll(binDir, os.FileMode(0o755)); err != nil {
		return err
	}
	ldflags, err := versionLDFlags()
	if err != nil {
		return err
	}
	return sh.RunWithV(
		map[string]string{"CGO_ENABLED": "0"},
		"go", "build", "-trimpath", "-ldflags", ldflags,
		"-o", filepath.Join(binDir, "tollgate"), "./cmd/tollgate",
	)
}

// Clean removes the build output
func Clean() error {
	return sh.Rm(binDir)
}

func versionLDFlags() (string, error) {
	gitVersion, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		return "", fmt.Errorf("reading git version: %w", err)
	}
	gitCommit, err := sh.Output("git", "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("reading git commit: %w", err)
	}

	const versionPkg = "sigs.k8s.io/release-utils/version"
	return strings.Join([]string{
		"-s", "-w",
		fmt.Sprintf("-X %s.gitVersion=%s", versionPkg, gitVersion),
		fmt.Sprintf("-X %s.gitCommit=%s", versionPkg, gitCommit),
	}, " "), nil
}
