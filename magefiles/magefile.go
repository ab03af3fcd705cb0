//go:build mage

// Package main provides build targets for the omnibus project using Mage.
//
// Usage:
//
//	mage build             Compile the omnibus binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run only unit tests (exclude integration)
//	mage test:integration  Run only integration tests (builds first)
//	mage test:cover        Run unit tests with a coverage profile
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install omnibus to GOPATH/bin
//	mage stats             Print Go LOC and documentation word counts
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "omnibus"
	binaryDir  = "bin"
	cmdDir     = "./cmd/omnibus"
	modulePath = "github.com/mesh-intelligence/omnibus"
)

// ldflags stamps the version from OMNIBUS_VERSION, or the nearest git tag,
// into the cli package.
func ldflags() string {
	version := os.Getenv("OMNIBUS_VERSION")
	if version == "" {
		if tag, err := sh.Output("git", "describe", "--tags", "--abbrev=0"); err == nil {
			version = strings.TrimPrefix(strings.TrimSpace(tag), "v")
		}
	}
	if version == "" {
		return ""
	}
	return "-X " + modulePath + "/internal/cli.Version=" + version
}

// Build compiles the omnibus binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if flags := ldflags(); flags != "" {
		args = append(args, "-ldflags", flags)
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
