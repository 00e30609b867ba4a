//go:build mage

// Package main contains Mage build targets for paper-searcher developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	"data",
	"data/import",
	"exports",
}

const (
	binDir    = "bin"
	binName   = "paper-searcher"
	cmdPkg    = "./cmd/paper-searcher"
	importDir = "data/import"
)

var binPath = filepath.Join(binDir, binName)

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", binPath, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Import loads every YAML or JSON file in data/import. Files whose name
// starts with "venues" are imported as venues (first), all others as papers.
func Import() error {
	mg.Deps(Init, Build)

	entries, err := os.ReadDir(importDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", importDir, err)
	}

	var venues, papers []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		path := filepath.Join(importDir, e.Name())
		if strings.HasPrefix(e.Name(), "venues") {
			venues = append(venues, path)
		} else {
			papers = append(papers, path)
		}
	}
	sort.Strings(venues)
	sort.Strings(papers)

	if len(venues) > 0 {
		if err := sh.RunV(binPath, append([]string{"import", "venues"}, venues...)...); err != nil {
			return err
		}
	}
	if len(papers) > 0 {
		if err := sh.RunV(binPath, append([]string{"import", "papers"}, papers...)...); err != nil {
			return err
		}
	}
	if len(venues)+len(papers) == 0 {
		fmt.Printf("No files to import in %s\n", importDir)
	}
	return nil
}

// Serve builds the CLI and starts the HTTP API with the current config.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "serve")
}

// Stats prints venue counts by rank, type, and domain.
func Stats() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "venues", "stats")
}
