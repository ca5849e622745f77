//go:build mage

// Package main contains Mage build targets for content-engine developer tooling.
package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the CLI expects.
var projectDirs = []string{
	".secrets",
	"data/exports",
}

// Init creates the project directory structure and a sample tenants file.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if _, err := os.Stat(tenantsFile); os.IsNotExist(err) {
		if err := os.WriteFile(tenantsFile, []byte(sampleTenants), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", tenantsFile, err)
		}
		fmt.Println("  ", tenantsFile)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir      = "bin"
	binName     = "content-engine"
	cmdPkg      = "./cmd/content-engine"
	tenantsFile = "tenants.yaml"
)

const sampleTenants = `tenants:
  - id: demo
    name: Demo
    persona:
      tone: cercano
      keywords: [liderazgo, productividad]
      custom_instructions: ""
    creators: []
    schedule:
      enabled: false
      time: "08:30"
      timezone: Europe/Madrid
      source: topic
      count: 3
`

// Build compiles the CLI binary into bin/, stamping the git version.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + gitVersion()
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests of every package.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

func gitVersion() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(v) == "" {
		return "dev"
	}
	return strings.TrimSpace(v)
}

// Stats prints non-blank Go lines per top-level directory, production and
// test code counted apart, plus the word count of the Markdown docs.
func Stats() error {
	counts := map[string][2]int{}
	docWords := 0
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir) {
				return filepath.SkipDir
			}
			return nil
		}

		switch filepath.Ext(name) {
		case ".go":
			n, err := countLines(path)
			if err != nil {
				return err
			}
			top := strings.SplitN(filepath.ToSlash(path), "/", 2)[0]
			c := counts[top]
			if strings.HasSuffix(name, "_test.go") {
				c[1] += n
			} else {
				c[0] += n
			}
			counts[top] = c
		case ".md":
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			docWords += len(strings.Fields(string(data)))
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var prod, test int
	fmt.Printf("%-12s  %8s  %8s\n", "Directory", "Go", "Tests")
	for _, dir := range dirs {
		c := counts[dir]
		prod += c[0]
		test += c[1]
		fmt.Printf("%-12s  %8d  %8d\n", dir, c[0], c[1])
	}
	fmt.Printf("%-12s  %8d  %8d\n", "total", prod, test)
	fmt.Printf("Words (Markdown): %d\n", docWords)
	return nil
}

// countLines counts the non-blank lines of a file.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n, nil
}
