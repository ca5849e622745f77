//go:build mage

package main

import (
	"path/filepath"
	"strconv"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups targets that drive the built CLI.
type Pipeline mg.Namespace

func binary() string {
	return filepath.Join(binDir, binName)
}

// Run acquires posts for tenant in mode (topic or creator) and generates count drafts.
func (Pipeline) Run(tenant, mode string, count int) error {
	mg.Deps(Build)
	return sh.RunV(binary(), "run", "--tenant", tenant, "--mode", mode, "--count", strconv.Itoa(count))
}

// Research collects content ideas on topic for tenant.
func (Pipeline) Research(tenant, topic string) error {
	mg.Deps(Build)
	return sh.RunV(binary(), "research", "--tenant", tenant, "--topic", topic)
}

// Drafts lists the most recent drafts.
func (Pipeline) Drafts() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "drafts", "list", "--kind", "draft")
}

// Export writes all drafts in format (yaml, json or docx) to data/exports.
func (Pipeline) Export(format string) error {
	mg.Deps(Build)
	return sh.RunV(binary(), "drafts", "export", "--format", format)
}

// Schedule runs the daily scheduler until interrupted.
func (Pipeline) Schedule() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "schedule", "run")
}
