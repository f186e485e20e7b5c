package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-transfers/components/admin"
)

type fixturesCmd struct {
	Path string `arg:"" optional:"" type:"existingfile" help:"Fixtures YAML file (defaults to the embedded mock data)."`
}

type fixturesReport struct {
	Source      string              `yaml:"source"`
	Version     string              `yaml:"version"`
	Collections map[string]int      `yaml:"collections"`
	Statuses    map[string][]string `yaml:"statuses,omitempty"`
}

func (cmd *fixturesCmd) Run() error {
	doc, err := loadFixtures(cmd.Path)
	if err != nil {
		return err
	}
	report := fixturesReport{
		Source:      doc.Source,
		Version:     doc.Version,
		Collections: doc.Summary(),
		Statuses:    map[string][]string{},
	}
	collections := make([]string, 0, len(report.Collections))
	for name := range report.Collections {
		collections = append(collections, name)
	}
	sort.Strings(collections)
	for _, name := range collections {
		if statuses := admin.Statuses(name); statuses != nil {
			report.Statuses[name] = statuses
		}
	}
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("transfers: encode report: %w", err)
	}
	return encoder.Close()
}

func loadFixtures(path string) (*admin.Fixtures, error) {
	if path == "" {
		return admin.DefaultFixtures()
	}
	return admin.ReadFixtures(path)
}
