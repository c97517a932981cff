package main

import (
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/reviewer/internal/output"
	scannerSvc "github.com/panbanda/reviewer/internal/service/scanner"
)

func languageCmd() *cli.Command {
	return &cli.Command{
		Name:      "language",
		Aliases:   []string{"lang"},
		Usage:     "Show the language label detected for each source file",
		ArgsUsage: "[path...]",
		Action:    runLanguageCmd,
	}
}

// languageTable lists files grouped by language, largest group first.
func languageTable(groups map[string][]string) *output.Table {
	langs := make([]string, 0, len(groups))
	for lang := range groups {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if len(groups[langs[i]]) != len(groups[langs[j]]) {
			return len(groups[langs[i]]) > len(groups[langs[j]])
		}
		return langs[i] < langs[j]
	})

	var rows [][]string
	for _, lang := range langs {
		files := append([]string(nil), groups[lang]...)
		sort.Strings(files)
		for _, f := range files {
			rows = append(rows, []string{f, lang})
		}
	}

	return output.NewTable("Languages", []string{"File", "Language"}, rows, nil, map[string]any{"languages": groups})
}

func runLanguageCmd(c *cli.Context) error {
	cfg, err := loadedConfig(c)
	if err != nil {
		return err
	}

	result, err := scannerSvc.New(scannerSvc.WithConfig(cfg)).ScanPaths(getPaths(c))
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(languageTable(result.LanguageGroups))
}
