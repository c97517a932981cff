package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/reviewer/internal/output"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the result cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count and size",
				Action: runCacheStatsCmd,
			},
			{
				Name:   "clear",
				Usage:  "Delete every cached result",
				Action: runCacheClearCmd,
			},
		},
	}
}

func runCacheStatsCmd(c *cli.Context) error {
	cfg, err := loadedConfig(c)
	if err != nil {
		return err
	}
	ch, err := openCache(c, cfg)
	if err != nil {
		return err
	}
	stats, err := ch.GetStats()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	status := "enabled"
	if !ch.Enabled() {
		status = "disabled"
	}
	return formatter.Output(output.NewTable("Cache", []string{"Metric", "Value"}, [][]string{
		{"Status", status},
		{"Directory", cfg.Cache.Dir},
		{"Entries", fmt.Sprintf("%d", stats.Entries)},
		{"Size", fmt.Sprintf("%d bytes", stats.TotalSize)},
		{"Oldest", stats.OldestAge.Round(time.Second).String()},
		{"Newest", stats.NewestAge.Round(time.Second).String()},
	}, nil, stats))
}

func runCacheClearCmd(c *cli.Context) error {
	cfg, err := loadedConfig(c)
	if err != nil {
		return err
	}
	ch, err := openCache(c, cfg)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if !ch.Enabled() {
		formatter.Warning("Cache is disabled")
		return nil
	}
	if err := ch.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	formatter.Success("Cleared %s", cfg.Cache.Dir)
	return nil
}
