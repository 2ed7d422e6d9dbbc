package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/pmspec/pmspec/internal/changelog"
	"github.com/pmspec/pmspec/internal/config"
	"github.com/pmspec/pmspec/internal/store"
)

// openStore builds a store from the resolved config plus command flags.
func openStore(cmd *cobra.Command) (*store.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	dirFlag, _ := cmd.Flags().GetString("dir")
	dir, err := cfg.ResolveDataDir(dirFlag)
	if err != nil {
		return nil, nil, err
	}

	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = cfg.DefaultUser()
	}

	s := store.New(dir, &store.Config{
		Logger:    log.New(os.Stderr, "[pmspec] ", log.LstdFlags),
		Changelog: changelog.NewService(dir),
		User:      user,
	})
	return s, cfg, nil
}

// parseDate accepts YYYY-MM-DD or natural language ("next friday",
// "in 2 weeks") and returns the date in YYYY-MM-DD form.
func parseDate(input string) (string, error) {
	if t, err := time.Parse("2006-01-02", input); err == nil {
		return t.Format("2006-01-02"), nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(input, time.Now())
	if err != nil || result == nil {
		return "", fmt.Errorf("could not parse date %q (use YYYY-MM-DD or natural language)", input)
	}
	return result.Time.Format("2006-01-02"), nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
