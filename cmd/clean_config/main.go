// Command clean_config repairs ~/.appgen.yaml after a bad hand edit: unknown
// keys and invalid values are removed so the defaults apply again.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/firecrawl/appgen/internal/config"
	"github.com/firecrawl/appgen/pkg/utils"
)

func main() {
	path := pflag.StringP("path", "p", "", "config file to clean (default $HOME/.appgen.yaml)")
	dryRun := pflag.Bool("dry-run", false, "report what would be removed without writing")
	pflag.Parse()

	if *path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			utils.PrintError(fmt.Sprintf("Error finding home directory: %v", err))
			os.Exit(1)
		}
		*path = filepath.Join(home, ".appgen.yaml")
	}

	if !utils.FileExists(*path) {
		fmt.Printf("No config at %s, nothing to clean\n", *path)
		return
	}

	removed, err := config.Clean(*path, *dryRun)
	if err != nil {
		utils.PrintError(fmt.Sprintf("Error cleaning config: %v", err))
		os.Exit(1)
	}
	if len(removed) == 0 {
		utils.PrintSuccess(fmt.Sprintf("%s is already clean", *path))
		return
	}
	verb := "Removed"
	if *dryRun {
		verb = "Would remove"
	}
	utils.PrintSuccess(fmt.Sprintf("%s %s from %s", verb, strings.Join(removed, ", "), *path))
}
