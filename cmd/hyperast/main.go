// Package main provides the entry point for the hyperast CLI tool.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperast-go/hyperast/cmd/hyperast/commands"
	"github.com/hyperast-go/hyperast/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

// ensureMallocTunables re-execs the process with glibc malloc env vars
// set before the first malloc() call — mallopt() from Go/CGO later is
// too late. hyperast links libgit2 and tree-sitter through CGO, both
// of which allocate heavily outside Go's own allocator; left alone,
// default glibc arena growth under campaign ingestion fragments
// badly.
//
// MALLOC_ARENA_MAX=2: cap arena count well below the default 8*cores.
// MALLOC_MMAP_THRESHOLD_=32768: allocations >= 32 KiB go through mmap
// and are returned to the OS on free() instead of sitting in an arena.
// With that threshold, tree-sitter parse trees and libgit2 blob/tree
// buffers (typically 100 KiB-10 MiB) bypass arenas entirely.
func ensureMallocTunables() {
	if os.Getenv("MALLOC_ARENA_MAX") != "" {
		return
	}

	exe, err := os.Executable()
	if err != nil {
		return
	}

	os.Setenv("MALLOC_ARENA_MAX", "2")
	os.Setenv("MALLOC_MMAP_THRESHOLD_", "32768")
	os.Setenv("MALLOC_TRIM_THRESHOLD_", "16384")
	os.Setenv("MALLOC_MMAP_MAX_", "65536")

	execErr := syscall.Exec(exe, os.Args, os.Environ())
	if execErr != nil {
		fmt.Fprintf(os.Stderr, "re-exec failed: %v\n", execErr)
	}
}

func main() {
	ensureMallocTunables()

	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "hyperast",
		Short: "HyperAST - content-addressed commit-tree ingestion",
		Long: `hyperast builds a hash-consed, shared syntax-tree store from a
repository's commit history.

Commands:
  ingest    Walk a commit range and fold it into the node store
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewIngestCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "hyperast %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
