package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gbit-go/internal/app"
	"gbit-go/internal/client"
	"gbit-go/internal/config"
	"gbit-go/internal/fs"
	"gbit-go/internal/gbit"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gbit",
	Short: "Push and pull full-tree project snapshots",
}

// banner prints the welcome banner, but only on interactive terminals.
func banner() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Println(`  ____ ____ ___ _____
 / ___| __ )_ _|_   _|
| |  _|  _ \| |  | |
| |_| | |_) | |  | |
 \____|____/___| |_|`)
	fmt.Println("--- snapshot versioning ---")
	fmt.Println()
}

// loadClientConfig reads the per-user CLI config.
func loadClientConfig() (*config.ClientConfig, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	path := defaults["client_config_path"]
	cfg, err := config.ReadClientConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// requireIdentity loads the client config and fails if no identity has
// been set with `gbit login`.
func requireIdentity() (*config.ClientConfig, error) {
	cfg, _, err := loadClientConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Identity == "" {
		return nil, fmt.Errorf("no identity configured: run `gbit login <identity>` first")
	}
	return cfg, nil
}

// projectFilesystem builds a filesystem manager with the project's
// .gbitignore patterns applied on top of the built-in rules.
func projectFilesystem(root string) (*fs.OSFilesystemManager, error) {
	patterns, err := fs.ParseIgnoreFile(filepath.Join(root, config.IgnoreFile))
	if err != nil {
		return nil, err
	}
	// Never capture the project metadata or the ignore list itself.
	patterns = append(patterns, config.ProjectFile, config.IgnoreFile)
	return fs.NewOSFilesystemManager(patterns), nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a project for snapshot tracking",
	RunE: func(cmd *cobra.Command, args []string) error {
		banner()

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		name := filepath.Base(cwd)

		if err := config.InitProject(filepath.Join(cwd, config.ProjectFile), &config.Project{Name: name}); err != nil {
			return err
		}

		ignorePath := filepath.Join(cwd, config.IgnoreFile)
		if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
			defaultIgnore := "node_modules\n.env\n.git\n.next\n"
			if err := os.WriteFile(ignorePath, []byte(defaultIgnore), 0644); err != nil {
				return fmt.Errorf("writing ignore file: %w", err)
			}
		}

		fmt.Printf("Initialized repository %q\n", name)
		fmt.Printf("Created %s and %s\n", config.ProjectFile, config.IgnoreFile)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login IDENTITY",
	Short: "Persist your owner identity locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apiURL, _ := cmd.Flags().GetString("api-url")

		cfg, path, err := loadClientConfig()
		if err != nil {
			return err
		}

		cfg.Identity = args[0]
		if apiURL != "" {
			cfg.APIURL = apiURL
		}

		if err := config.WriteClientConfig(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (server: %s)\n", cfg.Identity, cfg.APIURL)
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit MESSAGE",
	Short: "Push the entire project as a new snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireIdentity()
		if err != nil {
			return err
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		project, err := config.ReadProject(filepath.Join(cwd, config.ProjectFile))
		if err != nil {
			return fmt.Errorf("not a gbit project (run `gbit init` first): %w", err)
		}

		fsmgr, err := projectFilesystem(cwd)
		if err != nil {
			return err
		}

		root, err := fsmgr.Resolve(cwd)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}

		collector := gbit.NewCollector(fsmgr, gbit.NewNopLogger())
		manifest, err := collector.Collect(root)
		if err != nil {
			return fmt.Errorf("capturing project: %w", err)
		}
		if len(manifest) == 0 {
			return fmt.Errorf("nothing to commit: no files found")
		}

		fmt.Printf("Pushing %d file(s) from %s...\n", len(manifest), project.Name)

		c := client.New(cfg.APIURL)
		result, err := c.Push(cmd.Context(), cfg.Identity, project.Name, args[0], manifest)
		if err != nil {
			return fmt.Errorf("commit failed: %w", err)
		}

		fmt.Printf("Snapshot %s stored.\n", result.Hash)
		if result.URL != "" {
			fmt.Printf("Dashboard: %s\n", result.URL)
		}
		return nil
	},
}

var cloneCmd = &cobra.Command{
	Use:   "clone REPONAME",
	Short: "Clone a repository into a new directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireIdentity()
		if err != nil {
			return err
		}
		repoName := args[0]

		c := client.New(cfg.APIURL)
		manifest, err := c.Pull(cmd.Context(), cfg.Identity, repoName)
		if err != nil {
			return fmt.Errorf("clone failed: %w", err)
		}

		// Validate the manifest forms a consistent tree before touching disk.
		if _, err := gbit.BuildTree(manifest); err != nil {
			return fmt.Errorf("snapshot is inconsistent: %w", err)
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		target := filepath.Join(cwd, repoName)

		fsmgr := fs.NewOSFilesystemManager(nil)
		if err := fsmgr.WriteManifest(target, manifest); err != nil {
			return fmt.Errorf("materializing snapshot: %w", err)
		}

		fmt.Printf("Cloned %q (%d files) into %s\n", repoName, len(manifest), target)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List the files the next commit would capture",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		fsmgr, err := projectFilesystem(cwd)
		if err != nil {
			return err
		}

		root, err := fsmgr.Resolve(cwd)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}

		collector := gbit.NewCollector(fsmgr, gbit.NewNopLogger())
		manifest, err := collector.Collect(root)
		if err != nil {
			return err
		}

		for _, p := range manifest.Paths() {
			fmt.Println(p)
		}
		fmt.Printf("%d file(s) tracked.\n", len(manifest))
		return nil
	},
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List your repositories on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireIdentity()
		if err != nil {
			return err
		}

		c := client.New(cfg.APIURL)
		repos, err := c.ListRepositories(cmd.Context(), cfg.Identity)
		if err != nil {
			return err
		}

		if len(repos) == 0 {
			fmt.Println("No repositories.")
			return nil
		}
		for _, r := range repos {
			fmt.Printf("%-30s %-14s %s\n", r.Name, r.LastHash, r.LastMessage)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search public repositories by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadClientConfig()
		if err != nil {
			return err
		}

		c := client.New(cfg.APIURL)
		repos, err := c.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if len(repos) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, r := range repos {
			fmt.Printf("%-20s %-30s %s\n", r.OwnerID, r.Name, r.LastMessage)
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm REPONAME",
	Short: "Delete a repository and all its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireIdentity()
		if err != nil {
			return err
		}

		c := client.New(cfg.APIURL)
		if err := c.Delete(cmd.Context(), cfg.Identity, args[0]); err != nil {
			return err
		}
		fmt.Printf("Repository %q removed.\n", args[0])
		return nil
	},
}

func init() {
	loginCmd.Flags().String("api-url", "", "Server API base URL")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(rmCmd)
}
