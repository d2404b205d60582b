package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tagwise/tagwise/ai/metrics"
	"github.com/tagwise/tagwise/ai/prompt"
	"github.com/tagwise/tagwise/ai/provider"
	"github.com/tagwise/tagwise/ai/tagging"
	"github.com/tagwise/tagwise/internal/profile"
	"github.com/tagwise/tagwise/internal/version"
	"github.com/tagwise/tagwise/server"
	"github.com/tagwise/tagwise/store"
	"github.com/tagwise/tagwise/store/db"
	"github.com/tagwise/tagwise/vault"
)

var rootCmd = &cobra.Command{
	Use:           "tagwise",
	Short:         `Generate and manage tags for markdown notes using LLM providers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Load .env from the current directory; absence is fine.
		_ = godotenv.Load()
		return nil
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag <note>",
	Short: "Tag a single note and update its frontmatter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		orch, _, cleanup, err := buildOrchestrator(cmd.Context(), p)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := orch.TagNote(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s (%d new tags via %s)\n", res.Path, len(res.Added), res.Strategy)
		if len(res.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(res.Tags, ", "))
		}
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Tag every note matching the filter, sequentially",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		orch, v, cleanup, err := buildOrchestrator(cmd.Context(), p)
		if err != nil {
			return err
		}
		defer cleanup()

		filter := vault.Filter{
			Folder: viper.GetString("folder"),
			Glob:   viper.GetString("glob"),
			Regex:  viper.GetString("regex"),
		}

		paths, err := v.List(filter)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Println("No notes match the filter.")
			return nil
		}

		// Confirmation gate before the batch begins; there is no mid-run
		// cancellation beyond interrupting the process.
		if !viper.GetBool("yes") {
			fmt.Printf("About to tag %d notes with %s. Continue? [y/N] ", len(paths), p.Provider)
			var answer string
			_, _ = fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" && answer != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		report, err := orch.TagBatch(cmd.Context(), filter)
		if err != nil {
			return err
		}
		fmt.Printf("Run %s: processed %d/%d, %d failed\n",
			report.RunID, report.Processed, len(paths), report.Failed)
		for _, r := range report.Results {
			if r.Err != nil {
				fmt.Printf("  FAILED %s (%s): %v\n", r.Path, r.LastState, r.Err)
			}
		}
		return nil
	},
}

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Send a minimal probe request to the configured provider",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		adapter, err := buildAdapter(p)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		result := provider.TestConnection(ctx, adapter, nil)
		if !result.Success {
			return fmt.Errorf("connection to %s failed: %s", adapter.Name(), result.Error)
		}
		fmt.Printf("Connection to %s OK\n", adapter.Name())
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the suggest API over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		adapter, err := buildAdapter(p)
		if err != nil {
			return err
		}
		exporter := metrics.NewExporter(metrics.DefaultConfig())
		s := server.NewServer(p, adapter, provider.NewClient(nil), exporter)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		c := make(chan os.Signal, 1)
		signal.Notify(c, terminationSignals...)
		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		fmt.Printf("tagwise %s serving on %s:%d\n", p.Version, p.Addr, p.Port)
		if err := s.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:              viper.GetString("mode"),
		Addr:              viper.GetString("addr"),
		Port:              viper.GetInt("port"),
		Provider:          viper.GetString("provider"),
		APIKey:            viper.GetString("api-key"),
		Endpoint:          viper.GetString("endpoint"),
		Model:             viper.GetString("model"),
		Language:          viper.GetString("language"),
		MaxTags:           viper.GetInt("max-tags"),
		ContentLimit:      viper.GetInt("content-limit"),
		RequestIntervalMs: viper.GetInt("request-interval-ms"),
		VaultRoot:         viper.GetString("vault"),
		Driver:            viper.GetString("driver"),
		DSN:               viper.GetString("dsn"),
		Data:              viper.GetString("data"),
	}
	p.FromEnv()
	p.Version = version.GetCurrentVersion(p.Mode)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func buildAdapter(p *profile.Profile) (provider.Adapter, error) {
	return provider.New(p.Provider, provider.Config{
		ServiceType: provider.ServiceType(p.ServiceType),
		Endpoint:    p.Endpoint,
		APIKey:      p.APIKey,
		Model:       p.Model,
		Language:    p.Language,
		MaxTokens:   1024,
		Temperature: 0.3,
	})
}

// buildOrchestrator wires the adapter, vault, and (when configured) the
// run-history store together. The returned cleanup closes the store.
func buildOrchestrator(ctx context.Context, p *profile.Profile) (*tagging.Orchestrator, *vault.Vault, func(), error) {
	adapter, err := buildAdapter(p)
	if err != nil {
		return nil, nil, nil, err
	}
	v, err := vault.New(p.VaultRoot)
	if err != nil {
		return nil, nil, nil, err
	}

	orch := tagging.New(adapter, nil, v, tagging.Options{
		Mode:            prompt.ModeGenerateNew,
		MaxTags:         p.MaxTags,
		Language:        p.Language,
		Model:           p.Model,
		ContentLimit:    p.ContentLimit,
		RequestInterval: time.Duration(p.RequestIntervalMs) * time.Millisecond,
	})

	cleanup := func() {}
	if p.Driver != "" {
		dbDriver, err := db.NewDBDriver(p)
		if err != nil {
			return nil, nil, nil, err
		}
		storeInstance := store.New(dbDriver, p)
		if err := storeInstance.Migrate(ctx); err != nil {
			_ = storeInstance.Close()
			return nil, nil, nil, err
		}
		orch.SetRecorder(storeInstance)
		cleanup = func() {
			if err := storeInstance.Close(); err != nil {
				slog.Error("failed to close store", "error", err)
			}
		}
	}
	return orch, v, cleanup, nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 28091)
	viper.SetDefault("provider", "openai")
	viper.SetDefault("language", "default")
	viper.SetDefault("max-tags", 10)

	pf := rootCmd.PersistentFlags()
	pf.String("mode", "dev", `mode of run, can be "prod" or "dev" or "demo"`)
	pf.String("addr", "", "address for the serve command")
	pf.Int("port", 28091, "port for the serve command")
	pf.String("provider", "openai", "LLM provider name")
	pf.String("api-key", "", "LLM API key")
	pf.String("endpoint", "", "provider endpoint URL (provider default when empty)")
	pf.String("model", "", "model name (provider default when empty)")
	pf.String("language", "default", "target language for generated tags")
	pf.Int("max-tags", 10, "maximum tags to request per note")
	pf.Int("content-limit", 4000, "prompt content cap in runes (0 = uncapped)")
	pf.Int("request-interval-ms", 0, "pause between batch requests in milliseconds")
	pf.String("vault", ".", "vault root directory")
	pf.String("driver", "", "run-history database driver (sqlite, postgres); empty disables history")
	pf.String("dsn", "", "run-history database source name (aka. DSN)")
	pf.String("data", "", "data directory for the sqlite history database")

	for _, key := range []string{
		"mode", "addr", "port", "provider", "api-key", "endpoint", "model",
		"language", "max-tags", "content-limit", "request-interval-ms",
		"vault", "driver", "dsn", "data",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(key)); err != nil {
			panic(err)
		}
	}

	bf := batchCmd.Flags()
	bf.String("folder", "", "restrict the batch to a folder under the vault root")
	bf.String("glob", "", "glob pattern matched against note paths")
	bf.String("regex", "", "regular expression matched against note paths")
	bf.Bool("yes", false, "skip the confirmation gate")
	for _, key := range []string{"folder", "glob", "regex", "yes"} {
		if err := viper.BindPFlag(key, bf.Lookup(key)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("tagwise")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	rootCmd.AddCommand(tagCmd, batchCmd, testConnectionCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
