package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/lmchat/internal/profile"
	"github.com/hrygo/lmchat/internal/version"
	"github.com/hrygo/lmchat/server"
	"github.com/hrygo/lmchat/store"
	"github.com/hrygo/lmchat/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:           "lmchat",
		Short:         `A lightweight chat backend that streams answers from a local LM Studio server.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile := &profile.Profile{
				Mode:         viper.GetString("mode"),
				Addr:         viper.GetString("addr"),
				Port:         viper.GetInt("port"),
				Data:         viper.GetString("data"),
				PublicDir:    viper.GetString("public"),
				LMStudioBase: viper.GetString("lm-studio-base"),
				SystemPrompt: viper.GetString("system-prompt"),
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				return err
			}
			instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)
			setupLogger(instanceProfile)

			return run(cmd.Context(), instanceProfile)
		},
	}
)

func run(ctx context.Context, instanceProfile *profile.Profile) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		slog.Error("failed to create db driver", slog.String("error", err.Error()))
		return err
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		slog.Error("failed to migrate", slog.String("error", err.Error()))
		_ = storeInstance.Close()
		return err
	}

	s, err := server.NewServer(ctx, instanceProfile, storeInstance)
	if err != nil {
		slog.Error("failed to create server", slog.String("error", err.Error()))
		_ = storeInstance.Close()
		return err
	}

	printGreetings(instanceProfile)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		// The parent context is already done here; shutdown gets its own deadline.
		s.Shutdown(context.WithoutCancel(gctx))
		return nil
	})
	return g.Wait()
}

func setupLogger(instanceProfile *profile.Profile) {
	var handler slog.Handler
	if instanceProfile.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func init() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	viper.SetDefault("mode", "dev")
	viper.SetDefault("addr", "0.0.0.0")
	viper.SetDefault("port", 5000)
	viper.SetDefault("data", ".")
	viper.SetDefault("public", "public")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "0.0.0.0", "address of server")
	rootCmd.PersistentFlags().Int("port", 5000, "port of server")
	rootCmd.PersistentFlags().String("data", ".", "data directory holding chat_history.db")
	rootCmd.PersistentFlags().String("public", "public", "directory holding index.html")
	rootCmd.PersistentFlags().String("lm-studio-base", "", "base URL of the LM Studio server (env LM_STUDIO_BASE)")
	rootCmd.PersistentFlags().String("system-prompt", "", "system instruction sent with every prompt")

	for _, name := range []string{"mode", "addr", "port", "data", "public", "lm-studio-base", "system-prompt"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("lmchat")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func printGreetings(instanceProfile *profile.Profile) {
	fmt.Printf("lmchat %s started successfully!\n", instanceProfile.Version)
	fmt.Printf("Data directory: %s\n", instanceProfile.Data)
	fmt.Printf("Model server: %s\n", instanceProfile.LMStudioBase)
	fmt.Printf("Server running on port %d\n", instanceProfile.Port)
	fmt.Printf("Access your chat at: http://localhost:%d\n", instanceProfile.Port)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("lmchat exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
