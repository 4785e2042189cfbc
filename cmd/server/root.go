package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mapkv/mapkv/cmd/util"
	"github.com/mapkv/mapkv/lib/stats"
	"github.com/mapkv/mapkv/lib/store"
	"github.com/mapkv/mapkv/rpc/common"
	"github.com/mapkv/mapkv/rpc/server"
)

var rootCmd = &cobra.Command{
	Use:     "mapkv-server",
	Short:   "Start the mapkv server",
	Long:    "Start the mapkv server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is MAPKV_<flag> (e.g. MAPKV_STORAGE=/var/lib/mapkv/storage.bin)",
	PreRunE: processConfig,
	RunE:    run,
}

var cfg common.ServerConfig

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringP("address", "a", "", util.WrapString("The TCP address to listen on, e.g. :9999 (required)"))
	storageDefault := "storage.bin"
	if exe, err := os.Executable(); err == nil {
		storageDefault = filepath.Join(filepath.Dir(exe), "storage.bin")
	}
	rootCmd.Flags().StringP("storage", "s", storageDefault, util.WrapString("Path to the memory-mapped storage file"))
	rootCmd.Flags().Duration("stats-interval", 60*time.Second, util.WrapString("How often to print stats to the log"))
	rootCmd.Flags().String("log-level", "info", util.WrapString("Log level: debug, info, warn, error"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	cfg.Address = viper.GetString("address")
	cfg.StoragePath = viper.GetString("storage")
	cfg.StatsInterval = viper.GetDuration("stats-interval")
	cfg.LogLevel = viper.GetString("log-level")

	if cfg.Address == "" {
		return fmt.Errorf("--address is required")
	}
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	logger := common.NewLogger("server", common.ParseLogLevel(cfg.LogLevel))
	logger.Infof("starting mapkv server%s", cfg.String())

	st, err := store.Open(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	sts := stats.New(st.Size())
	srv := server.New(cfg, st, sts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("listening on %s", cfg.Address)
	return srv.Run(ctx)
}

func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("mapkv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
