package main

import (
	"fmt"
	"os"

	"github.com/hogwarts-cloud/hpcctl/config"
	"github.com/hogwarts-cloud/hpcctl/internal/hoststack"
	"github.com/hogwarts-cloud/hpcctl/internal/inventory"
	"github.com/hogwarts-cloud/hpcctl/internal/log"
	"github.com/hogwarts-cloud/hpcctl/internal/mailrelay"
	"github.com/hogwarts-cloud/hpcctl/internal/models"
	"github.com/hogwarts-cloud/hpcctl/internal/resolver"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	answerFile string
	output     string
	target     string

	cfg config.Config
)

var root = &cobra.Command{
	Use:   "hpcctl",
	Short: "Pre-flight configuration resolver for HPC cluster installations",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}

		if cmd.Flags().Changed("log-format") {
			cfg.Log.Format = logFormat
		}

		log.ConfigureWriter(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		return nil
	},
}

var resolve = &cobra.Command{
	Use:   "resolve",
	Short: "Validate the answer file and print the resolved cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cluster, err := resolveCluster()
		if err != nil {
			return err
		}

		if output != "" {
			if err := inventory.Write(cluster, output); err != nil {
				return fmt.Errorf("failed to write inventory: %w", err)
			}
			return nil
		}

		data, err := inventory.Render(cluster)
		if err != nil {
			return fmt.Errorf("failed to render inventory: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var dump = &cobra.Command{
	Use:   "dump",
	Short: "Write the resolved answer file with every inherited value made explicit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cluster, err := resolveCluster()
		if err != nil {
			return err
		}

		if err := newResolver().Dump(cluster, target); err != nil {
			return fmt.Errorf("failed to dump answer file: %w", err)
		}

		return nil
	},
}

var probeRelay = &cobra.Command{
	Use:   "probe-relay",
	Short: "Check that the postfix relay of the answer file answers SMTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cluster, err := resolveCluster()
		if err != nil {
			return err
		}

		prober := mailrelay.New(mailrelay.Config{
			Timeout:   cfg.Relay.Timeout,
			LocalName: cfg.Relay.LocalName,
		})

		if err := prober.Probe(cmd.Context(), cluster.MailSystem); err != nil {
			return fmt.Errorf("failed to probe relay: %w", err)
		}

		return nil
	},
}

func newResolver() *resolver.Resolver {
	return resolver.New(resolver.Config{
		Host: hoststack.New(hoststack.Config{
			RouteTable: cfg.Host.RouteTable,
			ResolvConf: cfg.Host.ResolvConf,
		}),
	})
}

func resolveCluster() (*models.Cluster, error) {
	cluster, err := newResolver().Resolve(answerFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve answer file: %w", err)
	}

	return cluster, nil
}

func init() {
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to tool settings file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console, json)")

	for _, cmd := range []*cobra.Command{resolve, dump, probeRelay} {
		cmd.Flags().StringVar(&answerFile, "answerfile", "", "Path to answer file")
		cmd.MarkFlagRequired("answerfile")
	}

	resolve.Flags().StringVar(&output, "output", "", "Write the inventory to this file instead of stdout")
	dump.Flags().StringVar(&target, "to", "", "Path of the dumped answer file")
	dump.MarkFlagRequired("to")

	root.AddCommand(resolve, dump, probeRelay)
}

func main() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
