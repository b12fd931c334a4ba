package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/nyblom/macstats/internal/config"
	"codeberg.org/nyblom/macstats/internal/influx"
	"codeberg.org/nyblom/macstats/internal/logger"
	"codeberg.org/nyblom/macstats/internal/monitor"
	"codeberg.org/nyblom/macstats/internal/pid"
	"codeberg.org/nyblom/macstats/internal/platform"
	"codeberg.org/nyblom/macstats/internal/sampler"
	"codeberg.org/nyblom/macstats/internal/smc"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "macstats",
		Short:         "Ship Mac hardware sensor metrics to InfluxDB",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(monitorCmd())
	root.AddCommand(pushCmd())
	root.AddCommand(testCmd())
	root.AddCommand(configCmd())
	root.AddCommand(probeCmd())

	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())

	return cfg, nil
}

func monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Continuously collect sensors and publish on an interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := pid.Write(); err != nil {
				return err
			}
			defer func() {
				if err := pid.Remove(); err != nil {
					logger.Warn().Err(err).Msg("Failed to remove PID file")
				}
			}()

			conn, reg, err := openController()
			if err != nil {
				return err
			}
			defer conn.Close()

			publisher, err := influx.NewPublisher(sinkConfig(cfg))
			if err != nil {
				return err
			}

			loop := monitor.New(
				sampler.New(conn, reg),
				publisher,
				reg,
				encodeConfig(cfg),
				groupFilter(cfg),
				cfg.PollInterval(),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loop.Run(ctx)

			return nil
		},
	}
}

func pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Collect one snapshot and publish it once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			conn, reg, err := openController()
			if err != nil {
				return err
			}
			defer conn.Close()

			publisher, err := influx.NewPublisher(sinkConfig(cfg))
			if err != nil {
				return err
			}

			snapshot := sampler.New(conn, reg).Sample(groupFilter(cfg))
			points := influx.Encode(snapshot, reg, encodeConfig(cfg))

			if err := publisher.Publish(cmd.Context(), points); err != nil {
				return err
			}

			logger.Info().
				Int("sensors", len(snapshot.Values)).
				Int("points", len(points)).
				Msg("Snapshot published")

			return nil
		},
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Verify sink reachability and credentials without writing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			publisher, err := influx.NewPublisher(sinkConfig(cfg))
			if err != nil {
				return err
			}

			if err := publisher.TestConnection(cmd.Context()); err != nil {
				return err
			}

			logger.Info().Str("url", cfg.Influx.URL).Msg("Connection OK")

			return nil
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective merged configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "hostname    = %q\n", cfg.Hostname)
			fmt.Fprintf(out, "interval    = %d\n", cfg.Interval)
			fmt.Fprintf(out, "\n[influx]\n")
			fmt.Fprintf(out, "url         = %q\n", cfg.Influx.URL)
			fmt.Fprintf(out, "database    = %q\n", cfg.Influx.Database)
			fmt.Fprintf(out, "username    = %q\n", cfg.Influx.Username)
			fmt.Fprintf(out, "password    = %s\n", redact(cfg.Influx.Password))
			fmt.Fprintf(out, "org         = %q\n", cfg.Influx.Org)
			fmt.Fprintf(out, "token       = %s\n", redact(cfg.Influx.Token))
			fmt.Fprintf(out, "bucket      = %q\n", cfg.Influx.Bucket)
			fmt.Fprintf(out, "prefix      = %q\n", cfg.Influx.MeasurementPrefix)
			for _, key := range sortedKeys(cfg.Influx.Tags) {
				fmt.Fprintf(out, "tag %s = %q\n", key, cfg.Influx.Tags[key])
			}
			fmt.Fprintf(out, "\n[metrics]\n")
			fmt.Fprintf(out, "cpu_temp    = %v\n", cfg.Metrics.CPUTemp)
			fmt.Fprintf(out, "gpu_temp    = %v\n", cfg.Metrics.GPUTemp)
			fmt.Fprintf(out, "system_temp = %v\n", cfg.Metrics.SystemTemp)
			fmt.Fprintf(out, "power       = %v\n", cfg.Metrics.Power)
			fmt.Fprintf(out, "fans        = %v\n", cfg.Metrics.Fans)

			return nil
		},
	}
}

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Enumerate every key the controller exposes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}

			conn, reg, err := openController()
			if err != nil {
				return err
			}
			defer conn.Close()

			return probe(conn, reg, cmd.OutOrStdout())
		},
	}
}

// probe walks the controller's key table and prints each key with its
// reported type and size, plus the decoded value for keys the catalog
// knows on this platform
func probe(conn *smc.Conn, reg *platform.Registry, out io.Writer) error {
	count, err := conn.KeyCount()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "platform %s, %d keys\n", reg.Platform(), count)

	for i := uint32(0); i < count; i++ {
		key, err := conn.KeyByIndex(i)
		if err != nil {
			logger.Debug().Uint32("index", i).Err(err).Msg("Key enumeration failed, skipping")
			continue
		}

		raw, err := conn.ReadKey(key)
		if err != nil {
			fmt.Fprintf(out, "%s  <unreadable>\n", key)
			continue
		}

		fmt.Fprintf(out, "%s  %-4s %2d", key, string(raw.Type), raw.Size())
		if desc, ok := reg.Resolve(key); ok {
			if value, decodeErr := smc.Decode(raw, desc.Unit); decodeErr == nil {
				fmt.Fprintf(out, "  %s = %s", desc.Name, value)
			} else {
				fmt.Fprintf(out, "  %s = <decode failed>", desc.Name)
			}
		}
		fmt.Fprintln(out)
	}

	return nil
}

// openController detects the platform, opens the SMC handle and builds
// the sensor registry for the detected hardware
func openController() (*smc.Conn, *platform.Registry, error) {
	detected, err := platform.DetectHost()
	if err != nil {
		logger.Warn().Err(err).
			Str("fallback", detected.String()).
			Msg("Platform detection failed, using fallback")
	}

	conn, err := smc.Open()
	if err != nil {
		return nil, nil, err
	}

	return conn, platform.NewRegistry(detected), nil
}

func sinkConfig(cfg *config.Config) influx.SinkConfig {
	return influx.SinkConfig{
		URL:      cfg.Influx.URL,
		Database: cfg.Influx.Database,
		Username: cfg.Influx.Username,
		Password: cfg.Influx.Password,
		Org:      cfg.Influx.Org,
		Token:    cfg.Influx.Token,
		Bucket:   cfg.Influx.Bucket,
	}
}

func encodeConfig(cfg *config.Config) influx.EncodeConfig {
	return influx.EncodeConfig{
		Prefix:   cfg.Influx.MeasurementPrefix,
		Hostname: cfg.Hostname,
		Tags:     cfg.Influx.Tags,
	}
}

func groupFilter(cfg *config.Config) sampler.GroupFilter {
	return sampler.GroupFilter{
		CPUTemp:    cfg.Metrics.CPUTemp,
		GPUTemp:    cfg.Metrics.GPUTemp,
		SystemTemp: cfg.Metrics.SystemTemp,
		Power:      cfg.Metrics.Power,
		Fans:       cfg.Metrics.Fans,
	}
}

func redact(s string) string {
	if s == "" {
		return `""`
	}

	return `"***"`
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}
