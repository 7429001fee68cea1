// Package cmd implements the toilreg command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tech4life-beyond/toil-registry/internal/cmd/output"
	"github.com/tech4life-beyond/toil-registry/pkg/constants"
	"github.com/tech4life-beyond/toil-registry/pkg/logging"
	"github.com/tech4life-beyond/toil-registry/pkg/registry"
)

var (
	configFile string

	// Global flags shared by every command.
	flagRoot    string
	flagIndex   string
	flagRecords string
	flagExports string
	flagSchema  string
	flagOutput  string
	flagVerbose bool
	flagQuiet   bool
	flagNoColor bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toilreg",
	Short: "TOIL product registry pipeline",
	Long: `Toilreg maintains the TOIL product registry: it parses the canonical
product index, cross-validates it against the per-product record store,
and generates the committed JSON export artifacts.

The build command writes the artifacts, build --check compares them with
the committed ones without writing, validate reports every invariant
violation, and sync renders review-only candidate artifacts from an
external product source.`,
	PersistentPreRunE: setupCommand,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.toilreg.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", ".", "registry root directory")
	rootCmd.PersistentFlags().StringVar(&flagIndex, "index", "", "canonical index document (default <root>/"+constants.DefaultIndexPath+")")
	rootCmd.PersistentFlags().StringVar(&flagRecords, "records", "", "record store directory (default <root>/"+constants.DefaultRecordsDir+")")
	rootCmd.PersistentFlags().StringVar(&flagExports, "exports", "", "exports directory (default <root>/"+constants.DefaultExportsDir+")")
	rootCmd.PersistentFlags().StringVar(&flagSchema, "schema", "", "schema document (default <root>/"+constants.DefaultSchemaPath+")")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	for _, name := range []string{"root", "index", "records", "exports", "schema", "verbose", "quiet"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", name, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".toilreg")
	}

	// Load .env files before Viper env binding; .env.local overrides .env.
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Overload(envFile); err == nil && flagVerbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}

	viper.SetEnvPrefix("TOILREG")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil && flagVerbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// setupCommand is called before any command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	if flagOutput == "" {
		flagOutput = string(output.DetectFormat(""))
	}
	if _, err := output.ParseFormat(flagOutput); err != nil {
		return err
	}
	return nil
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	level := zerolog.InfoLevel
	if flagVerbose || viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if flagQuiet || viper.GetBool("quiet") {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	config := &logging.Config{
		Level:     level.String(),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    os.Getenv("LOG_OUTPUT"),
		NoColor:   flagNoColor,
		AddCaller: level <= zerolog.DebugLevel,
	}
	if config.Format == "" {
		config.Format = "auto"
	}
	if config.Output == "" {
		config.Output = "stderr"
	}

	logging.Configure(config)
}

// snapshot resolves the registry paths from flags, config, and defaults.
func snapshot() registry.Snapshot {
	root := viper.GetString("root")
	if root == "" {
		root = "."
	}
	snap := registry.NewSnapshot(root)

	if path := viper.GetString("index"); path != "" {
		snap.IndexPath = path
	}
	if path := viper.GetString("records"); path != "" {
		snap.RecordsDir = path
	}
	if path := viper.GetString("exports"); path != "" {
		snap.ExportsDir = path
	}
	if path := viper.GetString("schema"); path != "" {
		snap.SchemaPath = path
	}
	return snap
}

// formatter returns the output formatter selected by the global flags.
func formatter() output.Formatter {
	format, err := output.ParseFormat(flagOutput)
	if err != nil {
		format = output.FormatTable
	}
	return output.NewFormatter(format)
}
