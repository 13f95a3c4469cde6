package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/getyour/gyadmin/internal/iofs"
	"github.com/getyour/gyadmin/internal/iologger"
	app "github.com/getyour/gyadmin/pkg"
	"github.com/getyour/gyadmin/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
	Use:     "gyadmin",
	Short:   "Administrative toolkit for the Get:Your benefits platform",
	Long: `gyadmin is the operator toolkit for the Get:Your income-qualified
benefits platform. It clones applicant record sets between environments
for support and testing, bootstraps non-production stores and produces
the CSV extracts that feed the program dashboards.

Environment profiles are named "<app>_<env>", e.g. getyour_prod,
getyour_dev or getyour_local. The "_local" profiles are backed by a
single-file SQLite store; the rest connect to PostgreSQL using the
credentials from config.yaml.`,
	PersistentPreRunE: bootstrap,
	RunE:              runRoot,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings; append so the early
	// bootstrap lines survive.
	if err = iologger.Init(config.LogDir(homeDir), cfg.Log, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))

	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Remove the automatic "gyadmin version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.Flags().BoolP("version", "V", false, "version for gyadmin")

	rootCmd.AddCommand(getCloneCmd())
	rootCmd.AddCommand(getExtractCmd())
	rootCmd.AddCommand(getInitCmd())
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are
	// allowed. These match the fields included in config.ToOptions().
	// Per-profile database credentials live only in config.yaml.
	v.SetEnvPrefix("GYADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("local_path", "LOCAL_PATH")

	// Clone configuration
	v.BindEnv("clone.template_account", "CLONE_TEMPLATE_ACCOUNT")
	v.BindEnv("clone.dev_profile", "CLONE_DEV_PROFILE")

	// Extract configuration
	v.BindEnv("extract.output_dir", "EXTRACT_OUTPUT_DIR")
	v.BindEnv("extract.user_files_dir", "EXTRACT_USER_FILES_DIR")
	v.BindEnv("extract.filename_suffix", "EXTRACT_FILENAME_SUFFIX")
	v.BindEnv("extract.profile", "EXTRACT_PROFILE")

	// Blob store configuration
	v.BindEnv("blob.bucket", "BLOB_BUCKET")
	v.BindEnv("blob.region", "BLOB_REGION")
	v.BindEnv("blob.endpoint", "BLOB_ENDPOINT")
	v.BindEnv("blob.access_key_id", "BLOB_ACCESS_KEY_ID")
	v.BindEnv("blob.secret_access_key", "BLOB_SECRET_ACCESS_KEY")
	v.BindEnv("blob.path_style", "BLOB_PATH_STYLE")

	// Log configuration
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.destination", "LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "JOBS_NUMBER")

	v.AutomaticEnv()
}
