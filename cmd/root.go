package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sadopc/lapse/internal/config"
	"github.com/sadopc/lapse/internal/store"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "lapse",
	Short: "Passive time tracker for your desktop.",
	Long: `lapse samples the foreground window and idle state, attributes your
time per day, category and app, and keeps the whole ledger as one
human-diffable JSON file.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLog)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for ledger and config (default: user config dir)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "warn", "log level: debug, info, warn, error")
}

func initLog() {
	level, _ := rootCmd.PersistentFlags().GetString("loglevel")
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.WarnLevel)
		log.Warnf("unknown log level %q, using warn", level)
	}
}

// paths resolves the config and ledger locations, honoring --data-dir.
func paths() (configPath, ledgerPath string, err error) {
	if dataDir != "" {
		return filepath.Join(dataDir, "config.json"), filepath.Join(dataDir, "ledger.json"), nil
	}
	configPath, err = config.DefaultPath()
	if err != nil {
		return "", "", err
	}
	ledgerPath, err = store.DefaultPath()
	if err != nil {
		return "", "", err
	}
	return configPath, ledgerPath, nil
}

// open loads the config document and the ledger. Callers must Close the
// store.
func open() (*store.Store, *config.Config, error) {
	configPath, ledgerPath, err := paths()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ledgerPath, cfg)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			return nil, nil, fmt.Errorf("%w\nthe file was left untouched; rename or repair it, or run 'lapse reset --yes' to start over", err)
		}
		return nil, nil, err
	}
	return st, cfg, nil
}

// loadConfig loads just the config document, for commands that never
// touch the ledger.
func loadConfig() (*config.Config, error) {
	configPath, _, err := paths()
	if err != nil {
		return nil, err
	}
	return config.Load(configPath)
}

// gate enforces the optional password before stats are shown. With no
// password set it is a no-op.
func gate(cfg *config.Config) error {
	if cfg.PasswordHash == "" {
		return nil
	}
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if !cfg.CheckPassword(strings.TrimSpace(line)) {
		return errors.New("incorrect password")
	}
	return nil
}
