package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".config", "inboxdomains")
	dataDir := filepath.Join(home, ".local", "share", "inboxdomains")

	// Create directories
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	configFile := filepath.Join(configDir, "config.toml")

	// Check if config already exists
	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("Config file already exists at %s\n", configFile)
		fmt.Println("Use 'inboxdomains config show' to view current configuration")
		return nil
	}

	// Write default config
	if err := os.WriteFile(configFile, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Create OAuth 2.0 desktop credentials for the Gmail API")
	fmt.Printf("  2. Save credentials.json to %s/\n", configDir)
	fmt.Println("  3. Run 'inboxdomains auth login'")
	fmt.Println("  4. Run 'inboxdomains fetch'")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No config file found. Run 'inboxdomains config init' to create one.")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	fmt.Printf("# Config file: %s\n\n", configPath)
	fmt.Println(string(data))
	return nil
}

const defaultConfig = `# inboxdomains configuration
# Every key can be overridden with INBOXDOMAINS_<SECTION>_<KEY>,
# e.g. INBOXDOMAINS_FETCH_MAX_PER_FETCH=500

[gmail]
credentials_path = "~/.config/inboxdomains/credentials.json"
token_path = "~/.config/inboxdomains/token.json"
label = "INBOX"

[cache]
backend = "json"   # json, sqlite or bolt
path = "~/.local/share/inboxdomains/email_cache.json"

[fetch]
max_per_fetch = 1000       # messages per fetch invocation
page_size = 100            # ids per list call (max 100)
batch_size = 40            # metadata calls between batch pauses
page_delay_ms = 100
batch_delay_ms = 1000
rate_limit_delay_ms = 5000

[log]
level = "info"       # debug, info, warn, error
format = "console"   # console or json

[metrics]
textfile_path = ""   # e.g. /var/lib/node_exporter/textfile/inboxdomains.prom

[schedule]
cron = "0 */30 * * * *"   # seconds-first
`
