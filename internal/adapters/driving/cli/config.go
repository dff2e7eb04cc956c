package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "View and change configuration",
	Long:        `Reads and writes ~/.swapsync/config.toml (or $SWAPSYNC_HOME/config.toml).`,
	Annotations: map[string]string{annotationNoRuntime: "true"},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show configured values",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and saves the config file.

When setting server.token without a value, the token is read from the
terminal without echo.

Keys:
  ` + strings.Join(domain.ClientConfigKeys(), "\n  "),
	Args:        cobra.RangeArgs(1, 2),
	Annotations: map[string]string{annotationNoRuntime: "true"},
	RunE:        runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var errNoConfigStore = errors.New("config store not configured")

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errNoConfigStore
	}

	cmd.Printf("Config file: %s\n\n", configStore.Path())
	for _, key := range domain.ClientConfigKeys() {
		val, ok := configStore.Get(key)
		switch {
		case !ok:
			cmd.Printf("  %-28s (default)\n", key)
		case key == domain.KeyServerToken:
			cmd.Printf("  %-28s %s\n", key, maskToken(fmt.Sprint(val)))
		default:
			cmd.Printf("  %-28s %v\n", key, val)
		}
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errNoConfigStore
	}

	key := args[0]
	var raw string
	switch {
	case len(args) == 2:
		raw = args[1]
	case key == domain.KeyServerToken:
		cmd.Print("Token: ")
		raw = readSecret()
		cmd.Println()
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	val, err := domain.ParseConfigValue(key, raw)
	if err != nil {
		return err
	}
	if err := configStore.Set(key, val); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if err := configStore.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if key == domain.KeyServerToken {
		cmd.Printf("%s updated.\n", key)
		return nil
	}
	cmd.Printf("%s = %v\n", key, val)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if token == "" {
		return "(empty)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
