package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/existflow/bizflow/internal/credential"
	"github.com/existflow/bizflow/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage credentials",
	Long:  `Manage the API server login and the AI service key.`,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password for the API server login",
	Long: `Prompt for a password and print its bcrypt hash. With --save the hash
is written to the auth section of the config file.

Examples:
  bizflow auth hash-password
  bizflow auth hash-password --save --username alice`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

var setAIKeyCmd = &cobra.Command{
	Use:   "set-ai-key",
	Short: "Store the AI service API key in the system keyring",
	Args:  cobra.NoArgs,
	RunE:  runSetAIKey,
}

var clearAIKeyCmd = &cobra.Command{
	Use:   "clear-ai-key",
	Short: "Remove the stored AI service API key",
	Args:  cobra.NoArgs,
	RunE:  runClearAIKey,
}

var (
	hashSave     bool
	hashUsername string
)

func init() {
	hashPasswordCmd.Flags().BoolVar(&hashSave, "save", false, "Save the hash to the config file")
	hashPasswordCmd.Flags().StringVar(&hashUsername, "username", "", "Login name to save with the hash")

	authCmd.AddCommand(hashPasswordCmd)
	authCmd.AddCommand(setAIKeyCmd)
	authCmd.AddCommand(clearAIKeyCmd)
}

// readSecret prompts without echo on a terminal and reads one line otherwise.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	out := cmd.ErrOrStderr()
	fmt.Fprint(out, prompt)

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	password, err := readSecret(cmd, "Password: ")
	if err != nil {
		return err
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	out := cmd.OutOrStdout()
	if !hashSave {
		fmt.Fprintln(out, string(hash))
		return nil
	}

	if hashUsername != "" {
		cfg.Auth.Username = hashUsername
	}
	cfg.Auth.PasswordHash = string(hash)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	logger.Info("API login updated", logger.F("username", cfg.Auth.Username))
	fmt.Fprintf(out, "✅ Saved login for %s\n", cfg.Auth.Username)
	return nil
}

func runSetAIKey(cmd *cobra.Command, args []string) error {
	key, err := readSecret(cmd, "API key: ")
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}

	if err := credential.Set(credential.AIKey, key); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ API key stored")
	return nil
}

func runClearAIKey(cmd *cobra.Command, args []string) error {
	if err := credential.Delete(credential.AIKey); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ API key removed")
	return nil
}
