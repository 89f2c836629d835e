package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/raveliquar/internal/config"
)

var hashAdminKeyCmd = &cobra.Command{
	Use:   "hash-admin-key [key]",
	Short: "Print the bcrypt hash of an admin key for ADMIN_KEY_HASH",
	Long:  `Hash the given admin key, or the first line of stdin when no argument is given, using BCRYPT_COST.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHashAdminKey,
}

func init() {
	rootCmd.AddCommand(hashAdminKeyCmd)
}

func runHashAdminKey(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read admin key from stdin: %w", err)
		}
		key = line
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("admin key must not be empty")
	}

	keys, err := config.NewAdminKeyConfig()
	if err != nil {
		return err
	}
	hash, err := keys.HashKey(key)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
