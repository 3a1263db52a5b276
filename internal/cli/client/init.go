package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const envFile = ".env"

func InitCmd() *cobra.Command {
	var apiKey string
	var apiURL string
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Configure the docent client",
		Long:  "Writes API credentials to .env (or the global config with --global) and verifies the server is reachable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(apiKey, apiURL, global, outputJSON)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for authentication (empty if the server runs without auth)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (default: http://localhost:8080)")
	cmd.Flags().BoolVar(&global, "global", false, "Save credentials to the user config instead of .env")

	return cmd
}

func runInit(apiKey, apiURL string, global, outputJSON bool) error {
	_ = godotenv.Load()
	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		fmt.Printf("Enter API URL [%s]: ", defaultAPIURL)
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API URL: %w", err)
		}
		apiURL = strings.TrimSpace(input)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}

	api, err := NewAPIClientWithConfig(apiKey, apiURL)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	if _, err := api.Get("/health"); err != nil {
		return fmt.Errorf("server at %s is not reachable: %w", apiURL, err)
	}

	var location string
	if global {
		if err := SaveGlobalConfig(&GlobalConfig{APIKey: apiKey, APIURL: apiURL}); err != nil {
			return err
		}
		location, _ = GetConfigPath()
	} else {
		envData := fmt.Sprintf("%s=%s\n%s=%s\n", envAPIKey, apiKey, envAPIURL, apiURL)
		if err := os.WriteFile(envFile, []byte(envData), 0600); err != nil {
			return fmt.Errorf("failed to create .env: %w", err)
		}
		location = envFile
	}

	if outputJSON {
		result := map[string]interface{}{
			"success": true,
			"api_url": apiURL,
			"config":  location,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Connected to %s\n", apiURL)
		fmt.Printf("Credentials saved to %s\n", location)
	}

	return nil
}
