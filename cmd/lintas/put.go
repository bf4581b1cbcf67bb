package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/lintas"
)

var (
	putID          string
	putTitle       string
	putDescription string
	putCategory    string
	putYear        int
	putPayload     string
)

// putCmd represents the put command
var putCmd = &cobra.Command{
	Use:   "put",
	Short: "Save a dataset",
	Long: `Insert or replace a dataset. An existing record with the same ID is
replaced entirely. The payload is read from a JSON object file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := lintas.Dataset{
			ID:          putID,
			Title:       putTitle,
			Description: putDescription,
			Category:    putCategory,
			Year:        putYear,
			UploadDate:  time.Now().UTC(),
		}
		if d.ID == "" {
			d.ID = lintas.NewID("")
		}
		if d.Category == "" {
			d.Category = cfg.UI.DefaultCategory
		}
		if putPayload != "" {
			payload, err := readPayload(putPayload)
			if err != nil {
				return err
			}
			d.Payload = payload
		}

		svc, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		id, err := svc.Put(cmd.Context(), d)
		if err != nil {
			return fmt.Errorf("failed to save dataset: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func readPayload(path string) (lintas.Payload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	var payload lintas.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return payload, nil
}

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().StringVar(&putID, "id", "", "Dataset ID (generated when empty)")
	putCmd.Flags().StringVar(&putTitle, "title", "", "Dataset title")
	putCmd.Flags().StringVar(&putDescription, "description", "", "Dataset description")
	putCmd.Flags().StringVar(&putCategory, "category", "", "Dataset category (default from ui.default_category)")
	putCmd.Flags().IntVar(&putYear, "year", time.Now().Year(), "Dataset year")
	putCmd.Flags().StringVar(&putPayload, "payload", "", "Path to a JSON object used as payload")
}
