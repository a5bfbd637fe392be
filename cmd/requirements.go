package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spigell/cv-matcher/internal/requirements"
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements [job description]",
	Short: "Print the structured requirements recognised in a job description",
	Long: `Parses a free-text job description (argument, --file or stdin when "-" is given)
and prints the weighted requirements as YAML, ready to be used as a requirements file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := requirementsText(cmd, args)
		if err != nil {
			return err
		}

		reqs := requirements.Parse(text)
		if len(reqs) == 0 {
			return errors.New("no known skills found in the description")
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()

		return enc.Encode(requirements.Document{Text: text, Requirements: reqs})
	},
}

func init() {
	rootCmd.AddCommand(requirementsCmd)

	requirementsCmd.Flags().StringP("file", "f", "", "read the job description from a file")
}

func requirementsText(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")

	var data []byte
	var err error
	switch {
	case file != "":
		data, err = os.ReadFile(file)
	case len(args) == 1 && args[0] == "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	case len(args) == 1:
		data = []byte(args[0])
	default:
		return "", errors.New("a job description argument or --file is required")
	}
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("job description is empty")
	}
	return text, nil
}
