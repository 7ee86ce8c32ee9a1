package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/tools/devdata/dataset"
)

var (
	emlSrc      string
	emlOut      string
	emlMetadata string
)

var importEMLCmd = &cobra.Command{
	Use:   "import-eml",
	Short: "Convert a directory of .eml files into a messages file",
	Long: `Parse every .eml file under --src and write the messages as a JSON array.
Bodies in legacy charsets are converted to UTF-8. When a metadata file is
available, the first team and topic named in each subject are recorded on
the message.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := dataPaths("")
		out := emlOut
		if out == "" {
			out = p.Messages
		}
		mdPath := emlMetadata
		if mdPath == "" {
			mdPath = p.Metadata
		}
		md, err := readMetadata(mdPath, cmd.Flags().Changed("metadata"))
		if err != nil {
			return err
		}

		result, err := dataset.ImportEML(cmd.Context(), emlSrc, out, md, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d messages to %s (%d skipped, %d re-decoded)\n",
			result.Imported, out, result.Skipped, result.Decoded)
		return nil
	},
}

// readMetadata loads a metadata file. A missing file is only an error when
// it was named explicitly.
func readMetadata(path string, required bool) (nlp.Metadata, error) {
	var md nlp.Metadata
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return md, nil
		}
		return md, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &md); err != nil {
		return md, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	return md, nil
}

func init() {
	importEMLCmd.Flags().StringVar(&emlSrc, "src", "", "directory of .eml files")
	importEMLCmd.Flags().StringVar(&emlOut, "out", "", "messages file to write (default: configured messages file)")
	importEMLCmd.Flags().StringVar(&emlMetadata, "metadata", "", "metadata file for team and topic tagging (default: configured metadata file)")
	importEMLCmd.MarkFlagRequired("src")
	rootCmd.AddCommand(importEMLCmd)
}
