package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Read and write wish documents",
}

var docReadCmd = &cobra.Command{
	Use:   "read <wish-id> <document>",
	Short: "Print a wish document to stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("wish store not initialized")
		}

		content, err := Store.ReadDocument(args[0], args[1])
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(content)
		return err
	},
}

var docWriteCmd = &cobra.Command{
	Use:   "write <wish-id> <document>",
	Short: "Replace a wish document's content",
	Long: `Replace a document's content from a file (--file) or stdin. The write is
atomic: a crash mid-write never leaves a partial document behind.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("wish store not initialized")
		}

		file, _ := cmd.Flags().GetString("file")
		var content []byte
		var err error
		if file != "" {
			content, err = os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading input file: %w", err)
			}
		} else {
			content, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
		}

		if err := Store.WriteDocument(args[0], args[1], content); err != nil {
			return err
		}
		fmt.Printf("Wrote %s for %s (%d bytes)\n", args[1], args[0], len(content))
		return nil
	},
}

func init() {
	docWriteCmd.Flags().StringP("file", "f", "", "Read content from this file instead of stdin")

	docCmd.AddCommand(docReadCmd)
	docCmd.AddCommand(docWriteCmd)
	rootCmd.AddCommand(docCmd)
}
