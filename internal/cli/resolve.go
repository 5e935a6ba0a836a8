package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <@reference>",
	Short: "Resolve an @path context reference",
	Long: `Resolve an @path context reference against the store root and print the
target file's raw content.

With --chain, references found inside the resolved content are resolved
recursively (cycles are detected and visited at most once); each resolved
file is printed under a "-- @path --" separator.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Resolver == nil {
			return fmt.Errorf("reference resolver not initialized")
		}

		chain, _ := cmd.Flags().GetBool("chain")
		if !chain {
			content, err := Resolver.Resolve(args[0])
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(content)
			return err
		}

		resolved, err := Resolver.ResolveAll(args[0])
		if err != nil {
			return err
		}

		refs := make([]string, 0, len(resolved))
		for ref := range resolved {
			refs = append(refs, ref)
		}
		sort.Strings(refs)
		for _, ref := range refs {
			fmt.Printf("-- %s --\n", ref)
			os.Stdout.Write(resolved[ref])
			fmt.Println()
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().Bool("chain", false, "Recursively resolve references found in resolved content")
	rootCmd.AddCommand(resolveCmd)
}
