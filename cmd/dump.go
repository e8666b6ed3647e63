package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/dbywalec/pymake/lexer"
	"github.com/dbywalec/pymake/parser"
	"github.com/dbywalec/pymake/runner"
)

func init() {
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump tokens, syntax tree and statements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := args[0]
		if strings.HasSuffix(p, "/...") {
			p = strings.TrimSuffix(p, "/...")
			c := 0
			err := filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}

				if info.IsDir() {
					return nil
				}

				if info.Name() == "Makefile" || strings.HasSuffix(info.Name(), ".mk") {
					fmt.Println(path)
					c++
					return dump(path, false)
				}

				return nil
			})
			fmt.Printf("Found %v files\n", c)
			return err
		}
		return dump(p, true)
	},
}

func dump(path string, print bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tokens, err := lexer.Tokenize(path, f)
	if err != nil {
		return err
	}

	if print {
		PrintTokens(tokens)
		fmt.Println()
	}

	node, err := parser.ParseTokens(tokens)
	if print && node != nil {
		repr.Println(node)
		fmt.Println()
	}
	if err != nil {
		return err
	}

	stmts, err := runner.Compile(node)
	if err != nil {
		return err
	}
	if print {
		stmts.Dump(os.Stdout, "")
	}
	return nil
}

func PrintTokens(tokens []lexer.Token) {
	for _, t := range tokens {
		fmt.Println(t.StringAlign())
	}
}
