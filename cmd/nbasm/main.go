// Command nbasm assembles source files into split-bin or TAPE output, and
// disassembles byte vectors back to mnemonic text.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ninebit/ninebit/internal/asm"
	"github.com/ninebit/ninebit/internal/output"
	"github.com/ninebit/ninebit/internal/tape"
)

var (
	outDir      string
	asTape      bool
	tapeName    string
	tapeAuthor  string
	tapeComment string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nbasm",
		Short: "Assembler for the nine-bit machine",
	}
	root.AddCommand(newBuildCmd(), newDisCmd())
	return root
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build SOURCE...",
		Short: "Assemble one or more source files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBuild,
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory for split-bin or TAPE files")
	cmd.Flags().BoolVar(&asTape, "tape", false, "write a TAPE container instead of split-bin files")
	cmd.Flags().StringVar(&tapeName, "name", "", "TAPE metadata: program name")
	cmd.Flags().StringVar(&tapeAuthor, "author", "", "TAPE metadata: author")
	cmd.Flags().StringVar(&tapeComment, "description", "", "TAPE metadata: description")
	return cmd
}

// runBuild assembles every source file concurrently, then writes each
// result in the order given on the command line. Assembly itself has no
// shared state between files, so errgroup fans the batch out across
// goroutines; writing to disk happens back on the calling goroutine,
// sequentially, once every file has compiled.
func runBuild(cmd *cobra.Command, args []string) error {
	results := make([][]byte, len(args))
	g, _ := errgroup.WithContext(cmd.Context())
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("nbasm: %s: %w", path, err)
			}
			code, err := asm.Assemble(string(src))
			if err != nil {
				return fmt.Errorf("nbasm: %s: %w", path, err)
			}
			results[i] = code
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range args {
		if err := writeResult(path, results[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeResult(sourcePath string, code []byte) error {
	if !asTape {
		if err := output.WriteSplit(outDir, code); err != nil {
			return fmt.Errorf("nbasm: %s: %w", sourcePath, err)
		}
		return nil
	}

	buf, err := tape.Encode(code, tape.Metadata{
		Name:        tapeName,
		Author:      tapeAuthor,
		Description: tapeComment,
	})
	if err != nil {
		return fmt.Errorf("nbasm: %s: %w", sourcePath, err)
	}
	dst := outDir + "/" + baseName(sourcePath) + ".tape"
	if err := os.WriteFile(dst, buf, 0644); err != nil {
		return fmt.Errorf("nbasm: %s: %w", sourcePath, err)
	}
	return nil
}

func newDisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dis BYTES_FILE",
		Short: "Disassemble a raw byte vector to mnemonic text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("nbasm: %s: %w", args[0], err)
			}
			text, err := asm.Disassemble(code)
			if err != nil {
				return fmt.Errorf("nbasm: %s: %w", args[0], err)
			}
			fmt.Print(text)
			return nil
		},
	}
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			path = path[i+1:]
			break
		}
	}
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
