// Command nbtape creates and inspects TAPE containers.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ninebit/ninebit/internal/tape"
)

var (
	createName   string
	createAuthor string
	createDesc   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nbtape",
		Short: "Create and inspect TAPE containers",
	}
	root.AddCommand(newCreateCmd(), newInfoCmd())
	return root
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create PAYLOAD_FILE OUT_FILE",
		Short: "Wrap a raw byte vector in a TAPE container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("nbtape: %s: %w", args[0], err)
			}
			buf, err := tape.Encode(payload, tape.Metadata{
				Name:        createName,
				Author:      createAuthor,
				Description: createDesc,
				Timestamp:   uint32(time.Now().Unix()),
			})
			if err != nil {
				return fmt.Errorf("nbtape: %w", err)
			}
			if err := os.WriteFile(args[1], buf, 0644); err != nil {
				return fmt.Errorf("nbtape: %s: %w", args[1], err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&createName, "name", "", "program name")
	cmd.Flags().StringVar(&createAuthor, "author", "", "author")
	cmd.Flags().StringVar(&createDesc, "description", "", "description")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info TAPE_FILE",
		Short: "Print a TAPE container's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("nbtape: %s: %w", args[0], err)
			}
			meta, payload, err := tape.Decode(data)
			if err != nil {
				return fmt.Errorf("nbtape: %s: %w", args[0], err)
			}
			fmt.Printf("name:        %s\n", meta.Name)
			fmt.Printf("author:      %s\n", meta.Author)
			fmt.Printf("description: %s\n", meta.Description)
			fmt.Printf("version:     %d.%d\n", meta.VersionMajor, meta.VersionMinor)
			fmt.Printf("timestamp:   %s\n", time.Unix(int64(meta.Timestamp), 0).UTC())
			fmt.Printf("payload:     %d bytes\n", len(payload))
			fmt.Printf("checksum ok: %v\n", meta.ChecksumValid)
			return nil
		},
	}
}
