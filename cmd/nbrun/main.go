// Command nbrun loads a program into the CPU and executes it, optionally
// under the interactive monitor.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ninebit/ninebit/internal/bus"
	"github.com/ninebit/ninebit/internal/cpu"
	"github.com/ninebit/ninebit/internal/monitor"
	"github.com/ninebit/ninebit/internal/output"
	"github.com/ninebit/ninebit/internal/ram"
	"github.com/ninebit/ninebit/internal/tape"
)

var (
	useMonitor bool
	fromTape   bool
	latchPort  uint8
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nbrun PATH",
		Short: "Load and execute a program on the nine-bit machine",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad,
	}
	root.Flags().BoolVar(&useMonitor, "monitor", false, "drive execution from the interactive single-step monitor")
	root.Flags().BoolVar(&fromTape, "tape", false, "PATH is a TAPE container rather than split-bin files")
	root.Flags().Uint8Var(&latchPort, "latch-port", 0, "port number to attach a latch device to (0 disables)")
	return root
}

func runLoad(cmd *cobra.Command, args []string) error {
	code, err := loadProgram(args[0])
	if err != nil {
		return err
	}

	r := ram.New(ram.DefaultSize)
	if err := r.Load(cpu.LoadAddress, code); err != nil {
		return fmt.Errorf("nbrun: %w", err)
	}

	devBus, err := newDeviceBus()
	if err != nil {
		return fmt.Errorf("nbrun: %w", err)
	}

	machine := cpu.New(r, devBus)
	machine.Reset(cpu.LoadAddress)

	if useMonitor {
		return monitor.New(machine).Run()
	}
	if err := machine.Run(); err != nil {
		return fmt.Errorf("nbrun: %w", err)
	}
	return nil
}

func loadProgram(path string) ([]byte, error) {
	if !fromTape {
		return output.ReadSplit(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nbrun: %s: %w", path, err)
	}
	_, payload, err := tape.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("nbrun: %s: %w", path, err)
	}
	return payload, nil
}

func newDeviceBus() (cpu.DeviceBus, error) {
	if latchPort == 0 {
		return cpu.NullBus{}, nil
	}
	return bus.NewRegistry(bus.Config{Ports: map[byte]bus.DeviceKind{latchPort: bus.KindLatch}})
}
