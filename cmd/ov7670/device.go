package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moffa90/go-ov7670/console"
	"github.com/moffa90/go-ov7670/regfile"
	"github.com/moffa90/go-ov7670/serialport"
)

func init() {
	register(command{name: "shell", description: "Interactive register console", run: runShell})
	register(command{name: "apply", description: "Write a register list file to the sensor", run: runApply})
	register(command{name: "id", description: "Read the sensor identification registers", run: runID})
	register(command{name: "ports", description: "List serial ports", run: runPorts})
	register(command{name: "config", description: "Print the effective configuration (file plus flags) as YAML", run: runConfig})
}

func runShell(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	common := addCommonFlags(fs)
	history := fs.String("history", defaultHistoryFile(), "History file (empty to disable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := resolve(fs, common)
	if err != nil {
		return err
	}

	cam, err := e.openCamera(ctx)
	if err != nil {
		return err
	}
	defer cam.Close()

	sh := console.New(cam,
		console.WithCaptureDir(e.cfg.Output.Dir),
		console.WithHistoryFile(*history),
	)
	return sh.Run(ctx)
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ov7670_history")
}

func runApply(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	common := addCommonFlags(fs)
	dryRun := fs.Bool("dry-run", false, "Parse and print the list without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ov7670 apply [flags] <register-file>")
	}

	regs, err := regfile.Parse(fs.Arg(0))
	if err != nil {
		return err
	}

	if *dryRun {
		for _, rv := range regs {
			fmt.Println(rv)
		}
		fmt.Printf("%d registers\n", len(regs))
		return nil
	}

	e, err := resolve(fs, common)
	if err != nil {
		return err
	}

	cam, err := e.openCamera(ctx)
	if err != nil {
		return err
	}
	defer cam.Close()

	if err := cam.WriteRegisters(ctx, regs); err != nil {
		return err
	}
	fmt.Printf("Wrote %d registers from %s\n", len(regs), fs.Arg(0))
	return nil
}

func runID(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("id", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := resolve(fs, common)
	if err != nil {
		return err
	}

	cam, err := e.openCamera(ctx)
	if err != nil {
		return err
	}
	defer cam.Close()

	id, err := cam.ReadSensorID(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Product ID:      0x%04X\n", id.ProductID)
	fmt.Printf("Manufacturer ID: 0x%04X\n", id.ManufacturerID)
	if !id.IsOV7670() {
		return fmt.Errorf("not an OV7670 (%s)", id)
	}
	fmt.Println("Sensor:          OV7670")
	return nil
}

func runPorts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ports", flag.ContinueOnError)
	usbOnly := fs.Bool("usb", false, "Only list USB serial adapters")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ports, err := serialport.List()
	if err != nil {
		return err
	}

	n := 0
	for _, p := range ports {
		if *usbOnly && !p.IsUSB {
			continue
		}
		fmt.Println(p)
		n++
	}
	if n == 0 {
		fmt.Println("No serial ports found")
	}
	return nil
}

func runConfig(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := resolve(fs, common)
	if err != nil {
		return err
	}

	data, err := e.cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
