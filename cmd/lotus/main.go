// Package main provides the Lotus ML Framework CLI.
package main

import (
	"fmt"
	"os"

	"github.com/lotus-ml/lotus/device"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Lotus ML Framework %s\n", version)
			return
		case "devices":
			if err := listDevices(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Lotus ML Framework - Device Memory Layer")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version              Show version")
	fmt.Println("  devices [config]     List devices and memory info")
}

func listDevices(args []string) error {
	cfg := device.DefaultConfig()
	if len(args) > 0 {
		loaded, err := device.LoadConfig(args[0])
		if err != nil {
			return err
		}
		cfg = loaded
	}

	driver, err := newDriver()
	if err != nil {
		return err
	}

	reg, err := device.NewRegistry(driver, cfg)
	if err != nil {
		return err
	}
	defer reg.Close()

	for id := 0; id < reg.DeviceCount(); id++ {
		props, err := reg.Properties(id)
		if err != nil {
			return err
		}
		r, err := reg.Get(id)
		if err != nil {
			return err
		}
		avail, total, _, _, clamped := r.MemInfo()

		fmt.Printf("device %d: %s (compute %s)\n", id, props.Name, props.Compute())
		fmt.Printf("  memory: %d MiB free / %d MiB total", avail>>20, total>>20)
		if clamped {
			fmt.Printf(" (limited to %d MiB)", r.LimitSize()>>20)
		}
		fmt.Println()
	}
	return nil
}
