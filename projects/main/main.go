package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-control-systems/miniboot-hub/components/boot/bootcfg"
	"github.com/open-control-systems/miniboot-hub/components/boot/bootimg"
	"github.com/open-control-systems/miniboot-hub/components/boot/bootprofile"
	"github.com/open-control-systems/miniboot-hub/components/core"
	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepbolt"
	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepcore"
	"github.com/open-control-systems/miniboot-hub/components/eeprom/eepfile"
	"github.com/open-control-systems/miniboot-hub/components/http/htcore"
	"github.com/open-control-systems/miniboot-hub/components/pipeline/piphub"
	"github.com/open-control-systems/miniboot-hub/components/storage/stcore"
)

type deviceOptions struct {
	path    string
	backend string
	profile string
	offset  uint32
}

func openDevice(closer *core.FanoutCloser, opts *deviceOptions) (eepcore.Device, error) {
	if opts.backend != "none" && opts.path == "" {
		return nil, fmt.Errorf("device path is required, see --path")
	}

	profile, err := bootprofile.ProfileByName(opts.profile)
	if err != nil {
		return nil, err
	}

	switch opts.backend {
	case "file":
		device, err := eepfile.OpenFileDevice(opts.path, eepfile.FileDeviceParams{
			Size:       profile.EepromSize,
			EraseValue: profile.EraseValue,
		})
		if err != nil {
			return nil, err
		}
		closer.Add("file-device", device)

		return device, nil

	case "mmap":
		device, err := eepfile.OpenMmapDevice(opts.path, eepfile.FileDeviceParams{
			Size:       profile.EepromSize,
			EraseValue: profile.EraseValue,
		})
		if err != nil {
			return nil, err
		}
		closer.Add("mmap-device", device)

		return device, nil

	case "bolt":
		db, err := stcore.NewBboltDB(opts.path, nil)
		if err != nil {
			return nil, err
		}
		closer.Add("bbolt-db", core.FuncCloser(db.Close))

		device := eepbolt.NewDevice(
			stcore.NewBboltDBBucket(db, "eeprom-regions"),
			eepbolt.DeviceParams{
				Size:       profile.EepromSize,
				EraseValue: profile.EraseValue,
				Region:     profile.Name,
			})
		closer.Add("bolt-device", device)

		return device, nil

	case "none":
		// Dry run: reads see an erased device, commits are discarded.
		device := eepbolt.NewDevice(&stcore.NoopDB{}, eepbolt.DeviceParams{
			Size:       profile.EepromSize,
			EraseValue: profile.EraseValue,
			Region:     profile.Name,
		})
		closer.Add("noop-device", device)

		return device, nil

	default:
		return nil, fmt.Errorf("unknown backend: %s, supported: file, mmap, bolt, none",
			opts.backend)
	}
}

func newTimestampCommand(opts *deviceOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timestamp",
		Short: "Read or update the latest application timestamp",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "read",
		Short: "Read the latest application timestamp from the configuration region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closer := &core.FanoutCloser{}
			defer func() {
				_ = closer.Close()
			}()

			device, err := openDevice(closer, opts)
			if err != nil {
				return err
			}

			store, err := bootcfg.NewTimestampStore(device, opts.offset)
			if err != nil {
				return err
			}

			timestamp, err := store.ReadLatestTimestamp(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("%v (0x%08X)\n", timestamp, timestamp)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "write <timestamp>",
		Short: "Persist the latest application timestamp in the configuration region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timestamp, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return fmt.Errorf("malformed timestamp: %w", err)
			}

			closer := &core.FanoutCloser{}
			defer func() {
				_ = closer.Close()
			}()

			device, err := openDevice(closer, opts)
			if err != nil {
				return err
			}

			store, err := bootcfg.NewTimestampStore(device, opts.offset)
			if err != nil {
				return err
			}

			if err := store.WriteLatestTimestamp(cmd.Context(), uint32(timestamp)); err != nil {
				return err
			}

			fmt.Println("OK")

			return nil
		},
	})

	return cmd
}

func newImageCommand(opts *deviceOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Build, inspect and burn miniboot EEPROM images",
	}

	var (
		payloadPath string
		appName     string
		outputPath  string
	)

	makeCmd := &cobra.Command{
		Use:   "make",
		Short: "Build an EEPROM image from an application binary",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			payload, err := os.ReadFile(payloadPath)
			if err != nil {
				return err
			}

			info, err := os.Stat(payloadPath)
			if err != nil {
				return err
			}

			header, err := bootimg.NewHeader(appName, payload,
				uint32(info.ModTime().Unix()), uint32(time.Now().Unix()))
			if err != nil {
				return err
			}

			image, err := bootimg.BuildImage(header, payload)
			if err != nil {
				return err
			}

			if err := os.WriteFile(outputPath, image, 0644); err != nil {
				return err
			}

			printHeader(header, len(image))
			fmt.Printf("%s -> %s\n", payloadPath, outputPath)

			return nil
		},
	}
	makeCmd.Flags().StringVar(&payloadPath, "payload", "", "application binary path")
	makeCmd.Flags().StringVar(&appName, "name", "APPNAME",
		"application name, at most 10 characters")
	makeCmd.Flags().StringVar(&outputPath, "output", "output.eeprom", "output image path")
	_ = makeCmd.MarkFlagRequired("payload")
	cmd.AddCommand(makeCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <image>",
		Short: "Print the header of an EEPROM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			header, err := bootimg.ParseHeader(image)
			if err != nil {
				return err
			}

			printHeader(header, len(image))

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "burn <image>",
		Short: "Stream an EEPROM image into the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			closer := &core.FanoutCloser{}
			defer func() {
				_ = closer.Close()
			}()

			device, err := openDevice(closer, opts)
			if err != nil {
				return err
			}

			return bootimg.WriteImage(cmd.Context(), device, opts.offset, image)
		},
	})

	return cmd
}

func printHeader(header bootimg.Header, imageSize int) {
	fmt.Printf("Application name:  %s\n", header.Name)
	fmt.Printf("Created timestamp: %v\n", header.Created)
	fmt.Printf("Written timestamp: %v\n", header.Written)
	fmt.Printf("CRC32:             0x%08X\n", header.Checksum)
	fmt.Printf("Payload size:      %v\n", header.Length)
	fmt.Printf("Image size:        %v\n", imageSize)
}

func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List supported target profiles",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, name := range bootprofile.ProfileNames() {
				profile, err := bootprofile.ProfileByName(name)
				if err != nil {
					return err
				}

				fmt.Printf("%-12s mcu=%s eeprom=%vB erase=0x%02X device=%s\n",
					profile.Name, profile.MCU, profile.EepromSize,
					profile.EraseValue, profile.DevicePath)
			}

			return nil
		},
	}
}

func newServeCommand(opts *deviceOptions) *cobra.Command {
	var (
		host            string
		port            int
		restoreInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the hub HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closer := &core.FanoutCloser{}
			defer func() {
				_ = closer.Close()
			}()

			device, err := openDevice(closer, opts)
			if err != nil {
				return err
			}

			pipeline, err := piphub.NewPipeline(cmd.Context(), closer, device,
				piphub.PipelineParams{
					BaseOffset:      opts.offset,
					RestoreInterval: restoreInterval,
					ServerParams: htcore.ServerParams{
						Host: host,
						Port: port,
					},
				})
			if err != nil {
				return err
			}

			if err := pipeline.Start(); err != nil {
				return err
			}

			<-cmd.Context().Done()

			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "HTTP API host")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP API port")
	cmd.Flags().DurationVar(&restoreInterval, "restore-interval", time.Second*5,
		"how often to retry the timestamp restoring until it succeeds")

	return cmd
}

func newRootCommand() *cobra.Command {
	opts := &deviceOptions{}

	cmd := &cobra.Command{
		Use:          "miniboot-hub",
		Short:        "Manage miniboot EEPROM configuration regions and images",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.path, "path", "",
		"EEPROM image or database file path")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "file",
		"storage backend: file, mmap, bolt, none")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "atmega328p",
		"target profile: "+strings.Join(bootprofile.ProfileNames(), ", "))
	cmd.PersistentFlags().Uint32Var(&opts.offset, "offset", 0,
		"configuration region offset within the EEPROM")

	cmd.AddCommand(newTimestampCommand(opts))
	cmd.AddCommand(newImageCommand(opts))
	cmd.AddCommand(newProfilesCommand())
	cmd.AddCommand(newServeCommand(opts))

	return cmd
}

func main() {
	if path := os.Getenv("MINIBOOT_HUB_LOG_PATH"); path != "" {
		if err := core.SetLogFile(path); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to setup log file: ", err)
		}
	}

	appContext, cancelFunc := signal.NotifyContext(context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer cancelFunc()

	if err := newRootCommand().ExecuteContext(appContext); err != nil {
		os.Exit(1)
	}
}
