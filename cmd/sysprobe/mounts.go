package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/mounts"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/nativetext"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/output"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/watch"
)

var (
	mountsMap   bool
	mountsWatch bool
)

var mountsCmd = &cobra.Command{
	Use:   "mounts",
	Short: "Show the mounted filesystem table",
	Long: `Query the kernel mount table. Every invocation is a fresh native query.

Device names have the /dev/ prefix removed. Mount point exclusions use glob
syntax where * stays within one path segment and ** crosses segments.

Examples:
  sysprobe mounts                              # All mounts with sizes
  sysprobe mounts --map -o json                # Device to mount point map
  sysprobe mounts -e '/System/Volumes/**'      # Hide system volumes
  sysprobe mounts -t apfs -t 'ext*'            # Only matching types
  sysprobe mounts --watch --map                # Report volumes as they come and go`,
	Args: cobra.NoArgs,
	RunE: runMounts,
}

func init() {
	mountsCmd.Flags().BoolVarP(&mountsMap, "map", "m", false, "print the device to mount point map")
	mountsCmd.Flags().BoolVarP(&mountsWatch, "watch", "w", false, "keep running and report mount changes")
	mountsCmd.Flags().StringSliceP("exclude", "e", nil, "mount point globs to hide (repeatable)")
	mountsCmd.Flags().StringSliceP("fstype", "t", nil, "filesystem type globs to show (repeatable)")
	mountsCmd.Flags().String("charset", "", "charset of native text fields (IANA name)")
	mountsCmd.Flags().Duration("interval", 0, "with --watch, re-query this often even without volume events (0 disables)")

	_ = viper.BindPFlag("mounts.exclude", mountsCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("mounts.fstypes", mountsCmd.Flags().Lookup("fstype"))
	_ = viper.BindPFlag("text.charset", mountsCmd.Flags().Lookup("charset"))
	_ = viper.BindPFlag("watch.interval", mountsCmd.Flags().Lookup("interval"))

	rootCmd.AddCommand(mountsCmd)
}

func runMounts(cmd *cobra.Command, args []string) error {
	q, err := mountQuerier()
	if err != nil {
		return err
	}

	if mountsWatch {
		return watchMounts(cmd, q)
	}

	report, err := mountReport(q, mountsMap)
	if err != nil {
		return err
	}
	return render(cmd, report)
}

// mountQuerier builds the filtered native querier from the configuration.
func mountQuerier() (mounts.Querier, error) {
	dec, err := nativetext.NewDecoder(cfg.Text.Charset)
	if err != nil {
		return nil, err
	}
	filter, err := mounts.NewFilter(cfg.Mounts.Exclude, cfg.Mounts.FSTypes)
	if err != nil {
		return nil, err
	}
	q, err := mounts.NativeWith(dec)
	if err != nil {
		return nil, err
	}
	return mounts.Filtered(q, filter), nil
}

func mountReport(q mounts.Querier, asMap bool) (*output.Report, error) {
	if asMap {
		m, err := q.QueryAll()
		if err != nil {
			return nil, err
		}
		return &output.Report{MountMap: m}, nil
	}

	records, err := q.Records()
	if err != nil {
		return nil, err
	}
	return &output.Report{Mounts: records}, nil
}

func watchMounts(cmd *cobra.Command, q mounts.Querier) error {
	w, err := watch.New(q, watch.Options{
		Paths:    cfg.Watch.Paths,
		Debounce: cfg.Watch.Debounce,
		Interval: cfg.Watch.Interval,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	report, err := mountReport(q, mountsMap)
	if err != nil {
		return err
	}
	if err := render(cmd, report); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printInfo(cmd, "Watching %v (Ctrl-C to stop)", w.Paths())

	var renderErr error
	err = w.Run(ctx, func(c watch.Change) {
		if renderErr != nil {
			return
		}
		renderErr = render(cmd, &output.Report{Added: c.Added, Removed: c.Removed})
	})
	if renderErr != nil {
		return fmt.Errorf("writing change: %w", renderErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
