package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/output"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/platform"
)

var platformAll bool

var platformCmd = &cobra.Command{
	Use:   "platform [ordinal|name]",
	Short: "Describe a platform ordinal",
	Long: `Describe the running platform, or the platform with the given ordinal
or name. Ordinals outside the known range describe the Unknown platform.

Examples:
  sysprobe platform           # Running platform
  sysprobe platform 7         # AIX
  sysprobe platform freebsd   # FreeBSD (4)
  sysprobe platform --all     # Full table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlatform,
}

func init() {
	platformCmd.Flags().BoolVarP(&platformAll, "all", "a", false, "list every known platform")
	rootCmd.AddCommand(platformCmd)
}

func runPlatform(cmd *cobra.Command, args []string) error {
	descriptors, err := platformDescriptors(args, platformAll)
	if err != nil {
		return err
	}
	return render(cmd, &output.Report{Platforms: descriptors})
}

// platformDescriptors resolves the command's arguments to descriptors.
func platformDescriptors(args []string, all bool) ([]platform.Descriptor, error) {
	if all {
		return platform.All(), nil
	}
	if len(args) == 0 {
		return []platform.Descriptor{platform.Current().Descriptor()}, nil
	}

	if ordinal, err := strconv.Atoi(args[0]); err == nil {
		return []platform.Descriptor{platform.Describe(ordinal)}, nil
	}

	p, err := platform.Parse(args[0])
	if err != nil {
		return nil, err
	}
	return []platform.Descriptor{p.Descriptor()}, nil
}
