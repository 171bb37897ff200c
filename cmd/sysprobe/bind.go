package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/native"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/output"
)

var bindCmd = &cobra.Command{
	Use:   "bind [capability]",
	Short: "Bind a native library capability",
	Long: `Resolve a capability from the catalog by trying its candidate images in
order. On success the bound image, load options and symbols are shown; on
failure every attempt is listed and the command exits non-zero.

The default capability is perfstat.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBind,
}

func init() {
	rootCmd.AddCommand(bindCmd)
}

// errNotBound reports a capability that could not be bound after printing
// the attempts.
var errNotBound = errors.New("capability not bound")

func runBind(cmd *cobra.Command, args []string) error {
	name := "perfstat"
	if len(args) > 0 {
		name = args[0]
	}

	capability, ok := native.Lookup(name)
	if !ok {
		names := make([]string, 0)
		for _, c := range native.Capabilities() {
			names = append(names, c.Name)
		}
		return fmt.Errorf("unknown capability %q (available: %s)", name, strings.Join(names, ", "))
	}

	result, err := bindCapability(native.DefaultLoader(), capability)
	if err != nil {
		return err
	}
	if err := render(cmd, &output.Report{Binding: result}); err != nil {
		return err
	}
	if !result.Bound {
		return fmt.Errorf("%w: %s", errNotBound, capability.Name)
	}
	return nil
}

// bindCapability resolves capability and describes the outcome. A binding
// failure is reported in the result; other loader errors are returned.
func bindCapability(loader native.Loader, capability native.Capability) (*output.Binding, error) {
	result := &output.Binding{Capability: capability.Name}
	if len(capability.Candidates) > 0 {
		result.Flags = int(capability.Candidates[0].Flags)
		result.FlagNames = capability.Candidates[0].Flags.String()
	}

	binding, err := native.Resolve(loader, capability)
	if err != nil {
		var bindErr *native.BindingError
		if !errors.As(err, &bindErr) {
			return nil, err
		}
		for _, a := range bindErr.Attempts {
			result.Attempts = append(result.Attempts, output.Attempt{
				Image: a.Candidate.Image,
				Error: a.Err.Error(),
			})
		}
		return result, nil
	}

	result.Bound = true
	result.Image = binding.Image()
	result.Flags = int(binding.Flags())
	result.FlagNames = binding.Flags().String()
	result.Symbols = binding.Symbols()
	return result, nil
}
