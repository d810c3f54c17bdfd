// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/majektom/satel-integra-integration-protocol/internal/logging"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

// controlOptions holds the element selection shared by control subcommands
type controlOptions struct {
	Partitions []int
	Zones      []int
	Outputs    []int
	Doors      []int
	Mode       int
	Extended   bool
	Prefix     string
	Timeout    time.Duration
}

var controlOpts controlOptions

// controlAction describes one control subcommand
type controlAction struct {
	Name   string
	Short  string
	Needs  string // which selection flag must be given
	Encode func(code string, o controlOptions) ([]byte, error)
}

var controlActions = []controlAction{
	{
		Name:  "arm",
		Short: "Arm partitions in --mode (0-3)",
		Needs: "partitions",
		Encode: func(code string, o controlOptions) ([]byte, error) {
			flags, err := integra.FlagsFromNumbers(o.Partitions, integra.PartitionCount)
			if err != nil {
				return nil, err
			}
			return integra.EncodeArmCommand(o.Mode, code, flags)
		},
	},
	{
		Name:  "force-arm",
		Short: "Force arm partitions in --mode (0-3)",
		Needs: "partitions",
		Encode: func(code string, o controlOptions) ([]byte, error) {
			flags, err := integra.FlagsFromNumbers(o.Partitions, integra.PartitionCount)
			if err != nil {
				return nil, err
			}
			return integra.EncodeForceArmCommand(o.Mode, code, flags)
		},
	},
	{
		Name:   "disarm",
		Short:  "Disarm partitions",
		Needs:  "partitions",
		Encode: partitionsEncoder(integra.EncodeDisarmCommand),
	},
	{
		Name:   "clear-alarm",
		Short:  "Clear alarm in partitions",
		Needs:  "partitions",
		Encode: partitionsEncoder(integra.EncodeClearAlarmCommand),
	},
	{
		Name:   "bypass",
		Short:  "Bypass zones",
		Needs:  "zones",
		Encode: zonesEncoder(integra.EncodeZonesBypassCommand),
	},
	{
		Name:   "unbypass",
		Short:  "Unbypass zones",
		Needs:  "zones",
		Encode: zonesEncoder(integra.EncodeZonesUnbypassCommand),
	},
	{
		Name:   "isolate",
		Short:  "Isolate zones",
		Needs:  "zones",
		Encode: zonesEncoder(integra.EncodeZonesIsolateCommand),
	},
	{
		Name:   "outputs-on",
		Short:  "Switch outputs on",
		Needs:  "outputs",
		Encode: outputsEncoder(integra.EncodeOutputsOnCommand),
	},
	{
		Name:   "outputs-off",
		Short:  "Switch outputs off",
		Needs:  "outputs",
		Encode: outputsEncoder(integra.EncodeOutputsOffCommand),
	},
	{
		Name:   "outputs-switch",
		Short:  "Toggle outputs",
		Needs:  "outputs",
		Encode: outputsEncoder(integra.EncodeOutputsSwitchCommand),
	},
	{
		Name:  "open-door",
		Short: "Open doors",
		Needs: "doors",
		Encode: func(code string, o controlOptions) ([]byte, error) {
			flags, err := integra.FlagsFromNumbers(o.Doors, integra.DoorCount)
			if err != nil {
				return nil, err
			}
			return integra.EncodeOpenDoorCommand(code, flags)
		},
	},
}

type flagsEncoder func(prefixAndUserCode string, flags []bool) ([]byte, error)

func partitionsEncoder(enc flagsEncoder) func(string, controlOptions) ([]byte, error) {
	return func(code string, o controlOptions) ([]byte, error) {
		flags, err := integra.FlagsFromNumbers(o.Partitions, integra.PartitionCount)
		if err != nil {
			return nil, err
		}
		return enc(code, flags)
	}
}

func zonesEncoder(enc flagsEncoder) func(string, controlOptions) ([]byte, error) {
	return func(code string, o controlOptions) ([]byte, error) {
		count := integra.ZoneCount
		if o.Extended {
			count = integra.ZoneCountExtended
		}
		flags, err := integra.FlagsFromNumbers(o.Zones, count)
		if err != nil {
			return nil, err
		}
		return enc(code, flags)
	}
}

func outputsEncoder(enc flagsEncoder) func(string, controlOptions) ([]byte, error) {
	return func(code string, o controlOptions) ([]byte, error) {
		count := integra.OutputCount
		if o.Extended {
			count = integra.OutputCountExtended
		}
		flags, err := integra.FlagsFromNumbers(o.Outputs, count)
		if err != nil {
			return nil, err
		}
		return enc(code, flags)
	}
}

// selection returns the numbers chosen for the named flag
func (o controlOptions) selection(name string) []int {
	switch name {
	case "partitions":
		return o.Partitions
	case "zones":
		return o.Zones
	case "outputs":
		return o.Outputs
	case "doors":
		return o.Doors
	}
	return nil
}

// buildControlFrame validates the selection and encodes the action
func buildControlFrame(a controlAction, code string, o controlOptions) ([]byte, error) {
	if len(o.selection(a.Needs)) == 0 {
		return nil, fmt.Errorf("%s requires --%s", a.Name, a.Needs)
	}
	return a.Encode(code, o)
}

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Send control commands to the panel",
	Long: `Arm, disarm and clear alarms in partitions, bypass or isolate zones,
switch outputs and open doors.

Elements are selected with 1-based numbers as shown on the panel, e.g.
--partitions 1,2 or --outputs 5. Use --extended for zones and outputs
above 128 on INTEGRA 256 Plus panels.

The user code is read from INTEGRA_USER_CODE or prompted. The command
exits non-zero unless the panel accepts it.`,
	Example: `  integrastat control arm --partitions 1,2 --mode 0 --host 192.168.1.20:7094
  integrastat control outputs-on --outputs 17`,
}

func init() {
	rootCmd.AddCommand(controlCmd)

	flags := controlCmd.PersistentFlags()
	flags.IntSliceVar(&controlOpts.Partitions, "partitions", nil, "Partition numbers (1-32)")
	flags.IntSliceVar(&controlOpts.Zones, "zones", nil, "Zone numbers (1-128, 1-256 with --extended)")
	flags.IntSliceVar(&controlOpts.Outputs, "outputs", nil, "Output numbers (1-128, 1-256 with --extended)")
	flags.IntSliceVar(&controlOpts.Doors, "doors", nil, "Door numbers (1-64)")
	flags.IntVar(&controlOpts.Mode, "mode", 0, "Arm mode (0-3)")
	flags.BoolVar(&controlOpts.Extended, "extended", false, "Use 256 element zone/output flags")
	flags.StringVar(&controlOpts.Prefix, "prefix", "", "Code prefix (default from config)")
	flags.DurationVar(&controlOpts.Timeout, "timeout", 0, "Answer timeout (default from config)")

	for _, a := range controlActions {
		controlCmd.AddCommand(&cobra.Command{
			Use:   a.Name,
			Short: a.Short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runControlAction(cmd, a)
			},
		})
	}
}

func runControlAction(cmd *cobra.Command, a controlAction) (err error) {
	// Validate the selection before asking for a code
	if len(controlOpts.selection(a.Needs)) == 0 {
		return fmt.Errorf("%s requires --%s", a.Name, a.Needs)
	}

	code, err := GetPrefixAndUserCode(controlOpts.Prefix)
	if err != nil {
		return err
	}

	frame, err := buildControlFrame(a, code, controlOpts)
	if err != nil {
		return err
	}

	timeout := controlOpts.Timeout
	if timeout == 0 {
		timeout = cfg.Link.Timeout
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	answer, err := s.link.Request(ctx, frame, integra.CmdCommandResult)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Name, err)
	}

	result, ok := answer.(*integra.ResultAnswer)
	if !ok {
		return fmt.Errorf("%s: unexpected answer %s", a.Name, answer.Command())
	}

	logger.Info("command result",
		logging.CommandField(integra.Command(frame[2])),
		zap.Uint8("code", uint8(result.Code())),
		zap.Bool("accepted", result.Accepted()),
	)

	fmt.Printf("%s (0x%02X)\n", result.Message(), uint8(result.Code()))
	if !result.Accepted() {
		return fmt.Errorf("%s rejected by panel: %s", a.Name, result.Message())
	}
	return nil
}
