// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

var (
	queryExtended bool
	queryTimeout  time.Duration
	queryFormat   string
	queryList     bool
)

var queryCmd = &cobra.Command{
	Use:   "query <command>",
	Short: "Send a read command and print the answer",
	Long: `Send one read command to the panel and print the decoded answer.

The command is a catalog name such as zones-violation, OUTPUTS_STATE or
new_data. Use --list to show every read command.

Zone and output reads accept --extended to request the 256 element answer
from INTEGRA 256 Plus panels.`,
	Example: `  integrastat query zones-violation --host 192.168.1.20:7094
  integrastat query outputs-state --extended --format yaml`,
	Args: func(cmd *cobra.Command, args []string) error {
		if queryList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVar(&queryExtended, "extended", false, "Request the extended (256 element) answer")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 0, "Answer timeout (default from config)")
	queryCmd.Flags().StringVar(&queryFormat, "format", "text", "Output format: text or yaml")
	queryCmd.Flags().BoolVar(&queryList, "list", false, "List read commands and exit")
}

func runQuery(cmd *cobra.Command, args []string) (err error) {
	if queryList {
		fmt.Print(listReadCommands())
		return nil
	}

	c, ok := integra.ParseCommand(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q (see --list)", args[0])
	}

	var frame []byte
	if queryExtended {
		frame, err = integra.EncodeExtendedReadCommand(c)
	} else {
		frame, err = integra.EncodeReadCommand(c)
	}
	if err != nil {
		return err
	}

	timeout := queryTimeout
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

	answer, err := s.link.Request(ctx, frame, c)
	if err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}

	out, err := renderAnswer(answer, queryFormat)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// listReadCommands returns one line per read command
func listReadCommands() string {
	var b strings.Builder
	for _, c := range integra.Commands() {
		info, _ := integra.LookupCommand(c)
		if info.Encoding != integra.EncodingNoData {
			continue
		}
		extended := ""
		if info.Extended {
			extended = " [extended]"
		}
		fmt.Fprintf(&b, "  0x%02X  %s%s\n", uint8(c), strings.ToLower(strings.ReplaceAll(info.Name, "_", "-")), extended)
	}
	return b.String()
}

// answerDocument is the YAML rendering of an answer
type answerDocument struct {
	Command string           `yaml:"command"`
	Code    string           `yaml:"code"`
	Flags   *flagsDocument   `yaml:"flags,omitempty"`
	NewData *newDataDocument `yaml:"new_data,omitempty"`
	Result  *resultDocument  `yaml:"result,omitempty"`
}

type flagsDocument struct {
	Total  int   `yaml:"total"`
	Active []int `yaml:"active,flow"`
}

type newDataDocument struct {
	Changed []string `yaml:"changed,flow"`
}

type resultDocument struct {
	Code     string `yaml:"code"`
	Message  string `yaml:"message"`
	Accepted bool   `yaml:"accepted"`
}

func newAnswerDocument(a integra.Answer) answerDocument {
	doc := answerDocument{
		Command: integra.FormatCommand(a.Command()),
		Code:    fmt.Sprintf("0x%02X", uint8(a.Command())),
	}

	switch v := a.(type) {
	case *integra.FlagArrayAnswer:
		active := v.ActiveNumbers()
		if active == nil {
			active = []int{}
		}
		doc.Flags = &flagsDocument{Total: v.Len(), Active: active}

	case *integra.NewDataAnswer:
		changed := []string{}
		for _, c := range v.ChangedCommands() {
			changed = append(changed, integra.FormatCommand(c))
		}
		doc.NewData = &newDataDocument{Changed: changed}

	case *integra.ResultAnswer:
		doc.Result = &resultDocument{
			Code:     fmt.Sprintf("0x%02X", uint8(v.Code())),
			Message:  v.Message(),
			Accepted: v.Accepted(),
		}
	}
	return doc
}

// renderAnswer formats an answer as text or yaml
func renderAnswer(a integra.Answer, format string) (string, error) {
	switch format {
	case "", "text":
		return integra.FormatAnswer(a), nil
	case "yaml":
		if a == nil {
			return "", fmt.Errorf("no answer to render")
		}
		out, err := yaml.Marshal(newAnswerDocument(a))
		if err != nil {
			return "", fmt.Errorf("failed to render yaml: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported format %q (use text or yaml)", format)
	}
}
