package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/nsmithuk/chainverify/dnssec"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newVerifyCommand(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "verify <name> [type]",
		Args:  cobra.RangeArgs(1, 2),
		Short: "verifies a question's answer using previously captured messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return verify(cmd, v, args)
		},
	}

	c.Flags().StringP("in", "i", "-", "file to read captured messages from, - for stdin")

	return c
}

func verify(cmd *cobra.Command, v *viper.Viper, args []string) error {
	q, err := questionFromArgs(args)
	if err != nil {
		return err
	}

	at, err := verificationTime(v)
	if err != nil {
		return err
	}

	anchors, err := trustAnchors(v)
	if err != nil {
		return err
	}

	in, _ := cmd.Flags().GetString("in")

	var r io.Reader = cmd.InOrStdin()
	if in != "-" {
		f, err := os.Open(in)
		if err != nil {
			return fmt.Errorf("can't open %s: %w", in, err)
		}
		defer f.Close()
		r = f
	}

	messages, err := readMessages(r)
	if err != nil {
		return err
	}

	chain, err := dnssec.NewUnverifiedChainFromMessages(q, messages)
	if err != nil {
		return err
	}

	if v.GetBool("dump") {
		spew.Fdump(cmd.OutOrStdout(), chain.Messages())
	}

	result := chain.VerifyAt(at, anchors)
	return printResult(cmd.OutOrStdout(), q, result)
}
