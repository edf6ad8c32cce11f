package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCaptureCommand(v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "capture <name> [type]",
		Args:  cobra.RangeArgs(1, 2),
		Short: "retrieves every message needed to verify a question, and stores them for later verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture(cmd, v, args)
		},
	}

	c.Flags().StringP("out", "o", "-", "file to write the messages to, - for stdout")

	return c
}

func capture(cmd *cobra.Command, v *viper.Viper, args []string) error {
	q, err := questionFromArgs(args)
	if err != nil {
		return err
	}

	verifier, err := newVerifier(v, nil)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, v)
	defer cancel()

	chain, err := verifier.Retrieve(ctx, q)
	if err != nil {
		return err
	}

	messages := chain.Messages()
	if v.GetBool("dump") {
		spew.Fdump(cmd.ErrOrStderr(), messages)
	}

	out, _ := cmd.Flags().GetString("out")

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("can't create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := writeMessages(w, messages); err != nil {
		return err
	}

	log.Infof("captured %d messages for %s", len(messages), q.Key())
	return nil
}
