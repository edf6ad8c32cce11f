package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLookupCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <name> [type]",
		Args:  cobra.RangeArgs(1, 2),
		Short: "retrieves and verifies the answer to a question",
		RunE: func(cmd *cobra.Command, args []string) error {
			return lookup(cmd, v, args)
		},
	}
}

func lookup(cmd *cobra.Command, v *viper.Viper, args []string) error {
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

	verifier, err := newVerifier(v, anchors)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, v)
	defer cancel()

	chain, err := verifier.Retrieve(ctx, q)
	if err != nil {
		return err
	}

	if v.GetBool("dump") {
		spew.Fdump(cmd.OutOrStdout(), chain.Messages())
	}

	result := chain.VerifyAt(at, anchors)
	return printResult(cmd.OutOrStdout(), q, result)
}
