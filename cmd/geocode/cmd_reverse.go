// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wneessen/go-geocode"
)

var reverseCmd = &cobra.Command{
	Use:   "reverse <lat,lon>",
	Short: "Resolve a coordinate pair to the nearest address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		point, err := geocode.ParsePoint(args[0])
		if err != nil {
			return err
		}
		coder, err := newCoder()
		if err != nil {
			return err
		}
		location, err := coder.Reverse(cmd.Context(), point)
		if err != nil {
			return err
		}
		if location == nil {
			return fmt.Errorf("no address found for %q", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", location.Name)
		return nil
	},
}
