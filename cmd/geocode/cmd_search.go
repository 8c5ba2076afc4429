// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wneessen/go-geocode"
)

var searchCmd = &cobra.Command{
	Use:   "search <address>",
	Short: "Resolve a free-text address to coordinates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coder, err := newCoder()
		if err != nil {
			return err
		}
		location, err := coder.Geocode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if location == nil {
			return fmt.Errorf("no location found for %q", args[0])
		}
		coords, err := geocode.CoercePointToString(location.Point(), "")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", location.Name, coords)
		return nil
	},
}
