// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wneessen/go-geocode"
	"github.com/wneessen/go-geocode/ratelimit"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk <file>",
	Short: "Geocode a file of addresses (one per line) to CSV on stdout",
	Long: "Geocode a file of addresses, one per line, writing address, latitude, longitude and " +
		"display name as CSV to stdout. Calls are paced and retried according to the ratelimit " +
		"configuration; addresses that keep failing produce a row with empty coordinates.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open address file: %w", err)
		}
		defer func() {
			if err := file.Close(); err != nil {
				log.Error("failed to close address file", "error", err)
			}
		}()

		var addresses []string
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				addresses = append(addresses, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read address file: %w", err)
		}

		coder, err := newCoder()
		if err != nil {
			return err
		}
		limited, err := ratelimit.New(coder.Geocode, ratelimit.Config[*geocode.Location]{
			MinDelay:      conf.RateLimit.MinDelay,
			MaxRetries:    conf.RateLimit.MaxRetries,
			ErrorWait:     conf.RateLimit.ErrorWait,
			SwallowErrors: true,
			Logger:        log,
		})
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(addresses)), "geocoding")
		writer := csv.NewWriter(cmd.OutOrStdout())
		for _, address := range addresses {
			location, err := limited.Call(cmd.Context(), address)
			if err != nil {
				return err
			}
			record := []string{address, "", "", ""}
			if location != nil {
				record[1] = strconv.FormatFloat(location.Latitude, 'f', -1, 64)
				record[2] = strconv.FormatFloat(location.Longitude, 'f', -1, 64)
				record[3] = location.Name
			}
			if err := writer.Write(record); err != nil {
				return err
			}
			if err := bar.Add(1); err != nil {
				log.Debug("failed to update progress bar", "error", err)
			}
		}
		writer.Flush()
		return writer.Error()
	},
}
