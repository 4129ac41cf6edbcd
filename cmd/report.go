/*
Copyright 2024

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/penny-vault/import-sharia/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Print summary statistics of a downloaded csv file",
	Long: `Load a csv file written by import-sharia and print the first rows, the
column layout and descriptive statistics of every numeric column.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fn := viper.GetString("report.file")
		if len(args) == 1 {
			fn = args[0]
		}

		if err := printReport(os.Stdout, fn, viper.GetInt("report.rows")); err != nil {
			log.Fatal().Err(err).Str("FileName", fn).Msg("could not build report")
		}
	},
}

func printReport(w io.Writer, fn string, rows int) error {
	frame, err := report.Load(fn)
	if err != nil {
		return err
	}

	if err := frame.Head(w, rows); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := frame.Info(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return frame.Describe(w)
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("file", "f", "SAP.DE_2024-06-02.csv", "csv file to report on")
	viper.BindPFlag("report.file", reportCmd.Flags().Lookup("file"))

	reportCmd.Flags().IntP("rows", "n", 5, "number of rows to print")
	viper.BindPFlag("report.rows", reportCmd.Flags().Lookup("rows"))
}
