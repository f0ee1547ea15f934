package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"skylog/internal/digest"
	"skylog/internal/kml"
)

var (
	kmlInput  string
	kmlOutput string
)

var kmlCmd = &cobra.Command{
	Use:   "kml",
	Short: "Render a digest's flight segments as KML",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := kmlInput
		if input == "" {
			input = filepath.Join(cfg.Paths.ArchiveDir, digest.LatestName)
		}
		d, err := digest.ReadDigest(input)
		if err != nil {
			return err
		}

		name := "Rotas"
		if date, ok := d.Date(); ok {
			name += " " + date
		}
		doc := kml.Build(name, d.Segments, time.Now())

		if kmlOutput == "" {
			return kml.Encode(os.Stdout, doc)
		}
		var buf strings.Builder
		if err := kml.Encode(&buf, doc); err != nil {
			return err
		}
		if err := renameio.WriteFile(kmlOutput, []byte(buf.String()), 0o644); err != nil {
			return eris.Wrapf(err, "write %s", kmlOutput)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d segments to %s\n", len(d.Segments), kmlOutput)
		return nil
	},
}

func init() {
	kmlCmd.Flags().StringVar(&kmlInput, "input", "", "digest JSON file (default: latest digest)")
	kmlCmd.Flags().StringVarP(&kmlOutput, "output", "o", "", "output KML file (default: stdout)")
	rootCmd.AddCommand(kmlCmd)
}
