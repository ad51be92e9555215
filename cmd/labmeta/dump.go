package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/labmeta"
)

// document is the printed form of one record.
type document struct {
	Path     string            `yaml:"path" json:"path"`
	Kind     string            `yaml:"kind" json:"kind"`
	Metadata *labmeta.Metadata `yaml:"metadata" json:"metadata"`
}

func newDocument(path string, rec labmeta.Record) document {
	return document{Path: path, Kind: rec.Kind().String(), Metadata: rec.Metadata()}
}

// printer writes documents as a YAML stream or as JSON lines.
type printer struct {
	yaml *yaml.Encoder
	json *json.Encoder
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	if asJSON {
		return &printer{json: json.NewEncoder(w)}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &printer{yaml: enc}
}

func (p *printer) print(doc document) error {
	if p.json != nil {
		return p.json.Encode(doc)
	}
	return p.yaml.Encode(doc)
}

func (p *printer) close() error {
	if p.yaml != nil {
		return p.yaml.Close()
	}
	return nil
}

func (a *app) dumpCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dump <file>...",
		Short: "Print the metadata of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(a.stdout, asJSON)
			defer p.close()

			opts := a.options()
			failed := 0
			for _, path := range args {
				rec, err := labmeta.ProcessContext(cmd.Context(), path, opts...)
				if err != nil {
					fmt.Fprintf(a.stderr, "%s: %v\n", path, err)
					failed++
					continue
				}
				if err := p.print(newDocument(path, rec)); err != nil {
					return errors.Wrap(err, "write output")
				}
			}

			if failed > 0 {
				return errors.Newf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per line instead of YAML")
	return cmd
}
