package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"
)

// Output formats accepted by the --format flag of scan and run.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// formatEnum is the kong enum for the --format flag.
const formatEnum = formatText + "," + formatJSON + "," + formatYAML

// texter renders itself for the text output format.
type texter interface {
	text() string
}

// encode writes v to w in the named format.
func encode(w io.Writer, format string, v texter) error {
	switch format {
	case formatText, "":
		_, err := io.WriteString(w, v.text())

		return err

	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(v); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil

	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err

	default:
		return ErrFormat.
			Wrap(fmt.Errorf("%q is not one of %s", format, formatEnum)).
			With(slog.String("format", format))
	}
}
