// Command fudgedump reads a stream of Fudge messages in one encoding and writes them out in another: the
// binary envelope encoding, the textual diagnostic dump in package format, or the JSON rendering in package
// fudgejson.
//
// Grounded on aldas-go-nmea-client/cmd/n2kreader/main.go's shape (flag parsing, a
// signal.NotifyContext-driven cancellable read loop, a per-message decode-then-print body) but rebuilt on
// top of urfave/cli the way kryptco-kr/src/kr/kr.go structures its own command-line surface, since n2kreader
// has only one mode of operation and fudgedump's encode/decode/convert split reads more naturally as
// urfave/cli flags on a single command than as flag.Bool/flag.String globals.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/fudgemsg/go-fudge"
	"github.com/fudgemsg/go-fudge/format"
	"github.com/fudgemsg/go-fudge/fudgejson"
	"github.com/fudgemsg/go-fudge/internal/applog"
)

func main() {
	app := cli.NewApp()
	app.Name = "fudgedump"
	app.Usage = "convert Fudge messages between the binary, text and JSON encodings"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "input, i", Value: "-", Usage: "input file, or - for stdin"},
		cli.StringFlag{Name: "output, o", Value: "-", Usage: "output file, or - for stdout"},
		cli.StringFlag{Name: "from", Value: "bin", Usage: "input encoding: bin, json"},
		cli.StringFlag{Name: "to", Value: "text", Usage: "output encoding: text, json, bin"},
		cli.IntFlag{Name: "taxonomy-id", Value: 0, Usage: "taxonomy id written into the envelope when --to=bin and the JSON input's taxonomy is 0 or absent"},
		cli.StringFlag{Name: "log-level", Value: "NOTICE", Usage: "CRITICAL, ERROR, WARNING, NOTICE, INFO or DEBUG"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		applog.Logger().Errorf("%v", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := applog.Setup(c.String("log-level"))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	in, err := openInput(c.String("input"))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(c.String("output"))
	if err != nil {
		return err
	}
	defer out.Close()

	from, to := c.String("from"), c.String("to")
	fctx := fudge.NewContext()

	switch from {
	case "bin":
		return convertFromBinary(ctx, fctx, in, out, to, log)
	case "json":
		return convertFromJSON(fctx, in, out, to, int16(c.Int("taxonomy-id")))
	default:
		return fmt.Errorf("unknown --from encoding %q", from)
	}
}

func convertFromBinary(ctx context.Context, fctx *fudge.Context, in io.Reader, out io.Writer, to string, log *logging.Logger) error {
	reader := fctx.NewReader(in)
	defer reader.Close()

	count := 0
	for reader.HasNext() {
		msg, env, err := reader.NextMessage(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", count, err)
		}
		count++

		switch to {
		case "text":
			if err := format.Dump(out, msg); err != nil {
				return err
			}
		case "json":
			b, err := fudgejson.Marshal(msg, env, fudgejson.Config{})
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "%s\n", b); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown --to encoding %q for --from=bin", to)
		}
	}
	log.Noticef("converted %d message(s)", count)
	return nil
}

func convertFromJSON(fctx *fudge.Context, in io.Reader, out io.Writer, to string, taxonomyID int16) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	msg, env, err := fudgejson.Unmarshal(data, fudgejson.Config{})
	if err != nil {
		return err
	}

	switch to {
	case "text":
		return format.Dump(out, msg)
	case "json":
		b, err := fudgejson.Marshal(msg, env, fudgejson.Config{})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", b)
		return err
	case "bin":
		writer := fctx.NewWriter(out)
		defer writer.Close()
		if env.TaxonomyID == 0 {
			env.TaxonomyID = taxonomyID
		}
		return writer.WriteMessage(context.Background(), msg, env.ProcessingDirectives, env.SchemaVersion, env.TaxonomyID)
	default:
		return fmt.Errorf("unknown --to encoding %q for --from=json", to)
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
