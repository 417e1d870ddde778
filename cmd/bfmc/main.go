package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	bfmscript "github.com/zombaio/bfm"
	"github.com/zombaio/bfm/lib/bfm"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		// zap itself failed to build a logger; nothing left to log with.
		os.Exit(1)
	}
	defer logger.Sync()

	rootCmd := &cobra.Command{
		Use:   "bfmc",
		Short: "Encode BFM token scripts into the blip binary or text wire format",
	}

	rootCmd.AddCommand(newEncodeCmd(logger), newEmitCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newEncodeCmd(logger *zap.Logger) *cobra.Command {
	var format string
	var in string
	var out string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a .bfms token script into a BFM stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := bfm.ParseFormat(format)
			if err != nil {
				logger.Error("unrecognized format", zap.String("format", format))
				return err
			}
			if in == "" {
				return errors.New("bfmc: --in is required")
			}
			if out == "" {
				return errors.New("bfmc: --out is required")
			}
			return encode(logger, f, in, out)
		},
	}
	cmd.Flags().StringVar(&format, "format", "binary", "Wire format: binary or text")
	cmd.Flags().StringVar(&in, "in", "", "Input .bfms token script path")
	cmd.Flags().StringVar(&out, "out", "", "Output stream path")
	return cmd
}

func newEmitCmd(logger *zap.Logger) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Encode a .bfms token script from stdin, writing the stream to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := bfm.ParseFormat(format)
			if err != nil {
				logger.Error("unrecognized format", zap.String("format", format))
				return err
			}
			return encodeStream(logger, f, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&format, "format", "binary", "Wire format: binary or text")
	return cmd
}

func encode(logger *zap.Logger, format bfm.Format, in, out string) error {
	src, err := os.Open(in)
	if err != nil {
		return errors.Wrapf(err, "bfmc: failed to open %s", in)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "bfmc: failed to create %s", out)
	}
	defer dst.Close()

	return encodeStream(logger, format, src, dst)
}

func encodeStream(logger *zap.Logger, format bfm.Format, src io.Reader, dst io.Writer) error {
	w, err := bfm.NewWriter(format)
	if err != nil {
		logger.Error("failed to allocate writer", zap.Error(err))
		return err
	}
	defer w.Dispose()

	if err := bfmscript.Parse(src, w); err != nil {
		logger.Error("script parse failed", zap.Error(err))
		return err
	}

	if _, err := dst.Write(w.Bytes()); err != nil {
		logger.Error("failed to write output stream", zap.Error(err))
		return errors.Wrap(err, "bfmc: failed to write output")
	}

	logger.Info("encoded script", zap.Int("bytes", w.Size()))
	return nil
}
