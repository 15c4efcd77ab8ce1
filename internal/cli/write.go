package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pbenes/gooddata-data-layer/internal/config"
	"github.com/pbenes/gooddata-data-layer/internal/document"
	"github.com/pbenes/gooddata-data-layer/internal/logging"
	"github.com/pbenes/gooddata-data-layer/internal/output"
)

// resolveFormat picks the output format: the --format flag, then the
// extension of the output path, then the configured default.
func resolveFormat(ctx context.Context, opts *outputOptions) string {
	if opts.format != "" {
		return opts.format
	}

	switch strings.ToLower(filepath.Ext(opts.output)) {
	case ".yaml", ".yml":
		return config.OutputFormatYAML
	case ".json":
		return config.OutputFormatJSON
	}

	return config.FromContext(ctx).OutputFormat
}

// renderDocuments serializes docs in the given format.
func renderDocuments(docs []*document.Document, format string) ([]byte, error) {
	enc, err := output.DefaultRegistry().Encoder(format)
	if err != nil {
		return nil, &ExitError{Code: exitUsage, Err: err}
	}

	if format == config.OutputFormatJSON && len(docs) > 1 {
		return nil, &ExitError{
			Code: exitUsage,
			Err:  fmt.Errorf("%d documents cannot be written as a single JSON value: use --format yaml", len(docs)),
		}
	}

	maps := make([]map[string]interface{}, 0, len(docs))

	for _, doc := range docs {
		m, err := doc.Map()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Name(), err)
		}

		maps = append(maps, m)
	}

	return enc(maps)
}

// writeDocuments serializes docs and writes them to --output, or to stdout
// when no output path is set.
func writeDocuments(ctx context.Context, stdout io.Writer, docs []*document.Document, opts *outputOptions) error {
	logger := logging.FromContext(ctx)

	data, err := renderDocuments(docs, resolveFormat(ctx, opts))
	if err != nil {
		return err
	}

	var w output.Writer = output.NewStdoutWriter(stdout)
	if opts.output != "" {
		w = output.NewFileWriter(opts.output, output.WithLogger(logger))
	}

	if err := w.Write(data); err != nil {
		return &ExitError{Code: exitError, Err: err}
	}

	if opts.output != "" {
		logger.Info("documents written", slog.String("path", opts.output), slog.Int("documents", len(docs)))
	}

	return nil
}
