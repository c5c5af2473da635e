package promo

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const cancelCheckEvery = 100_000

// fileLoader implements Loader for gzipped promo files on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based promo loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promo-loader").Logger(),
	}
}

// Load reads a gzipped promo file with one CODE[,PERCENT] entry per line.
func (l *fileLoader) Load(ctx context.Context, path string) (Set, error) {
	l.logger.Info().Str("file", path).Msg("loading promo file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open promo file")
		return nil, fmt.Errorf("failed to open promo file %s: %w", path, err)
	}
	defer file.Close()

	set, err := readSet(ctx, file, l.logger.With().Str("file", path).Logger())
	if err != nil {
		return nil, fmt.Errorf("promo file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("codes_loaded", set.Size()).
		Msg("promo file loaded successfully")

	return set, nil
}

// readSet decompresses r and parses its entries. Malformed lines are skipped.
func readSet(ctx context.Context, r io.Reader, logger zerolog.Logger) (*mapSet, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	set := newMapSet(1024)
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineCount, skipped := 0, 0
	for scanner.Scan() {
		if lineCount%cancelCheckEvery == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Msg("promo loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}
		lineCount++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, percent, ok := parseEntry(line)
		if !ok {
			skipped++
			continue
		}
		set.Add(code, percent)
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("error reading promo file")
		return nil, fmt.Errorf("error reading promo file: %w", err)
	}

	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("malformed promo entries ignored")
	}

	return set, nil
}

// parseEntry parses "CODE" or "CODE,PERCENT". Percent must be in (0, 100].
func parseEntry(line string) (string, decimal.Decimal, bool) {
	codePart, percentPart, hasPercent := strings.Cut(line, ",")
	code := strings.ToUpper(strings.TrimSpace(codePart))
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		return "", decimal.Zero, false
	}

	if !hasPercent {
		return code, DefaultPercent, true
	}

	percent, err := decimal.NewFromString(strings.TrimSpace(percentPart))
	if err != nil || !percent.IsPositive() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return "", decimal.Zero, false
	}
	return code, percent, true
}
