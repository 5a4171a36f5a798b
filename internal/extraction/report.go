package extraction

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/pibejo/shift-billing/internal/common"
	"github.com/pibejo/shift-billing/internal/entity"
	"github.com/pibejo/shift-billing/internal/normalize"
)

// Parser turns an operations-report PDF into shift records.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseReport extracts every shift record from the PDF bytes. Lines that do
// not describe a shift are skipped silently; lines with unparseable numbers
// are dropped individually and logged.
func (p *Parser) ParseReport(data []byte) ([]entity.ShiftRecord, error) {
	lines, err := ExtractTextLines(data)
	if err != nil {
		return nil, common.WrapError(err, "reading report PDF")
	}
	return p.ParseLines(lines), nil
}

// ParseLines runs the line scraper over already-extracted text lines.
func (p *Parser) ParseLines(lines []string) []entity.ShiftRecord {
	var records []entity.ShiftRecord
	dropped := 0
	for _, raw := range lines {
		if strings.HasPrefix(raw, "FechaInicioJornada") {
			continue
		}
		line := normalize.CleanupNumberSpacing(normalize.Line(raw))

		parsed, err := ParseShiftLine(line)
		if err != nil {
			if errors.Is(err, common.ErrFormat) {
				dropped++
				p.logger.Warn("report.line.dropped", "line", line, "err", err)
				continue
			}
			p.logger.Warn("report.line.error", "line", line, "err", err)
			continue
		}
		if parsed == nil {
			continue
		}

		driver, carrier := SplitDriverCarrier(parsed.Rest)
		canonical := GuessCarrierFromLabel(carrier)
		if canonical == "" {
			canonical = carrier
		}
		provider := ""
		if canonical != "" {
			provider = normalize.NameKey(canonical)
		}

		records = append(records, entity.ShiftRecord{
			Driver:   driver,
			Carrier:  carrier,
			Provider: provider,
			Hours:    parsed.Hours,
		})
	}
	p.logger.Info("report.parse.ok", "lines", len(lines), "records", len(records), "dropped", dropped)
	return records
}
