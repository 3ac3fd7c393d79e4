package report

import "context"

const (
	defaultData   = "dados do relatório"
	defaultPrefix = "Relatório formatado: "
)

// StaticGenerator returns its own value as the report data.
type StaticGenerator string

var _ Generator = StaticGenerator("")

// DefaultGenerator returns the generator used when no data is supplied.
func DefaultGenerator() StaticGenerator {
	return StaticGenerator(defaultData)
}

// Generate returns g.
func (g StaticGenerator) Generate(context.Context) (string, error) {
	if g == "" {
		return "", ErrEmptyContent
	}
	return string(g), nil
}

// PrefixFormatter prepends Prefix to the data.
type PrefixFormatter struct {
	Prefix string
}

var _ Formatter = PrefixFormatter{}

// DefaultFormatter returns the formatter used by the report service.
func DefaultFormatter() PrefixFormatter {
	return PrefixFormatter{Prefix: defaultPrefix}
}

// Format returns Prefix + data.
func (f PrefixFormatter) Format(data string) string {
	return f.Prefix + data
}

// NopSaver discards reports.
type NopSaver struct{}

var _ Saver = NopSaver{}

// Save does nothing.
func (NopSaver) Save(context.Context, *Report) error {
	return nil
}
