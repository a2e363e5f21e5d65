package config

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ConfigDocs maps dot-separated TOML field paths (e.g. "display.color") and
// section names to their [FieldDoc] entries.
var ConfigDocs = map[string]FieldDoc{
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	"display.color": {
		Comment:      "ANSI color: \"auto\" colors only when stdout is a terminal.",
		Alternatives: []string{`color = "always"`, `color = "never"`},
	},
	"display.show_status": {
		Comment: "Show whether the custom handlers are active above the menu.",
	},

	"signals.delivery_timeout_ms": {
		Comment: "How long a raise waits for the custom handler to report, in milliseconds.",
	},

	"log.level": {
		Comment:      "Minimum log level: trace, debug, info, warn, error.",
		Alternatives: []string{`level = "debug"`},
	},
	"log.max_size_mb": {
		Comment: "Rotate sigdemo.log after this many megabytes.",
	},
}
