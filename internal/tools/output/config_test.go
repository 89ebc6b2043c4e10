package output

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxLines != 500 {
		t.Errorf("MaxLines = %d, want 500", cfg.MaxLines)
	}
	if cfg.EntropyThreshold != 4.0 {
		t.Errorf("EntropyThreshold = %f, want 4.0", cfg.EntropyThreshold)
	}
	if cfg.MinEntropyRunLength != 20 {
		t.Errorf("MinEntropyRunLength = %d, want 20", cfg.MinEntropyRunLength)
	}
	if cfg.MaxItems != DefaultMaxItems {
		t.Errorf("MaxItems = %d, want %d", cfg.MaxItems, DefaultMaxItems)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		input  Config
		expect Config
	}{
		{
			name:  "zero values get defaults",
			input: Config{},
			expect: Config{
				MaxLines:            DefaultMaxLines,
				EntropyThreshold:    DefaultEntropyThreshold,
				MinEntropyRunLength: DefaultMinEntropyRunLength,
				MaxItems:            DefaultMaxItems,
			},
		},
		{
			name: "looser values are capped at the defaults",
			input: Config{
				MaxLines:            100000,
				EntropyThreshold:    5.5,
				MinEntropyRunLength: 64,
				MaxItems:            10000,
			},
			expect: Config{
				MaxLines:            DefaultMaxLines,
				EntropyThreshold:    DefaultEntropyThreshold,
				MinEntropyRunLength: DefaultMinEntropyRunLength,
				MaxItems:            AbsoluteMaxItems,
			},
		},
		{
			name: "stricter values are kept",
			input: Config{
				MaxLines:            50,
				EntropyThreshold:    3.5,
				MinEntropyRunLength: 16,
				MaxItems:            10,
			},
			expect: Config{
				MaxLines:            50,
				EntropyThreshold:    3.5,
				MinEntropyRunLength: 16,
				MaxItems:            10,
			},
		},
		{
			name: "values below the floor are raised",
			input: Config{
				EntropyThreshold:    1.0,
				MinEntropyRunLength: 2,
			},
			expect: Config{
				MaxLines:            DefaultMaxLines,
				EntropyThreshold:    MinEntropyThreshold,
				MinEntropyRunLength: MinEntropyRunLength,
				MaxItems:            DefaultMaxItems,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Validate()
			if got.MaxLines != tt.expect.MaxLines {
				t.Errorf("MaxLines = %d, want %d", got.MaxLines, tt.expect.MaxLines)
			}
			if got.EntropyThreshold != tt.expect.EntropyThreshold {
				t.Errorf("EntropyThreshold = %f, want %f", got.EntropyThreshold, tt.expect.EntropyThreshold)
			}
			if got.MinEntropyRunLength != tt.expect.MinEntropyRunLength {
				t.Errorf("MinEntropyRunLength = %d, want %d", got.MinEntropyRunLength, tt.expect.MinEntropyRunLength)
			}
			if got.MaxItems != tt.expect.MaxItems {
				t.Errorf("MaxItems = %d, want %d", got.MaxItems, tt.expect.MaxItems)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	var nilCfg *Config
	if nilCfg.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}

	cfg := &Config{ExtraPrunedFields: []string{"metadata.finalizers"}}
	clone := cfg.Clone()
	clone.ExtraPrunedFields[0] = "changed"
	if cfg.ExtraPrunedFields[0] != "metadata.finalizers" {
		t.Error("Clone shares the ExtraPrunedFields slice")
	}
}

func TestEffectiveLimit(t *testing.T) {
	tests := []struct {
		request, config, want int
	}{
		{request: 0, config: 0, want: DefaultMaxItems},
		{request: 0, config: 50, want: 50},
		{request: 0, config: 900, want: AbsoluteMaxItems},
		{request: 20, config: 50, want: 20},
		{request: 200, config: 50, want: 200},
		{request: 5000, config: 50, want: AbsoluteMaxItems},
	}

	for _, tt := range tests {
		if got := EffectiveLimit(tt.request, tt.config); got != tt.want {
			t.Errorf("EffectiveLimit(%d, %d) = %d, want %d", tt.request, tt.config, got, tt.want)
		}
	}
}

func TestTruncateLines(t *testing.T) {
	got, truncated, total := TruncateLines("a\nb", 0)
	if got != "a\nb" || truncated || total != 2 {
		t.Errorf("TruncateLines with default budget = (%q, %v, %d)", got, truncated, total)
	}

	got, truncated, total = TruncateLines("a\nb\nc", 2)
	if got != "a\nb\n"+TruncationMarker || !truncated || total != 3 {
		t.Errorf("TruncateLines = (%q, %v, %d)", got, truncated, total)
	}
}

func TestTruncateLines_LineEndings(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLines  int
		want      string
		truncated bool
		total     int
	}{
		{
			name:     "trailing newline does not add a line",
			text:     "a\nb\n",
			maxLines: 2,
			want:     "a\nb\n",
			total:    2,
		},
		{
			name:     "trailing crlf does not add a line",
			text:     "a\r\nb\r\n",
			maxLines: 2,
			want:     "a\r\nb\r\n",
			total:    2,
		},
		{
			name:      "blank last line still counts",
			text:      "a\nb\n\n",
			maxLines:  2,
			want:      "a\nb\n" + TruncationMarker,
			truncated: true,
			total:     3,
		},
		{
			name:      "crlf lines are split without carriage returns",
			text:      "a\r\nb\r\nc",
			maxLines:  2,
			want:      "a\nb\n" + TruncationMarker,
			truncated: true,
			total:     3,
		},
		{
			name:     "empty text is one line",
			text:     "",
			maxLines: 1,
			want:     "",
			total:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated, total := TruncateLines(tt.text, tt.maxLines)
			if got != tt.want || truncated != tt.truncated || total != tt.total {
				t.Errorf("TruncateLines(%q, %d) = (%q, %v, %d), want (%q, %v, %d)",
					tt.text, tt.maxLines, got, truncated, total, tt.want, tt.truncated, tt.total)
			}
		})
	}
}
