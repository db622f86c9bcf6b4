package director

// Script holds hand-editable per-element timing for one diagram
type Script struct {
	Version  string                   `yaml:"version"`
	Source   string                   `yaml:"source,omitempty"`
	Elements map[string]ElementTiming `yaml:"elements"`
}

// ElementTiming overrides the planned order and duration of an element
type ElementTiming struct {
	Type       string   `yaml:"type,omitempty"` // informational only
	Order      *float64 `yaml:"order,omitempty"`
	DurationMs *int64   `yaml:"durationMs,omitempty"`
}

// Timeline describes a published result set
type Timeline struct {
	Version          string         `yaml:"version"`
	Cycle            string         `yaml:"cycle,omitempty"`
	Source           string         `yaml:"source"`
	Sequential       bool           `yaml:"sequential"`
	AutoplayDisabled bool           `yaml:"autoplayDisabled"`
	TotalMs          int64          `yaml:"totalMs"`
	Items            []TimelineItem `yaml:"items"`
}

// TimelineItem is one rendered diagram on the timeline
type TimelineItem struct {
	Index      int    `yaml:"index"`
	File       string `yaml:"file"`
	StartMs    int64  `yaml:"startMs"`
	FinishedMs int64  `yaml:"finishedMs"`
	DurationMs int64  `yaml:"durationMs"` // FinishedMs - StartMs
	SeekMs     int64  `yaml:"seekMs"`     // playback position after load
}

// Span is the timing of one result as produced by the player
type Span struct {
	StartMs    int64
	FinishedMs int64
	SeekMs     int64
}
