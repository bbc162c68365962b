package mirror

import "log/slog"

// Stats counts what the loop has done since it was created.
type Stats struct {
	Ticks            int
	Detections       int
	EmptyReadings    int
	ClassifierErrors int
	Confirmations    int
	Announcements    int
	SpeechErrors     int
	RenderErrors     int
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ticks", s.Ticks),
		slog.Int("detections", s.Detections),
		slog.Int("empty_readings", s.EmptyReadings),
		slog.Int("classifier_errors", s.ClassifierErrors),
		slog.Int("confirmations", s.Confirmations),
		slog.Int("announcements", s.Announcements),
		slog.Int("speech_errors", s.SpeechErrors),
		slog.Int("render_errors", s.RenderErrors),
	)
}
