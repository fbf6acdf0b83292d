package monitoring

import "time"

// Uptime returns time elapsed since the collector was created
func (m *Metrics) Uptime() time.Duration {
	if m == nil {
		return 0
	}
	return time.Since(m.startTime)
}
