package exchange

// Sink adapts an Exchange into a metricscache.Sink: metricscache.Cache
// reporters deliver typed map[string]int64 batches, while Exchange.Send
// accepts any, so client workers hand their reporter this instead of
// the exchange directly.
type Sink struct {
	exchange *Exchange
}

// NewSink wraps e so it can be passed wherever a metricscache.Sink is
// expected.
func NewSink(e *Exchange) *Sink {
	return &Sink{exchange: e}
}

// Send implements metricscache.Sink.
func (s *Sink) Send(counts map[string]int64) {
	s.exchange.Send(counts)
}
