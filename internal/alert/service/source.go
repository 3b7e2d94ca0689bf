package service

import (
	"aparajita/internal/common/rmq"
)

// Source feeds peer distress broadcasts into the manager. Production wires
// the RabbitMQ consumer; tests use a fixture that replays canned messages.
type Source interface {
	Subscribe(apply func(msg rmq.AlertBroadcastMessage)) error
}

// Attach subscribes the manager to a source. Our own broadcasts come back
// on the same topic; ApplyPeer drops them via the per-source dedupe.
func (m *Manager) Attach(src Source) error {
	return src.Subscribe(m.ApplyPeer)
}

// FixtureSource is a Source preloaded with messages, for tests and local
// demos.
type FixtureSource struct {
	Messages []rmq.AlertBroadcastMessage
}

func (f *FixtureSource) Subscribe(apply func(msg rmq.AlertBroadcastMessage)) error {
	for _, msg := range f.Messages {
		apply(msg)
	}
	return nil
}
