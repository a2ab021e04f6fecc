package audit

import "context"

// ChannelPublisher hands events to an in-process worker over a buffered
// channel. When the channel is full the event is dropped rather than
// blocking the domain operation; audit is an observer, not a participant,
// of registry transactions.
type ChannelPublisher struct {
	inbox chan<- Event
}

// NewChannelPublisher creates a publisher feeding the given inbox.
func NewChannelPublisher(inbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Inbox full: drop.
		return nil
	}
}
