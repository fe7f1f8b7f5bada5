package observability

import "context"

// NoOpObserver discards all events.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// Combine returns an Observer forwarding each event to the non-nil observers
// in order. With none it returns NoOpObserver and with one that observer
// itself.
func Combine(observers ...Observer) Observer {
	live := make(fanout, 0, len(observers))
	for _, obs := range observers {
		switch o := obs.(type) {
		case nil, NoOpObserver:
		case fanout:
			live = append(live, o...)
		default:
			live = append(live, o)
		}
	}

	switch len(live) {
	case 0:
		return NoOpObserver{}
	case 1:
		return live[0]
	default:
		return live
	}
}

type fanout []Observer

func (f fanout) OnEvent(ctx context.Context, event Event) {
	for _, obs := range f {
		obs.OnEvent(ctx, event)
	}
}
