package ports

import "travel-map-service/internal/domain"

// Consumer of view model snapshots (map marker layer, list renderer, streams).
// Publish is called synchronously in event order and must not block.
type ViewPublisher interface {
	Publish(vm domain.ViewModel)
}

// Adapter to allow an ordinary function to act as a ViewPublisher.
type ViewPublisherFunc func(vm domain.ViewModel)

func (f ViewPublisherFunc) Publish(vm domain.ViewModel) { f(vm) }
