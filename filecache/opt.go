package filecache

type options struct {
	observer Observer
}

// OptFn configures a Cache.
type OptFn func(*options)

// WithObserver reports every lookup to obs.
func WithObserver(obs Observer) OptFn {
	return func(o *options) {
		o.observer = obs
	}
}
