package dependency

// Actuator is the single entry point a host exposes to perform its purpose.
type Actuator[R any] interface {
	Actuate() (R, error)
}

// Call actuates a freshly built host. It is meant to wrap a Build-style
// constructor directly:
//
//	func Purge(db string, ttl time.Duration) (int64, error) {
//	  return dependency.Call[int64](Build(db, ttl))
//	}
//
// When err is non-nil the actuator is never invoked.
func Call[R any](a Actuator[R], err error) (R, error) {
	var zero R
	if err != nil {
		return zero, err
	}
	if isNil(a) {
		return zero, ErrNilOwner
	}
	return a.Actuate()
}
