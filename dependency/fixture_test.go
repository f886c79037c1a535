package dependency_test

import (
	"github.com/sghaida/useful/capability"
	"github.com/sghaida/useful/dependency"
	"github.com/sghaida/useful/null"
	"github.com/sghaida/useful/telemetry"
)

// Doer is the collaborator used by the test host.
type Doer interface {
	DoSomething(what string) (bool, error)
	Done() int
}

var DoerCapability = capability.Must("doer",
	capability.Operation("DoSomething", false, nil),
	capability.Operation("Done", 0),
)

type nullDoer struct{ *null.Object }

func newNullDoer(o *null.Object) Doer { return &nullDoer{Object: o} }

func (n *nullDoer) DoSomething(what string) (bool, error) {
	r := n.Call("DoSomething", what)
	return null.Value[bool](r, 0), null.Value[error](r, 1)
}

func (n *nullDoer) Done() int { return null.Value[int](n.Call("Done"), 0) }

// realDoer performs the "destructive" effect: it counts.
type realDoer struct {
	effects int
	events  *telemetry.Channel
}

func newRealDoer() *realDoer { return &realDoer{events: telemetry.NewChannel("realDoer")} }

func (d *realDoer) DoSomething(what string) (bool, error) {
	d.effects++
	d.events.Record("did", what)
	return true, nil
}

func (d *realDoer) Done() int { return d.effects }

// closingDoer is a realDoer holding a resource that Configure may release.
type closingDoer struct {
	*realDoer
	closed   int
	closeErr error
}

func newClosingDoer() *closingDoer { return &closingDoer{realDoer: newRealDoer()} }

func (d *closingDoer) Close() error {
	d.closed++
	return d.closeErr
}

// fakeDoer is the substitute: same events, no effect.
type fakeDoer struct {
	calls  int
	events *telemetry.Channel
}

func newFakeDoer() *fakeDoer { return &fakeDoer{events: telemetry.NewChannel("fakeDoer")} }

func (d *fakeDoer) DoSomething(what string) (bool, error) {
	d.calls++
	d.events.Record("did", what)
	return true, nil
}

func (d *fakeDoer) Done() int { return 0 }

// notADoer has none of the Doer methods.
type notADoer struct{}

// SourceRecord is the raw input a host is built from.
type SourceRecord struct {
	SomeValue      string
	SomeOtherValue string
}

// Host is the test host. Each fixture owns its class so parallel tests do
// not share recipes.
type Host struct {
	dependency.Slots

	fx             *fixture
	SomeValue      string
	SomeOtherValue string
}

type fixture struct {
	class  *dependency.Class[*Host]
	dep    *dependency.Slot[*Host, Doer]
	events *dependency.TelemetrySlot[*Host]
}

func newFixture(name string) *fixture {
	class := dependency.NewClass[*Host](name)
	return &fixture{
		class:  class,
		dep:    dependency.Declare(class, "someDependency", DoerCapability, newNullDoer),
		events: dependency.DeclareTelemetry(class, "telemetry"),
	}
}

func (fx *fixture) New(r SourceRecord) *Host {
	return &Host{fx: fx, SomeValue: r.SomeValue, SomeOtherValue: r.SomeOtherValue}
}

func (fx *fixture) Build(r SourceRecord, opts ...dependency.Option) (*Host, error) {
	return fx.class.Build(fx.New(r), opts...)
}

func (h *Host) SomeDependency() Doer { return h.fx.dep.Get(h) }

func (h *Host) Telemetry() *telemetry.Channel { return h.fx.events.Get(h) }

func (h *Host) Actuate() (bool, error) {
	ok, err := h.SomeDependency().DoSomething(h.SomeValue)
	if err != nil {
		return false, err
	}
	h.fx.events.Record(h, "somethingDone", h.SomeValue)
	return ok, nil
}

var literal = SourceRecord{SomeValue: "some value", SomeOtherValue: "some other value"}
