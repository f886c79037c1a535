// Package dependency declares the collaborator slots of a host type and
// resolves them so the host is operable straight after construction.
//
// A host embeds Slots and declares its slots once, in an init function, on
// a Class:
//
//	var (
//	  purgerClass = dependency.NewClass[*Purger]("purge.Purger")
//	  storeSlot   *dependency.Slot[*Purger, Store]
//	  events      *dependency.TelemetrySlot[*Purger]
//	)
//
//	func init() {
//	  storeSlot = dependency.Declare(purgerClass, "store", StoreCapability, NewNullStore)
//	  events = dependency.DeclareTelemetry(purgerClass, "telemetry")
//	}
//
// Declaration order is the order Configure walks the slots. Package-level
// variable initializers run in dependency order, not source order, so a
// slot whose capability lives in another file may be declared later than it
// reads; declaring inside init keeps the order as written.
//
// Reading a slot that nobody assigned yields a Null Object for the slot's
// capability, created on first access and cached per owner. Recipes
// registered per namespace (Operational, Substitute, or any other name)
// upgrade slots when the class configures an owner:
//
//	storeSlot.Recipe(dependency.Operational, func(p *Purger) (Store, error) {
//	  return OpenSQLStore(p.dsn)
//	})
//
//	p, err := purgerClass.Build(New(dsn, ttl))
//
// Configure is atomic: builders run first and slots are written only after
// every builder succeeded.
//
// Declarations and recipes are safe for concurrent registration. Per-owner
// slot storage is not; callers serialize access to a shared owner.
package dependency
