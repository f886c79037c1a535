// Command usefulgen generates capabilities and typed Null Object adapters.
//
// Go cannot synthesize methods at runtime, so a dependency slot whose
// interface is Store needs a small adapter type that embeds *null.Object and
// forwards each method to it. usefulgen writes that adapter, together with the
// capability variable describing the operations and their defaults, from a
// JSON spec that sits next to the interface.
//
// Spec format (*.capability.json)
//
//	{
//	  "package": "purge",
//	  "interface": "Store",
//	  "capability": "StoreCapability",
//	  "name": "purge.store",
//	  "nullType": "nullStore",
//	  "constructor": "NewNullStore",
//	  "weak": false,
//	  "ops": [
//	    {
//	      "name": "DeleteOlderThan",
//	      "params": [
//	        { "name": "ctx", "type": "context.Context" },
//	        { "name": "cutoff", "type": "time.Time" }
//	      ],
//	      "results": [
//	        { "type": "int64", "default": "int64(0)" },
//	        { "type": "error" }
//	      ]
//	    }
//	  ]
//	}
//
// A result's "default" is a Go expression; an empty default is nil. Parameter
// names n and r are reserved for the receiver and the results.
//
// Typical go:generate usage
//
// Put this in the file declaring the interface (the owner file):
//
//	//go:generate go run ../../cmd/usefulgen -spec ./specs/store.capability.json -out ./store_null.gen.go
//
// Parameter and result types may use any package the owner file imports;
// only the imports the adapter references are copied. The capability and
// null packages are always imported. Override their paths with
// "imports": {"capability": "...", "null": "..."} when vendoring.
//
// Generated API
//
//   - var <Capability> = capability.Must(<name>, capability.Operation(...)...)
//   - type <NullType> struct{ *null.Object }
//   - func <Constructor>(o *null.Object) <Interface>
//   - one forwarding method per op
//
// Wire the result into a class with
//
//	dependency.Declare(Class, "store", StoreCapability, NewNullStore)
package main
