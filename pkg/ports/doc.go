/*
Package ports defines the driven ports (interfaces) of the ordering core.

These interfaces decouple the Flow Controller from the systems that store
confirmed orders, allowing the same flow to write to a local file, Redis,
Postgres, or a message broker.

# Key Interfaces

  - OrderSink: appends one confirmed order line. Called once per line at
    confirmation, synchronously and without retries.
*/
package ports
