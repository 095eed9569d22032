/*
Package domain contains the core value types of the ordering flow.

It defines the steps of the conversation, the actions a customer can take,
the cart and its line items, the menu catalog, and the records handed to the
persistence sink. The package has no I/O and no dependencies on adapters,
following the Hexagonal Architecture used across the repository.

# Key Entities

  - Step: one named state of the ordering flow.
  - Action: the tagged union of user actions consumed by the Flow Controller.
  - Cart / LineItem: the committed order lines and their arithmetic.
  - Draft: the uncommitted selection between "choose category" and "add to cart".
  - Catalog: the read-only menu.
  - View: what the host should present for the current step.
  - OrderRecord: one row appended to the sink at confirmation.
*/
package domain
