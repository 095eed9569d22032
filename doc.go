/*
Package barista is a guided ordering assistant for a small café.

A customer is walked through a fixed flow: welcome, name entry, a two
category menu, item and quantity pickers, a checkout summary and a thank
you screen. The Engine owns the flow rules and the cart arithmetic; hosts
(terminal, HTTP, MCP) only present the View of the current step and send
back the action the customer picked.

# Concept

Every step is rendered into a domain.View listing exactly the actions the
step accepts. Hosts turn the customer's choice into a domain.Action and
call Dispatch. The engine re-validates every input, so a host can never
push the session into an inconsistent state.

Confirmed orders are handed to a ports.OrderSink, one record per cart
line. Sink failures are reported as warnings and never block the flow.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/barista"
		"github.com/aretw0/barista/pkg/domain"
	)

	func main() {
		eng := barista.New()
		ctx := context.Background()
		s := eng.Start(ctx)

		for _, a := range []domain.Action{
			domain.Begin{},
			domain.SubmitName{Name: "alice"},
			domain.ChooseCategory{Category: "Beverage"},
			domain.SelectItem{Item: "Cold Brew"},
			domain.AddToCart{Quantity: 2},
			domain.Checkout{},
			domain.Confirm{},
		} {
			if _, err := eng.Dispatch(ctx, s, a); err != nil {
				log.Fatal(err)
			}
		}
		fmt.Println(eng.Render(s).Title) // Thank You, Alice!
	}

# Hosts

  - pkg/runner: interactive terminal loop (text or JSON lines).
  - pkg/adapters/http: REST API with Server-Sent Events.
  - pkg/adapters/mcp: Model Context Protocol tools for agents.

Sinks live under pkg/adapters (memory, csv, redis, postgres, amqp).
*/
package barista
