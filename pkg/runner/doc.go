/*
Package runner implements the interactive loop that drives one ordering
session from a terminal or any line-oriented stream.

It acts as the bridge between the Engine and the outside world: each turn
it renders the current step, hands the View to an IOHandler, reads back an
action and dispatches it. Validation errors are shown and the same step is
asked again; a broken session invariant stops the loop.

# Key Components

  - Runner: the Render -> Output -> Input -> Dispatch loop.
  - IOHandler: decouples how views are shown and actions are read.
  - TextHandler: numbered menus and free input for people at a terminal.
  - JSONHandler: one View per line out, one ActionEnvelope per line in.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, engine, engine.Start(ctx)); err != nil {
		log.Fatal(err)
	}
*/
package runner
