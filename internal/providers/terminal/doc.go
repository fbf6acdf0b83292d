// Package terminal bridges the front end to one interactive shell process.
//
// The Bridge owns at most one live shell at a time. The shell is spawned
// lazily by the first submitted input line, kept running across inputs and
// spawned again (with a new generation number) on the next input after it
// exits. Output is never buffered for later reads: each chunk read from the
// process is pushed to every listener registered for its stream.
//
// Architecture:
//   - Submit enqueues input; a single actor goroutine spawns the process and
//     writes to its stdin, so inputs reach the shell in arrival order
//   - One reader goroutine per output stream publishes chunks in emission order
//   - A monitor goroutine reaps the process and publishes an exit event
//   - Spawning goes through a circuit breaker so a missing shell binary is
//     not retried on every keystroke
//
// Two I/O modes are supported. With pipes (the default) stdout and stderr are
// kept apart and reach listeners as output and error events. With a PTY the
// terminal merges both streams into output events and Resize applies.
//
// Example Usage:
//
//	bridge := terminal.NewBridge(cfg.Shell, logger, metrics)
//	defer bridge.Close(ctx)
//
//	bridge.Listeners().Subscribe(surface, terminal.KindOutput, func(ev terminal.Event) {
//		fmt.Print(ev.Data)
//	})
//	_ = bridge.Submit("ls -la")
package terminal
