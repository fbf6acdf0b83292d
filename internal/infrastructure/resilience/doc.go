/*
Package resilience provides a circuit breaker for operations that can fail
repeatedly, such as launching the interactive shell.

# States

- Closed: attempts pass through; consecutive failures are counted
- Open: attempts fail immediately with ErrCircuitOpen
- Half-Open: after the cooldown, a single trial attempt is allowed

	Closed --[Threshold failures]-> Open --[Cooldown]-> Half-Open --[success]-> Closed
	                                  ^                     |
	                                  +------[failure]------+

# Usage

	breaker := resilience.New("shell-spawn", resilience.Settings{
		Threshold: 3,
		Cooldown:  30 * time.Second,
	})

	err := breaker.Run(func() error {
		return cmd.Start()
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		// refuse without trying
	}
*/
package resilience
