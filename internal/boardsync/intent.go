package boardsync

// Intent tracks the confirmation of one optimistic change.
type Intent struct {
	done chan struct{}
	err  error
}

func newIntent() *Intent {
	return &Intent{done: make(chan struct{})}
}

// settledIntent is returned for intents rejected before any local change.
func settledIntent(err error) *Intent {
	i := newIntent()
	i.settle(err)
	return i
}

func (i *Intent) settle(err error) {
	i.err = err
	close(i.done)
}

// Done is closed once the store has answered and the local state is reconciled.
func (i *Intent) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until the intent settles and returns the store's answer.
func (i *Intent) Wait() error {
	<-i.done
	return i.err
}

// Err returns the outcome, or nil while the intent is still in flight.
func (i *Intent) Err() error {
	select {
	case <-i.done:
		return i.err
	default:
		return nil
	}
}
