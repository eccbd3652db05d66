package proto

// attempt runs op up to tries times, stopping at the first success.
// between runs before every retry (not before the first attempt); the
// handshake and transfer loops use it to purge the link and back off.
// Returns the error of the last attempt.
func attempt(tries int, between func(), op func() error) error {
	var err error
	for i := 0; i < tries; i++ {
		if i > 0 && between != nil {
			between()
		}
		if err = op(); err == nil {
			return nil
		}
	}
	return err
}
