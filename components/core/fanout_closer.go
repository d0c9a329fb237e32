package core

// FanoutCloser propagates a close call to the underlying closers.
type FanoutCloser struct {
	closers []closerNode
}

// Add closer with id to be notified when the close event is happened.
func (c *FanoutCloser) Add(id string, closer Closer) {
	c.closers = append(c.closers, closerNode{id: id, closer: closer})
}

// Close all registered closers, last added closed first.
func (c *FanoutCloser) Close() error {
	for i := len(c.closers) - 1; i >= 0; i-- {
		node := c.closers[i]

		if err := node.closer.Close(); err != nil {
			LogErr.Printf("fanout-closer: failed to close: id=%s err=%v\n", node.id, err)
		}
	}

	return nil
}

type closerNode struct {
	id     string
	closer Closer
}
