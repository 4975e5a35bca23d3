package tail

// blockStack is a LIFO of blocks backed by a single growable slice.
// A pushed block belongs to the stack until it is popped.
type blockStack struct {
	blocks [][]byte
}

func (s *blockStack) push(block []byte) {
	s.blocks = append(s.blocks, block)
}

// pop hands the top block over to the caller. It returns false on an empty
// stack.
func (s *blockStack) pop() ([]byte, bool) {
	n := len(s.blocks)
	if n == 0 {
		return nil, false
	}
	block := s.blocks[n-1]
	// Drop the reference so the block can be collected once the caller is done.
	s.blocks[n-1] = nil
	s.blocks = s.blocks[:n-1]
	return block, true
}

func (s *blockStack) len() int {
	return len(s.blocks)
}
