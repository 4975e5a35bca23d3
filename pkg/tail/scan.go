package tail

import "bytes"

// scanBackward counts line endings in block from its end towards its start,
// starting from the count found so far. It stops on the line ending that makes
// the count exceed want and returns that line ending's index. If the start of
// the block is reached first, the returned index is -1.
func scanBackward(block []byte, found, want int) (int, int) {
	end := len(block)
	for {
		i := bytes.LastIndexByte(block[:end], eol)
		if i < 0 {
			return -1, found
		}
		found++
		if found > want {
			return i, found
		}
		end = i
	}
}
