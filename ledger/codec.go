package ledger

import (
	"encoding/binary"
	"fmt"
)

// EncodeUint64 is the top-level argument encoding of an unsigned integer:
// big-endian without leading zero bytes, zero is the empty slice.
func EncodeUint64(v uint64) []byte {
	buf := binary.BigEndian.AppendUint64(nil, v)
	for len(buf) > 0 && buf[0] == 0 {
		buf = buf[1:]
	}
	return buf
}

func DecodeUint64(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, fmt.Errorf("integer argument too long %d", len(b))
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

func CheckArguments(args [][]byte, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d got %d", ErrArgumentCount, n, len(args))
	}
	return nil
}
