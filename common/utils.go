package common

import (
	"crypto/rand"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// The returned string has no 0x prefix.
func ByteSliceToPureHexStr(b []byte) string {
	return ethcommon.Bytes2Hex(b)
}

func HexStrToByteSlice(hexStr string) []byte {
	return ethcommon.Hex2Bytes(hexStr)
}

// HexStrToBytes32 converts a hex string to [32]byte, left padded with zeros.
func HexStrToBytes32(hexStr string) [32]byte {
	var bytes32 [32]byte
	copy(bytes32[:], ethcommon.Hex2BytesFixed(hexStr, 32))
	return bytes32
}

// RandBytes generates n bytes with random values.
func RandBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		return nil
	}
	return b
}

// IsHexChar reports whether c is one of 0-9, a-f, A-F.
func IsHexChar(c rune) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}

// IsHexString reports whether every character of s is a hex digit.
// An empty string is not considered hex.
func IsHexString(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if !IsHexChar(c) {
			return false
		}
	}
	return true
}

// Shorten shortens a long identifier so that both sides keep n characters
// and the middle is replaced with "...". Used only for log output.
func Shorten(s string, n int) string {
	if len(s) <= n*2 {
		return s
	}
	return s[:n] + "..." + s[len(s)-n:]
}
