package abi

import "unsafe"

// AriaString is a heap-allocated string object. Layout follows
// runtime_ffi/string.rs's AriaString: a data pointer, a length, and a
// capacity (always equal to length here, since Go's allocator has no use
// for the original's separate growth-reserve distinction).
type AriaString struct {
	Data     unsafe.Pointer
	Len      uint64
	Capacity uint64
}

// AriaStringNew constructs a heap string by copying len bytes from data.
func AriaStringNew(data unsafe.Pointer, length uint64) *AriaString {
	if data == nil && length > 0 {
		return nil
	}
	s := &AriaString{Len: length, Capacity: length}
	if length > 0 {
		s.Data = AriaAlloc(length)
		copy(bytesFrom(s.Data, length), bytesFrom(data, length))
	}
	return s
}

// AriaStringConcat allocates |a|+|b| bytes and concatenates a then b. A
// nil operand contributes zero bytes, matching the original treating a
// null AriaString pointer as length 0.
func AriaStringConcat(a, b *AriaString) *AriaString {
	aLen, bLen := stringLen(a), stringLen(b)
	total := aLen + bLen

	result := &AriaString{Len: total, Capacity: total}
	if total > 0 {
		result.Data = AriaAlloc(total)
		dest := bytesFrom(result.Data, total)
		if aLen > 0 {
			copy(dest[:aLen], bytesFrom(a.Data, aLen))
		}
		if bLen > 0 {
			copy(dest[aLen:], bytesFrom(b.Data, bLen))
		}
	}
	return result
}

// AriaStringSlice returns a new string containing s[start:end], clamping
// both bounds to [0, len(s)] and to start <= end.
func AriaStringSlice(s *AriaString, start, end uint64) *AriaString {
	if s == nil {
		return nil
	}
	length := s.Len
	if start > length {
		start = length
	}
	if end > length {
		end = length
	}
	if end < start {
		end = start
	}
	sliceLen := end - start
	if sliceLen == 0 {
		return AriaStringNew(nil, 0)
	}
	offset := unsafe.Add(s.Data, start)
	return AriaStringNew(offset, sliceLen)
}

// AriaStringEq reports structural equality: same length and same bytes.
// Two nil strings are equal; a nil and a non-nil string are not.
func AriaStringEq(a, b *AriaString) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Len != b.Len {
		return false
	}
	if a.Len == 0 {
		return true
	}
	aBytes := bytesFrom(a.Data, a.Len)
	bBytes := bytesFrom(b.Data, b.Len)
	for i := range aBytes {
		if aBytes[i] != bBytes[i] {
			return false
		}
	}
	return true
}

// AriaStringLen returns the length of s, or 0 for a nil string.
func AriaStringLen(s *AriaString) uint64 {
	if s == nil {
		return 0
	}
	return s.Len
}

func stringLen(s *AriaString) uint64 {
	if s == nil {
		return 0
	}
	return s.Len
}
