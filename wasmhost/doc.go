// Package wasmhost exposes a dispatch session to WebAssembly guests.
//
// Guests import two functions from the "objref" module:
//
//	dispatch(kw_ptr, kw_len, args_ptr, argc, out_ptr, nout i32) -> i32
//	error_message(buf_ptr, buf_cap i32) -> i32
//
// Arguments and outputs are arrays of 16-byte slots in guest memory. Byte 0
// of a slot is the tag (1 f64, 2 s64, 3 u64, 4 text) and bytes 8..16 hold the
// payload. Text is a u32 pointer at byte 8 and a u32 length at byte 12; text
// outputs are placed in memory obtained from the guest's cabi_realloc.
//
// dispatch returns 0 on success or the status code of the error kind.
// error_message copies the last failure's message and returns its full
// length.
package wasmhost
