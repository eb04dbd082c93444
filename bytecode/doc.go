// Package bytecode provides the Chunk, the container for compiled Cascade code.
//
// A Chunk holds three companion stores that share one index space over
// instruction bytes:
//
//   - code: opcode bytes interleaved with their fixed-width operands
//   - lines: the source line that produced each byte of code
//   - constants: the constant pool, addressed by one-byte operands
//
// The compiler appends to a Chunk byte by byte while it parses. Once the
// compiler returns, the Chunk belongs to the caller, typically the virtual
// machine or the disassembler, which read it through index-based accessors:
//
//	chunk := bytecode.NewChunk()
//	if !compiler.Compile("(1 + 2) * 3", chunk) {
//	    return errCompile
//	}
//	for i := 0; i < chunk.Count(); i++ {
//	    fmt.Println(chunk.LineAt(i), chunk.ByteAt(i))
//	}
//
// # Package Dependencies
//
// This package depends only on [github.com/cascade-lang/cascade/op].
// Constants are stored as []any and interpreted by the VM.
//
// # Serialization
//
// Chunks can be encoded as JSON ([Marshal], [Unmarshal]) for inspection and
// as canonical CBOR ([MarshalCBOR], [UnmarshalCBOR]) for compact caching of
// compiled programs.
package bytecode
