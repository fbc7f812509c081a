// Package serialization stores training checkpoints: named arrays plus the
// step, loss and optimizer that produced them.
//
//	Layout:
//	  0x00  [4]  magic "RPRP"
//	  0x04  [4]  format version (uint32 LE)
//	  0x08  [4]  flags (uint32 LE)
//	  0x0C  [4]  reserved
//	  0x10  [8]  header size (uint64 LE)
//	  0x18  [8]  data size (uint64 LE)
//	  0x20  [32] SHA-256 of the data section
//	  0x40  JSON header
//	        padding to a 64-byte boundary
//	        array data, little endian, in header order
//
// The reader validates the checksum and every array's extent before
// allocating anything.
package serialization
