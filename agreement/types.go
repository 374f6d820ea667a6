package agreement

import "github.com/hashlock-io/escrow-go/solkey"

// AccountMeta marks one account referenced by an instruction and how the
// program is allowed to touch it.
type AccountMeta struct {
	Pubkey     solkey.PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation: target program, the ordered
// account list the program expects, and the opaque instruction data bytes.
// The account ORDER is part of the wire contract with the program.
type Instruction struct {
	ProgramID solkey.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Meta helpers, to keep instruction assembly readable.

func NewAccountMeta(pub solkey.PublicKey, isSigner, isWritable bool) AccountMeta {
	return AccountMeta{Pubkey: pub, IsSigner: isSigner, IsWritable: isWritable}
}

func WritableSigner(pub solkey.PublicKey) AccountMeta {
	return AccountMeta{Pubkey: pub, IsSigner: true, IsWritable: true}
}

func Writable(pub solkey.PublicKey) AccountMeta {
	return AccountMeta{Pubkey: pub, IsWritable: true}
}

func ReadOnly(pub solkey.PublicKey) AccountMeta {
	return AccountMeta{Pubkey: pub}
}
