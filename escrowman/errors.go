// Error values of the escrow client. All failures are returned as values;
// the split mirrors how they should be handled:
//
//   - validation/encoding errors happen before any I/O and indicate a caller
//     bug (fix the input, do not retry as-is);
//   - submission errors come back from the ledger and must NOT be blindly
//     retried, since a claim's execution id is single-use;
//   - decoding errors mean the persisted bytes are not in the expected shape,
//     which right after account creation can simply be read-after-write lag.
package escrowman

import "github.com/pkg/errors"

var (
	// ErrInvalidCommitmentFormat rejects a commitment that is not exactly
	// 64 hex characters, before any instruction is built.
	ErrInvalidCommitmentFormat = errors.New("commitment is not a 64-character hex string")

	// ErrFieldTooLong rejects an instruction field whose length byte(s)
	// would overflow.
	ErrFieldTooLong = errors.New("instruction field too long")

	// ErrExecutionIDTooLong rejects an execution id over 16 bytes.
	// Short ids are zero padded; long ids are never silently truncated.
	ErrExecutionIDTooLong = errors.New("execution id exceeds 16 bytes")

	// ErrDuplicateExecutionID rejects reuse of an execution id that this
	// client has already submitted. The on-chain tracker account makes a
	// second submission fail anyway; catching it locally saves the fee.
	ErrDuplicateExecutionID = errors.New("execution id already used")

	// ErrSubmissionFailed wraps a ledger-side rejection or network failure
	// of a submitted transaction.
	ErrSubmissionFailed = errors.New("transaction submission failed")

	// ErrTruncatedAccount rejects persisted escrow bytes shorter than the
	// fixed record size.
	ErrTruncatedAccount = errors.New("escrow account data truncated")

	// ErrMalformedCommitment rejects persisted escrow bytes whose commitment
	// slot does not hold 64 hex characters after trimming padding.
	ErrMalformedCommitment = errors.New("escrow account commitment malformed")

	// ErrAlreadyClaimed is the program's rejection of a claim against an
	// escrow whose funds were already released.
	ErrAlreadyClaimed = errors.New("escrow already claimed")
)
