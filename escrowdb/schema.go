package escrowdb

// One row per opened escrow, keyed by the hex-encoded seed.
var escrowTable = `CREATE TABLE IF NOT EXISTS escrow (
	seed VARCHAR(64) PRIMARY KEY NOT NULL,
	address VARCHAR(64) NOT NULL,
	commitment CHAR(64) NOT NULL,
	amount BIGINT UNSIGNED NOT NULL,
	openTxSig VARCHAR(128) NOT NULL,
	status VARCHAR(10) NOT NULL,
	CONSTRAINT chk_status CHECK (status IN ('opened', 'claimed')),
	CONSTRAINT chk_amount CHECK (amount > 0),
	CONSTRAINT chk_commitment CHECK (length(commitment) = 64)
);`

// One row per claim attempt, keyed by the execution id. The primary key is
// the local half of the single-use guarantee: an id that ever made it into
// this table is never handed to the ledger again.
var attemptTable = `CREATE TABLE IF NOT EXISTS claim_attempt (
	executionId CHAR(16) PRIMARY KEY NOT NULL,
	seed VARCHAR(64) NOT NULL,
	escrowAddress VARCHAR(64) NOT NULL,
	receiver VARCHAR(64) NOT NULL,
	txSig VARCHAR(128),
	status VARCHAR(10) NOT NULL,
	createdAt BIGINT NOT NULL,
	CONSTRAINT chk_status CHECK (status IN ('submitted', 'released', 'expired', 'rejected', 'lost'))
);`
